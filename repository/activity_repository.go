package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/movefit/streakd/models"
)

// ActivityLogRepository reads the activity log owned by the tracking
// component. Strictly read-only from this service.
type ActivityLogRepository interface {
	HasQualifyingActivity(ctx context.Context, userID uint, day time.Time) (bool, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a GORM-backed ActivityLogRepository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) HasQualifyingActivity(ctx context.Context, userID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StreakActivityLog{}).
		Where("user_id = ? AND activity_date = ? AND qualifies_for_streak = ?", userID, day, true).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}
