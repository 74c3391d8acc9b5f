package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/movefit/streakd/models"
	"github.com/movefit/streakd/utils"
)

const milestoneCacheKey = "streakd:milestones:active"

// MilestoneRepository reads and writes milestone definitions.
type MilestoneRepository interface {
	// ListActive returns active milestone definitions ordered by day number.
	ListActive(ctx context.Context) ([]models.StreakMilestone, error)
	GetByID(ctx context.Context, id uint) (*models.StreakMilestone, error)
	Create(ctx context.Context, m *models.StreakMilestone) error
	Update(ctx context.Context, m *models.StreakMilestone) error
}

type milestoneRepository struct {
	db *gorm.DB
}

// NewMilestoneRepository creates a GORM-backed MilestoneRepository with a
// redis definitions cache in front of ListActive.
func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) ListActive(ctx context.Context) ([]models.StreakMilestone, error) {
	if b, ok := utils.CacheGetBytes(milestoneCacheKey); ok {
		var cached []models.StreakMilestone
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
	}

	var defs []models.StreakMilestone
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("day_number ASC").
		Find(&defs).Error
	if err != nil {
		return nil, translate(err)
	}

	utils.CacheSetJSON(milestoneCacheKey, defs, 10*time.Minute)
	return defs, nil
}

func (r *milestoneRepository) GetByID(ctx context.Context, id uint) (*models.StreakMilestone, error) {
	var m models.StreakMilestone
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *milestoneRepository) Create(ctx context.Context, m *models.StreakMilestone) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	utils.InvalidateByPrefix("streakd:milestones")
	return nil
}

func (r *milestoneRepository) Update(ctx context.Context, m *models.StreakMilestone) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translate(err)
	}
	utils.InvalidateByPrefix("streakd:milestones")
	return nil
}
