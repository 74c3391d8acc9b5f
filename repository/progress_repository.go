package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/movefit/streakd/models"
)

// MilestoneProgressRepository persists milestone-earning events.
type MilestoneProgressRepository interface {
	// HasAny reports whether the user has ever earned the milestone.
	HasAny(ctx context.Context, userID, milestoneID uint) (bool, error)
	// HasOnDay reports whether the user earned the milestone on the given calendar day.
	HasOnDay(ctx context.Context, userID, milestoneID uint, day time.Time) (bool, error)
	// Create inserts a new earning event; ErrDuplicate when the
	// (user, milestone, day) combination already exists.
	Create(ctx context.Context, p *models.MilestoneProgress) error
	ListByUser(ctx context.Context, userID uint) ([]models.MilestoneProgress, error)
	// LatestForMilestone returns the most recent earning event for a
	// (user, milestone) pair, or ErrNotFound.
	LatestForMilestone(ctx context.Context, userID, milestoneID uint) (*models.MilestoneProgress, error)
	// Save persists claim-state changes on an existing row.
	Save(ctx context.Context, p *models.MilestoneProgress) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewMilestoneProgressRepository creates a GORM-backed MilestoneProgressRepository.
func NewMilestoneProgressRepository(db *gorm.DB) MilestoneProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) HasAny(ctx context.Context, userID, milestoneID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MilestoneProgress{}).
		Where("user_id = ? AND milestone_id = ?", userID, milestoneID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *progressRepository) HasOnDay(ctx context.Context, userID, milestoneID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MilestoneProgress{}).
		Where("user_id = ? AND milestone_id = ? AND earned_day = ?", userID, milestoneID, day).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *progressRepository) Create(ctx context.Context, p *models.MilestoneProgress) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *progressRepository) ListByUser(ctx context.Context, userID uint) ([]models.MilestoneProgress, error) {
	var rows []models.MilestoneProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *progressRepository) LatestForMilestone(ctx context.Context, userID, milestoneID uint) (*models.MilestoneProgress, error) {
	var p models.MilestoneProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND milestone_id = ?", userID, milestoneID).
		Order("earned_day DESC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *progressRepository) Save(ctx context.Context, p *models.MilestoneProgress) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}
