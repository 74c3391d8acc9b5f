package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/movefit/streakd/models"
)

// SubscriptionRepository resolves a user's subscription tier, owned by the
// billing component. Read-only here; a missing row means no subscription.
type SubscriptionRepository interface {
	// GetTier returns the user's tier, or "" when the user has no subscription row.
	GetTier(ctx context.Context, userID uint) (string, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a GORM-backed SubscriptionRepository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetTier(ctx context.Context, userID uint) (string, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", translate(err)
	}
	return sub.Tier, nil
}
