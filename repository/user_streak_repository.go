package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/movefit/streakd/models"
)

// UserStreakRepository persists per-user streak state.
type UserStreakRepository interface {
	// Get returns the user's streak row or ErrNotFound.
	Get(ctx context.Context, userID uint) (*models.UserStreak, error)
	// Mutate runs fn against the user's row inside a transaction holding a
	// row lock, creating the row first when the user has never been
	// processed. fn returns whether the row should be persisted.
	Mutate(ctx context.Context, userID uint, fn func(us *models.UserStreak) (bool, error)) (*models.UserStreak, error)
}

type userStreakRepository struct {
	db *gorm.DB
}

// NewUserStreakRepository creates a GORM-backed UserStreakRepository.
func NewUserStreakRepository(db *gorm.DB) UserStreakRepository {
	return &userStreakRepository{db: db}
}

func (r *userStreakRepository) Get(ctx context.Context, userID uint) (*models.UserStreak, error) {
	var us models.UserStreak
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&us).Error
	if err != nil {
		return nil, translate(err)
	}
	return &us, nil
}

func (r *userStreakRepository) Mutate(ctx context.Context, userID uint, fn func(us *models.UserStreak) (bool, error)) (*models.UserStreak, error) {
	var result models.UserStreak
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var us models.UserStreak
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&us).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			us = models.UserStreak{UserID: userID, Timezone: "UTC"}
			if err := tx.Create(&us).Error; err != nil {
				// A concurrent invocation may have created it first; re-read under lock.
				if !errors.Is(translate(err), ErrDuplicate) {
					return err
				}
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("user_id = ?", userID).First(&us).Error; err != nil {
					return err
				}
			}
		} else if err != nil {
			return err
		}

		dirty, err := fn(&us)
		if err != nil {
			return err
		}
		if dirty {
			if err := tx.Save(&us).Error; err != nil {
				return err
			}
		}
		result = us
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &result, nil
}
