package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/movefit/streakd/models"
)

// CoinRepository appends to the coin ledger.
type CoinRepository interface {
	// Exists reports whether a ledger entry with the given type and
	// reference id already exists for the user.
	Exists(ctx context.Context, userID uint, txType, referenceID string) (bool, error)
	// Create appends a ledger entry; ErrDuplicate when the
	// (user, type, reference) key is already present.
	Create(ctx context.Context, t *models.CoinTransaction) error
}

type coinRepository struct {
	db *gorm.DB
}

// NewCoinRepository creates a GORM-backed CoinRepository.
func NewCoinRepository(db *gorm.DB) CoinRepository {
	return &coinRepository{db: db}
}

func (r *coinRepository) Exists(ctx context.Context, userID uint, txType, referenceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CoinTransaction{}).
		Where("user_id = ? AND type = ? AND reference_id = ?", userID, txType, referenceID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *coinRepository) Create(ctx context.Context, t *models.CoinTransaction) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}
