package models

import "time"

// TxTypeStreakMilestone marks ledger entries written by the streak reward issuer.
const TxTypeStreakMilestone = "streak_milestone_earn"

// CoinTransaction is an append-only ledger entry. The unique index on
// (user_id, type, reference_id) enforces the idempotent credit: re-running
// the issuer for an already-credited milestone fails the insert instead of
// double-crediting.
type CoinTransaction struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// TransactionID is a server-generated UUID for external reconciliation.
	TransactionID string    `gorm:"size:36;uniqueIndex;not null" json:"transaction_id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_type_ref;not null" json:"user_id"`
	Type          string    `gorm:"size:48;uniqueIndex:idx_user_type_ref;not null" json:"type"`
	ReferenceID   string    `gorm:"size:128;uniqueIndex:idx_user_type_ref;not null" json:"reference_id"`
	Amount        int       `gorm:"not null" json:"amount"`
	Description   string    `gorm:"size:255" json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}
