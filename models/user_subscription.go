package models

import "time"

// Subscription tiers known to the shield cap table.
const (
	TierMover   = "mover"
	TierCoach   = "coach"
	TierCrusher = "crusher"
)

// UserSubscription is owned by the billing component; read-only here.
// A missing row resolves to the default tier.
type UserSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Tier      string    `gorm:"size:32;not null" json:"tier"`
	UpdatedAt time.Time `json:"updated_at"`
}
