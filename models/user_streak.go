package models

import "time"

// UserStreak holds the per-user streak state. One row per user, created
// lazily on first processing and never deleted.
type UserStreak struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	UserID        uint `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak int  `gorm:"default:0" json:"current_streak"`
	LongestStreak int  `gorm:"default:0" json:"longest_streak"`
	// LastActivityDate is the last calendar date the streak advanced for,
	// stored as the UTC midnight of the user's local date.
	LastActivityDate *time.Time `gorm:"type:date" json:"last_activity_date"`
	StreakStartedAt  *time.Time `json:"streak_started_at"`
	Timezone         string     `gorm:"size:64;default:UTC" json:"timezone"`
	ShieldsAvailable int        `gorm:"default:0" json:"shields_available"`
	ShieldsUsedWeek  int        `gorm:"column:shields_used_this_week;default:0" json:"shields_used_this_week"`
	// ShieldWeekStart marks the start of the current 7-day shield window.
	ShieldWeekStart *time.Time `gorm:"type:date" json:"shield_week_start"`
	TotalActiveDays int        `gorm:"default:0" json:"total_active_days"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
