package models

import "time"

// MilestoneProgress records one milestone-earning event for a user. The
// composite unique index on (user_id, milestone_id, earned_day) is the
// storage-level idempotency boundary: a duplicate insert for the same user,
// milestone and calendar day fails fast and is treated as already applied.
type MilestoneProgress struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	UserID      uint `gorm:"uniqueIndex:idx_user_milestone_day;not null" json:"user_id"`
	MilestoneID uint `gorm:"uniqueIndex:idx_user_milestone_day;not null" json:"milestone_id"`
	// EarnedDay is the user-local calendar date of the earning event.
	EarnedDay time.Time `gorm:"type:date;uniqueIndex:idx_user_milestone_day;not null" json:"earned_day"`
	EarnedAt  time.Time `json:"earned_at"`
	// StreakLength is the streak value that earned the milestone; for
	// repeatable milestones it distinguishes recurrences.
	StreakLength    int        `json:"streak_length"`
	RewardClaimed   bool       `gorm:"default:false" json:"reward_claimed"`
	RewardClaimedAt *time.Time `json:"reward_claimed_at"`
	RewardExpiresAt *time.Time `json:"reward_expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
}
