package models

import (
	"encoding/json"
	"time"
)

// Reward types a milestone may carry.
const (
	RewardBadge            = "badge"
	RewardTrialMover       = "trial_mover"
	RewardTrialCoach       = "trial_coach"
	RewardTrialCrusher     = "trial_crusher"
	RewardProfileFrame     = "profile_frame"
	RewardLeaderboardFlair = "leaderboard_flair"
	RewardAppIcon          = "app_icon"
	RewardPointsMultiplier = "points_multiplier"
	RewardCustom           = "custom"
)

// ValidRewardTypes enumerates the accepted reward_type values for admin writes.
var ValidRewardTypes = []string{
	RewardBadge, RewardTrialMover, RewardTrialCoach, RewardTrialCrusher,
	RewardProfileFrame, RewardLeaderboardFlair, RewardAppIcon,
	RewardPointsMultiplier, RewardCustom,
}

// StreakMilestone is a configured streak-length threshold that triggers a
// reward when reached. Reference data, managed through the admin endpoints.
type StreakMilestone struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	DayNumber   int    `gorm:"index;not null" json:"day_number"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"size:512" json:"description"`
	RewardType  string `gorm:"size:32;not null" json:"reward_type"`
	// RewardValue is an opaque JSON payload, e.g. {"trial_days": 7}.
	RewardValue    json.RawMessage `gorm:"type:json" json:"reward_value"`
	IsRepeatable   bool            `json:"is_repeatable"`
	RepeatInterval *int            `json:"repeat_interval"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsTrialReward reports whether the milestone grants a time-boxed trial entitlement.
func (m *StreakMilestone) IsTrialReward() bool {
	switch m.RewardType {
	case RewardTrialMover, RewardTrialCoach, RewardTrialCrusher:
		return true
	}
	return false
}

// TrialDays extracts trial_days from the reward payload; zero when absent.
func (m *StreakMilestone) TrialDays() int {
	if len(m.RewardValue) == 0 {
		return 0
	}
	var payload struct {
		TrialDays int `json:"trial_days"`
	}
	if err := json.Unmarshal(m.RewardValue, &payload); err != nil {
		return 0
	}
	return payload.TrialDays
}

// RawRewardValue returns the payload as raw JSON for API responses,
// normalizing an empty payload to JSON null.
func (m *StreakMilestone) RawRewardValue() json.RawMessage {
	if len(m.RewardValue) == 0 {
		return json.RawMessage("null")
	}
	return m.RewardValue
}
