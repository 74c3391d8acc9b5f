package models

import "time"

// StreakActivityLog is owned by the activity-tracking component; this
// service only ever reads it to answer "did the user log a qualifying
// activity on date D".
type StreakActivityLog struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"index:idx_activity_user_date;not null" json:"user_id"`
	ActivityDate       time.Time `gorm:"type:date;index:idx_activity_user_date;not null" json:"activity_date"`
	QualifiesForStreak bool      `gorm:"default:false" json:"qualifies_for_streak"`
	CreatedAt          time.Time `json:"created_at"`
}
