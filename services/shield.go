package services

import (
	"time"

	"github.com/movefit/streakd/models"
)

// shieldWeekDays is the length of the replenishment window.
const shieldWeekDays = 7

// reconcileShields brings the user's shield pool up to date before the
// transition engine runs, so a freshly replenished shield can protect
// today's gap. Returns whether the row changed.
//
// First-ever processing initializes the weekly window and the initial
// allotment (the tier cap) without any extra grant. Afterwards, once 7 or
// more days have elapsed since the window start, the window resets and one
// shield is granted, never exceeding the tier cap.
func (s *StreakService) reconcileShields(us *models.UserStreak, cap int, today time.Time) bool {
	changed := false

	if us.ShieldWeekStart == nil {
		day := today
		us.ShieldWeekStart = &day
		us.ShieldsUsedWeek = 0
		us.ShieldsAvailable = cap
		return true
	}

	if daysBetween(*us.ShieldWeekStart, today) >= shieldWeekDays {
		day := today
		us.ShieldWeekStart = &day
		us.ShieldsUsedWeek = 0
		if us.ShieldsAvailable < cap {
			us.ShieldsAvailable++
		}
		changed = true
	}

	// A tier downgrade can leave the pool above the new cap; clamp it.
	if us.ShieldsAvailable > cap {
		us.ShieldsAvailable = cap
		changed = true
	}

	return changed
}
