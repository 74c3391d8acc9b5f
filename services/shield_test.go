package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/movefit/streakd/models"
)

func TestReconcileShieldsFirstProcessingInitializes(t *testing.T) {
	env := newTestEnv()
	us := &models.UserStreak{UserID: 1}

	changed := env.svc.reconcileShields(us, 2, today)

	assert.True(t, changed)
	assert.Equal(t, 2, us.ShieldsAvailable)
	assert.Equal(t, 0, us.ShieldsUsedWeek)
	assert.True(t, us.ShieldWeekStart.Equal(today))
}

func TestReconcileShieldsWeeklyGrant(t *testing.T) {
	env := newTestEnv()
	us := &models.UserStreak{
		UserID:           1,
		ShieldWeekStart:  dptr(date(2026, time.March, 8)), // exactly 7 days ago
		ShieldsAvailable: 0,
		ShieldsUsedWeek:  2,
	}

	changed := env.svc.reconcileShields(us, 2, today)

	assert.True(t, changed)
	assert.Equal(t, 1, us.ShieldsAvailable)
	assert.Equal(t, 0, us.ShieldsUsedWeek)
	assert.True(t, us.ShieldWeekStart.Equal(today))
}

func TestReconcileShieldsGrantNeverExceedsCap(t *testing.T) {
	env := newTestEnv()
	us := &models.UserStreak{
		UserID:           1,
		ShieldWeekStart:  dptr(date(2026, time.March, 1)),
		ShieldsAvailable: 2,
	}

	env.svc.reconcileShields(us, 2, today)
	assert.Equal(t, 2, us.ShieldsAvailable)
}

func TestReconcileShieldsNoopInsideWindow(t *testing.T) {
	env := newTestEnv()
	weekStart := date(2026, time.March, 12)
	us := &models.UserStreak{
		UserID:           1,
		ShieldWeekStart:  dptr(weekStart),
		ShieldsAvailable: 1,
		ShieldsUsedWeek:  1,
	}

	changed := env.svc.reconcileShields(us, 2, today)

	assert.False(t, changed)
	assert.Equal(t, 1, us.ShieldsAvailable)
	assert.Equal(t, 1, us.ShieldsUsedWeek)
	assert.True(t, us.ShieldWeekStart.Equal(weekStart))
}

func TestReconcileShieldsClampsAfterTierDowngrade(t *testing.T) {
	env := newTestEnv()
	us := &models.UserStreak{
		UserID:           1,
		ShieldWeekStart:  dptr(date(2026, time.March, 12)),
		ShieldsAvailable: 5, // crusher pool
	}

	changed := env.svc.reconcileShields(us, 2, today)

	assert.True(t, changed)
	assert.Equal(t, 2, us.ShieldsAvailable)
}
