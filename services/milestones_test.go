package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movefit/streakd/models"
)

func repeatableDef(id uint, dayNumber, interval int) models.StreakMilestone {
	return models.StreakMilestone{
		ID:             id,
		DayNumber:      dayNumber,
		Name:           "Immortal",
		RewardType:     models.RewardLeaderboardFlair,
		IsRepeatable:   true,
		RepeatInterval: &interval,
		IsActive:       true,
	}
}

func TestRepeatableMilestoneEarnsOnIntervalBoundaries(t *testing.T) {
	env := newTestEnv()
	env.defs.defs = []models.StreakMilestone{repeatableDef(9, 365, 100)}
	ctx := context.Background()

	// 465 = 365 + 100: an interval boundary.
	earned, err := env.svc.evaluateMilestones(ctx, 1, 465, today, testClock)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, uint(9), earned[0].MilestoneID)

	// Any value strictly between boundaries earns nothing.
	for _, streak := range []int{466, 500, 564} {
		earned, err = env.svc.evaluateMilestones(ctx, 1, streak, today.AddDate(0, 0, 1), testClock)
		require.NoError(t, err)
		assert.Empty(t, earned, "streak %d should not earn", streak)
	}

	// 565 = 365 + 2*100: earned again on a later day.
	laterDay := today.AddDate(0, 0, 100)
	earned, err = env.svc.evaluateMilestones(ctx, 1, 565, laterDay, testClock)
	require.NoError(t, err)
	require.Len(t, earned, 1)

	// Two recurrences, two progress rows, two distinct coin references.
	assert.Len(t, env.progress.rows, 2)
	require.Len(t, env.coins.txs, 2)
	assert.NotEqual(t, env.coins.txs[0].ReferenceID, env.coins.txs[1].ReferenceID)
}

func TestRepeatableMilestoneNotEarnedTwiceSameDay(t *testing.T) {
	env := newTestEnv()
	env.defs.defs = []models.StreakMilestone{repeatableDef(9, 365, 100)}
	ctx := context.Background()

	earned, err := env.svc.evaluateMilestones(ctx, 1, 465, today, testClock)
	require.NoError(t, err)
	require.Len(t, earned, 1)

	earned, err = env.svc.evaluateMilestones(ctx, 1, 465, today, testClock)
	require.NoError(t, err)
	assert.Empty(t, earned)
	assert.Len(t, env.progress.rows, 1)
}

func TestNonRepeatableMilestoneNeverRecordedTwice(t *testing.T) {
	env := newTestEnv()
	env.defs.defs = []models.StreakMilestone{{
		ID: 3, DayNumber: 30, Name: "Monthly", RewardType: models.RewardBadge, IsActive: true,
	}}
	ctx := context.Background()

	earned, err := env.svc.evaluateMilestones(ctx, 1, 30, today, testClock)
	require.NoError(t, err)
	require.Len(t, earned, 1)

	// Re-evaluation (retry after a partial failure) records nothing new.
	earned, err = env.svc.evaluateMilestones(ctx, 1, 30, today, testClock)
	require.NoError(t, err)
	assert.Empty(t, earned)
	assert.Len(t, env.progress.rows, 1)
	assert.Len(t, env.coins.txs, 1)
}

func TestNonRepeatableMilestoneRequiresExactMatch(t *testing.T) {
	env := newTestEnv()
	env.defs.defs = []models.StreakMilestone{{
		ID: 3, DayNumber: 7, Name: "One Week Wonder", RewardType: models.RewardBadge, IsActive: true,
	}}

	// Passing day 7 with a streak of 8 (e.g. milestone added after the
	// user was already past it) must not retroactively award it.
	earned, err := env.svc.evaluateMilestones(context.Background(), 1, 8, today, testClock)
	require.NoError(t, err)
	assert.Empty(t, earned)
}

func TestTrialRewardGetsExpiry(t *testing.T) {
	env := newTestEnv()
	env.defs.defs = []models.StreakMilestone{{
		ID:          5,
		DayNumber:   14,
		Name:        "Coach Trial",
		RewardType:  models.RewardTrialCoach,
		RewardValue: []byte(`{"trial_days": 7}`),
		IsActive:    true,
	}}

	earned, err := env.svc.evaluateMilestones(context.Background(), 1, 14, today, testClock)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	require.NotNil(t, earned[0].RewardExpiresAt)
	assert.Equal(t, testClock.AddDate(0, 0, 7), *earned[0].RewardExpiresAt)

	require.Len(t, env.progress.rows, 1)
	require.NotNil(t, env.progress.rows[0].RewardExpiresAt)
}

func TestNextMilestonePrefersClosestUnearned(t *testing.T) {
	env := newTestEnv()
	interval := 100
	env.defs.defs = []models.StreakMilestone{
		{ID: 1, DayNumber: 7, Name: "Week", RewardType: models.RewardBadge, IsActive: true},
		{ID: 2, DayNumber: 30, Name: "Month", RewardType: models.RewardBadge, IsActive: true},
		{ID: 3, DayNumber: 365, Name: "Year", RewardType: models.RewardBadge, IsRepeatable: true, RepeatInterval: &interval, IsActive: true},
	}
	ctx := context.Background()

	next, err := env.svc.nextMilestone(ctx, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 30, next.DayNumber)
	assert.Equal(t, 20, next.DaysAway)

	// Past all one-time milestones: the repeatable one projects its next occurrence.
	next, err = env.svc.nextMilestone(ctx, 1, 400)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 465, next.DayNumber)
	assert.Equal(t, 65, next.DaysAway)
}

func TestNextMilestoneSkipsAlreadyEarned(t *testing.T) {
	env := newTestEnv()
	env.defs.defs = []models.StreakMilestone{
		{ID: 1, DayNumber: 7, Name: "Week", RewardType: models.RewardBadge, IsActive: true},
		{ID: 2, DayNumber: 30, Name: "Month", RewardType: models.RewardBadge, IsActive: true},
	}
	// Earned day 7 during a previous streak that later broke.
	env.progress.rows = []models.MilestoneProgress{{ID: 1, UserID: 1, MilestoneID: 1, EarnedDay: date(2026, time.January, 10)}}

	next, err := env.svc.nextMilestone(context.Background(), 1, 3)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 30, next.DayNumber)
}

func TestClaimRewardMarksRowOnce(t *testing.T) {
	env := newTestEnv()
	expires := testClock.AddDate(0, 0, 7)
	env.progress.rows = []models.MilestoneProgress{{
		ID: 1, UserID: 1, MilestoneID: 5, EarnedDay: today, RewardExpiresAt: &expires,
	}}
	ctx := context.Background()

	row, err := env.svc.ClaimReward(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, row.RewardClaimed)
	require.NotNil(t, row.RewardClaimedAt)
	firstClaimedAt := *row.RewardClaimedAt

	// Claiming again is a no-op on the same row.
	row, err = env.svc.ClaimReward(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, row.RewardClaimed)
	assert.Equal(t, firstClaimedAt, *row.RewardClaimedAt)
}

func TestClaimRewardExpiredTrial(t *testing.T) {
	env := newTestEnv()
	expired := testClock.AddDate(0, 0, -1)
	env.progress.rows = []models.MilestoneProgress{{
		ID: 1, UserID: 1, MilestoneID: 5, EarnedDay: date(2026, time.February, 1), RewardExpiresAt: &expired,
	}}

	_, err := env.svc.ClaimReward(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrRewardExpired)
}

func TestClaimRewardNotEarned(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.ClaimReward(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrMilestoneNotEarned)
}
