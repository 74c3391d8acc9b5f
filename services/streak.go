package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/movefit/streakd/config"
	"github.com/movefit/streakd/models"
	"github.com/movefit/streakd/repository"
	"github.com/movefit/streakd/utils"
)

// StreakState is the outcome of one transition-engine run.
type StreakState string

const (
	// StateUnchanged: no qualifying activity today, nothing written.
	StateUnchanged StreakState = "unchanged"
	// StateAlreadyProcessed: today's activity was already counted (idempotent re-entry).
	StateAlreadyProcessed StreakState = "already_processed"
	// StateStarted: first qualifying activity ever.
	StateStarted StreakState = "started"
	// StateContinued: activity on the day after the last counted day.
	StateContinued StreakState = "continued"
	// StateShieldProtected: exactly one missed day forgiven by a shield.
	StateShieldProtected StreakState = "shield_protected"
	// StateBroken: gap too large (or no shield); streak restarts at 1.
	StateBroken StreakState = "broken"
)

// EarnedMilestone describes one milestone earned during an invocation.
type EarnedMilestone struct {
	MilestoneID     uint            `json:"milestone_id"`
	DayNumber       int             `json:"day_number"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	RewardType      string          `json:"reward_type"`
	RewardValue     json.RawMessage `json:"reward_value"`
	RewardExpiresAt *time.Time      `json:"reward_expires_at"`
}

// NextMilestone points at the closest unearned milestone, for UI progress display.
type NextMilestone struct {
	DayNumber int    `json:"day_number"`
	Name      string `json:"name"`
	DaysAway  int    `json:"days_away"`
}

// ProcessResult is the invocation response payload.
type ProcessResult struct {
	State            StreakState       `json:"-"`
	CurrentStreak    int               `json:"current_streak"`
	LongestStreak    int               `json:"longest_streak"`
	StreakContinued  bool              `json:"streak_continued"`
	StreakStarted    bool              `json:"streak_started"`
	StreakBroken     bool              `json:"streak_broken"`
	ShieldUsed       bool              `json:"shield_used"`
	ShieldsRemaining int               `json:"shields_remaining"`
	MilestonesEarned []EarnedMilestone `json:"milestones_earned"`
	NextMilestone    *NextMilestone    `json:"next_milestone"`
	TotalActiveDays  int               `json:"total_active_days"`
}

// StreakService runs the daily streak engine: date resolution, shield
// bookkeeping, the streak transition state machine, milestone evaluation and
// idempotent reward issuance.
type StreakService struct {
	streaks    repository.UserStreakRepository
	milestones repository.MilestoneRepository
	progress   repository.MilestoneProgressRepository
	coins      repository.CoinRepository
	activity   repository.ActivityLogRepository
	subs       repository.SubscriptionRepository
	cfg        config.StreakConfig
	now        func() time.Time
}

// NewStreakService wires the engine with its repositories and lookup tables.
func NewStreakService(
	streaks repository.UserStreakRepository,
	milestones repository.MilestoneRepository,
	progress repository.MilestoneProgressRepository,
	coins repository.CoinRepository,
	activity repository.ActivityLogRepository,
	subs repository.SubscriptionRepository,
	cfg config.StreakConfig,
) *StreakService {
	return &StreakService{
		streaks:    streaks,
		milestones: milestones,
		progress:   progress,
		coins:      coins,
		activity:   activity,
		subs:       subs,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ProcessDaily runs one invocation for a user. Safe to re-run any number of
// times for the same (user, day): the already-processed short-circuit and
// the milestone/ledger idempotency keys make every step re-entrant.
// tzOverride, when non-empty, updates the user's stored timezone before
// dates are resolved.
func (s *StreakService) ProcessDaily(ctx context.Context, userID uint, tzOverride string) (*ProcessResult, error) {
	now := s.now()

	tier, err := s.subs.GetTier(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve subscription tier: %w", err)
	}
	shieldCap := s.cfg.ShieldCap(tier)

	var (
		state      StreakState
		today      time.Time
		shieldUsed bool
	)

	us, err := s.streaks.Mutate(ctx, userID, func(us *models.UserStreak) (bool, error) {
		dirty := false
		if tzOverride != "" && tzOverride != us.Timezone {
			us.Timezone = tzOverride
			dirty = true
		}

		var yesterday time.Time
		today, yesterday = ResolveDates(now, us.Timezone)

		if s.reconcileShields(us, shieldCap, today) {
			dirty = true
		}

		hasActivity, err := s.activity.HasQualifyingActivity(ctx, userID, today)
		if err != nil {
			return false, fmt.Errorf("check activity log: %w", err)
		}

		switch {
		case !hasActivity:
			state = StateUnchanged
			return dirty, nil
		case us.LastActivityDate != nil && !us.LastActivityDate.Before(today):
			state = StateAlreadyProcessed
			return dirty, nil
		case us.LastActivityDate == nil:
			state = StateStarted
			us.CurrentStreak = 1
			us.StreakStartedAt = &now
		case sameDay(*us.LastActivityDate, yesterday):
			state = StateContinued
			us.CurrentStreak++
		case daysBetween(*us.LastActivityDate, today) == 2 && us.ShieldsAvailable > 0:
			// A shield forgives exactly one missed day, never larger gaps.
			state = StateShieldProtected
			us.CurrentStreak++
			us.ShieldsAvailable--
			us.ShieldsUsedWeek++
			shieldUsed = true
		default:
			state = StateBroken
			us.CurrentStreak = 1
			us.StreakStartedAt = &now
		}

		day := today
		us.LastActivityDate = &day
		if us.CurrentStreak > us.LongestStreak {
			us.LongestStreak = us.CurrentStreak
		}
		// Every state below this point newly counted a qualifying day,
		// including a restart at 1.
		us.TotalActiveDays++
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		State:            state,
		CurrentStreak:    us.CurrentStreak,
		LongestStreak:    us.LongestStreak,
		StreakContinued:  state == StateContinued || state == StateShieldProtected,
		StreakStarted:    state == StateStarted,
		StreakBroken:     state == StateBroken,
		ShieldUsed:       shieldUsed,
		ShieldsRemaining: us.ShieldsAvailable,
		MilestonesEarned: []EarnedMilestone{},
		TotalActiveDays:  us.TotalActiveDays,
	}

	// Milestones are evaluated only after the streak state is durably
	// committed, and only when the streak value is new or continued.
	if state != StateUnchanged && state != StateAlreadyProcessed {
		earned, err := s.evaluateMilestones(ctx, userID, us.CurrentStreak, today, now)
		if err != nil {
			return nil, err
		}
		result.MilestonesEarned = earned
	}

	next, err := s.nextMilestone(ctx, userID, us.CurrentStreak)
	if err != nil {
		return nil, err
	}
	result.NextMilestone = next

	return result, nil
}

// StatusResult is the read-only streak snapshot for the status endpoint.
type StatusResult struct {
	CurrentStreak    int            `json:"current_streak"`
	LongestStreak    int            `json:"longest_streak"`
	LastActivityDate *time.Time     `json:"last_activity_date"`
	Timezone         string         `json:"timezone"`
	ShieldsRemaining int            `json:"shields_remaining"`
	TotalActiveDays  int            `json:"total_active_days"`
	NextMilestone    *NextMilestone `json:"next_milestone"`
}

// Status returns the user's streak snapshot without mutating anything.
// A never-processed user gets a zero-value snapshot.
func (s *StreakService) Status(ctx context.Context, userID uint) (*StatusResult, error) {
	us, err := s.streaks.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		us = &models.UserStreak{Timezone: "UTC"}
	} else if err != nil {
		return nil, err
	}

	next, err := s.nextMilestone(ctx, userID, us.CurrentStreak)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		CurrentStreak:    us.CurrentStreak,
		LongestStreak:    us.LongestStreak,
		LastActivityDate: us.LastActivityDate,
		Timezone:         us.Timezone,
		ShieldsRemaining: us.ShieldsAvailable,
		TotalActiveDays:  us.TotalActiveDays,
		NextMilestone:    next,
	}, nil
}

func logWarnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}

func logErrorf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf(format, args...)
	}
}
