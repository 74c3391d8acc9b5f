package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movefit/streakd/models"
	"github.com/movefit/streakd/repository"
)

var (
	// ErrMilestoneNotEarned is returned when a claim targets a milestone the
	// user has no progress row for.
	ErrMilestoneNotEarned = errors.New("milestone not earned")
	// ErrRewardExpired is returned when a trial reward is claimed past its expiry.
	ErrRewardExpired = errors.New("reward expired")
)

// evaluateMilestones finds milestone definitions newly earned by the current
// streak value, records one MilestoneProgress row per earning event and
// delegates each to the reward issuer. Storage errors propagate; a duplicate
// progress row (concurrent invocation won the insert) is skipped silently.
func (s *StreakService) evaluateMilestones(ctx context.Context, userID uint, currentStreak int, today, now time.Time) ([]EarnedMilestone, error) {
	defs, err := s.milestones.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}

	earned := []EarnedMilestone{}
	for i := range defs {
		def := &defs[i]
		if def.DayNumber > currentStreak {
			break // defs are ordered by day number
		}

		newly, err := s.milestoneNewlyEarned(ctx, userID, def, currentStreak, today)
		if err != nil {
			return earned, err
		}
		if !newly {
			continue
		}

		var expires *time.Time
		if def.IsTrialReward() {
			if days := def.TrialDays(); days > 0 {
				e := now.AddDate(0, 0, days)
				expires = &e
			}
		}

		row := &models.MilestoneProgress{
			UserID:          userID,
			MilestoneID:     def.ID,
			EarnedDay:       today,
			EarnedAt:        now,
			StreakLength:    currentStreak,
			RewardExpiresAt: expires,
		}
		if err := s.progress.Create(ctx, row); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return earned, fmt.Errorf("record milestone %d: %w", def.ID, err)
		}

		s.issueCoinReward(ctx, userID, def, today)

		earned = append(earned, EarnedMilestone{
			MilestoneID:     def.ID,
			DayNumber:       def.DayNumber,
			Name:            def.Name,
			Description:     def.Description,
			RewardType:      def.RewardType,
			RewardValue:     def.RawRewardValue(),
			RewardExpiresAt: expires,
		})
	}
	return earned, nil
}

// milestoneNewlyEarned applies the earning rules:
// non-repeatable — exact day-number match and never earned before;
// repeatable — at or past the threshold, on an interval boundary, and not
// already earned on today's calendar date.
func (s *StreakService) milestoneNewlyEarned(ctx context.Context, userID uint, def *models.StreakMilestone, currentStreak int, today time.Time) (bool, error) {
	interval := 0
	if def.IsRepeatable && def.RepeatInterval != nil {
		interval = *def.RepeatInterval
	}

	if !def.IsRepeatable || interval <= 0 {
		if currentStreak != def.DayNumber {
			return false, nil
		}
		has, err := s.progress.HasAny(ctx, userID, def.ID)
		if err != nil {
			return false, err
		}
		return !has, nil
	}

	if currentStreak < def.DayNumber {
		return false, nil
	}
	if (currentStreak-def.DayNumber)%interval != 0 {
		return false, nil
	}
	hasToday, err := s.progress.HasOnDay(ctx, userID, def.ID, today)
	if err != nil {
		return false, err
	}
	return !hasToday, nil
}

// nextMilestone returns the closest milestone the user has not reached yet:
// the lowest unearned day number above the current streak for non-repeatable
// definitions, or the next interval occurrence for repeatable ones.
func (s *StreakService) nextMilestone(ctx context.Context, userID uint, currentStreak int) (*NextMilestone, error) {
	defs, err := s.milestones.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}

	var best *NextMilestone
	for i := range defs {
		def := &defs[i]

		var candidate int
		if def.IsRepeatable && def.RepeatInterval != nil && *def.RepeatInterval > 0 {
			interval := *def.RepeatInterval
			if currentStreak < def.DayNumber {
				candidate = def.DayNumber
			} else {
				steps := (currentStreak-def.DayNumber)/interval + 1
				candidate = def.DayNumber + steps*interval
			}
		} else {
			if def.DayNumber <= currentStreak {
				continue
			}
			has, err := s.progress.HasAny(ctx, userID, def.ID)
			if err != nil {
				return nil, err
			}
			if has {
				continue
			}
			candidate = def.DayNumber
		}

		if best == nil || candidate < best.DayNumber {
			best = &NextMilestone{
				DayNumber: candidate,
				Name:      def.Name,
				DaysAway:  candidate - currentStreak,
			}
		}
	}
	return best, nil
}

// MilestoneOverview pairs the milestone catalog with the caller's progress.
type MilestoneOverview struct {
	Milestones []models.StreakMilestone   `json:"milestones"`
	Progress   []models.MilestoneProgress `json:"progress"`
}

// ListMilestones returns the active milestone definitions plus the user's
// earning history, for the catalog endpoint.
func (s *StreakService) ListMilestones(ctx context.Context, userID uint) (*MilestoneOverview, error) {
	defs, err := s.milestones.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MilestoneOverview{Milestones: defs, Progress: rows}, nil
}

// ClaimReward marks the user's most recent earning of a milestone as
// claimed. Claiming an already-claimed reward is a no-op returning the
// existing row; claiming an expired trial fails with ErrRewardExpired.
// The actual entitlement activation is owned by the subscription component,
// which reads reward_expires_at from the same row.
func (s *StreakService) ClaimReward(ctx context.Context, userID, milestoneID uint) (*models.MilestoneProgress, error) {
	row, err := s.progress.LatestForMilestone(ctx, userID, milestoneID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMilestoneNotEarned
	}
	if err != nil {
		return nil, err
	}

	if row.RewardClaimed {
		return row, nil
	}

	now := s.now()
	if row.RewardExpiresAt != nil && now.After(*row.RewardExpiresAt) {
		return nil, ErrRewardExpired
	}

	row.RewardClaimed = true
	row.RewardClaimedAt = &now
	if err := s.progress.Save(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}
