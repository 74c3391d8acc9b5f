package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/movefit/streakd/models"
	"github.com/movefit/streakd/repository"
)

// issueCoinReward credits coins for one milestone-earning event, exactly
// once per idempotency reference. Failures are logged and absorbed: the
// milestone is already durably recorded, so the credit is reconciled by a
// later idempotent re-run rather than rolling anything back.
func (s *StreakService) issueCoinReward(ctx context.Context, userID uint, def *models.StreakMilestone, earnedDay time.Time) {
	ref := coinReference(def, earnedDay)

	exists, err := s.coins.Exists(ctx, userID, models.TxTypeStreakMilestone, ref)
	if err != nil {
		logErrorf("coin ledger lookup failed user=%d ref=%s err=%v", userID, ref, err)
		return
	}
	if exists {
		return
	}

	amount := s.cfg.CoinAmount(def.DayNumber)
	tx := &models.CoinTransaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Type:          models.TxTypeStreakMilestone,
		ReferenceID:   ref,
		Amount:        amount,
		Description:   fmt.Sprintf("Streak milestone: %s (day %d)", def.Name, def.DayNumber),
	}
	if err := s.coins.Create(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race against a concurrent invocation; credit already applied.
			return
		}
		logErrorf("coin credit failed user=%d ref=%s amount=%d err=%v; will retry on next invocation",
			userID, ref, amount, err)
		return
	}
}

// coinReference derives the stable idempotency key for a milestone earn.
// Repeatable milestones recur, so their reference carries the earn date;
// the (user, milestone, calendar-day) combination stays unique either way.
func coinReference(def *models.StreakMilestone, earnedDay time.Time) string {
	if def.IsRepeatable {
		return fmt.Sprintf("streak_%d_%s", def.ID, earnedDay.Format("2006-01-02"))
	}
	return fmt.Sprintf("streak_%d", def.ID)
}
