package services

import (
	"context"
	"fmt"
	"time"

	"github.com/movefit/streakd/config"
	"github.com/movefit/streakd/models"
	"github.com/movefit/streakd/repository"
)

// Stateful in-memory repositories for engine tests.

type mockStreakRepo struct {
	row    *models.UserStreak
	saves  int
	getErr error
}

func (m *mockStreakRepo) Get(ctx context.Context, userID uint) (*models.UserStreak, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.row == nil {
		return nil, repository.ErrNotFound
	}
	cp := *m.row
	return &cp, nil
}

func (m *mockStreakRepo) Mutate(ctx context.Context, userID uint, fn func(us *models.UserStreak) (bool, error)) (*models.UserStreak, error) {
	if m.row == nil {
		m.row = &models.UserStreak{UserID: userID, Timezone: "UTC"}
	}
	dirty, err := fn(m.row)
	if err != nil {
		return nil, err
	}
	if dirty {
		m.saves++
	}
	cp := *m.row
	return &cp, nil
}

type mockMilestoneRepo struct {
	defs []models.StreakMilestone
}

func (m *mockMilestoneRepo) ListActive(ctx context.Context) ([]models.StreakMilestone, error) {
	return m.defs, nil
}

func (m *mockMilestoneRepo) GetByID(ctx context.Context, id uint) (*models.StreakMilestone, error) {
	for i := range m.defs {
		if m.defs[i].ID == id {
			return &m.defs[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockMilestoneRepo) Create(ctx context.Context, def *models.StreakMilestone) error {
	m.defs = append(m.defs, *def)
	return nil
}

func (m *mockMilestoneRepo) Update(ctx context.Context, def *models.StreakMilestone) error {
	for i := range m.defs {
		if m.defs[i].ID == def.ID {
			m.defs[i] = *def
			return nil
		}
	}
	return repository.ErrNotFound
}

type mockProgressRepo struct {
	rows      []models.MilestoneProgress
	createErr error
}

func (m *mockProgressRepo) HasAny(ctx context.Context, userID, milestoneID uint) (bool, error) {
	for _, r := range m.rows {
		if r.UserID == userID && r.MilestoneID == milestoneID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProgressRepo) HasOnDay(ctx context.Context, userID, milestoneID uint, day time.Time) (bool, error) {
	for _, r := range m.rows {
		if r.UserID == userID && r.MilestoneID == milestoneID && r.EarnedDay.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProgressRepo) Create(ctx context.Context, p *models.MilestoneProgress) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.rows {
		if r.UserID == p.UserID && r.MilestoneID == p.MilestoneID && r.EarnedDay.Equal(p.EarnedDay) {
			return repository.ErrDuplicate
		}
	}
	p.ID = uint(len(m.rows) + 1)
	m.rows = append(m.rows, *p)
	return nil
}

func (m *mockProgressRepo) ListByUser(ctx context.Context, userID uint) ([]models.MilestoneProgress, error) {
	var out []models.MilestoneProgress
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockProgressRepo) LatestForMilestone(ctx context.Context, userID, milestoneID uint) (*models.MilestoneProgress, error) {
	var latest *models.MilestoneProgress
	for i := range m.rows {
		r := &m.rows[i]
		if r.UserID != userID || r.MilestoneID != milestoneID {
			continue
		}
		if latest == nil || r.EarnedDay.After(latest.EarnedDay) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockProgressRepo) Save(ctx context.Context, p *models.MilestoneProgress) error {
	for i := range m.rows {
		if m.rows[i].ID == p.ID {
			m.rows[i] = *p
			return nil
		}
	}
	return repository.ErrNotFound
}

type mockCoinRepo struct {
	txs       []models.CoinTransaction
	createErr error
}

func (m *mockCoinRepo) Exists(ctx context.Context, userID uint, txType, referenceID string) (bool, error) {
	for _, t := range m.txs {
		if t.UserID == userID && t.Type == txType && t.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCoinRepo) Create(ctx context.Context, t *models.CoinTransaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.txs {
		if existing.UserID == t.UserID && existing.Type == t.Type && existing.ReferenceID == t.ReferenceID {
			return repository.ErrDuplicate
		}
	}
	m.txs = append(m.txs, *t)
	return nil
}

type mockActivityRepo struct {
	days map[string]bool // "userID/2006-01-02" -> qualifies
	err  error
}

func (m *mockActivityRepo) HasQualifyingActivity(ctx context.Context, userID uint, day time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.days[activityKey(userID, day)], nil
}

func activityKey(userID uint, day time.Time) string {
	return fmt.Sprintf("%d/%s", userID, day.Format("2006-01-02"))
}

type mockSubscriptionRepo struct {
	tier string
	err  error
}

func (m *mockSubscriptionRepo) GetTier(ctx context.Context, userID uint) (string, error) {
	return m.tier, m.err
}

// testClock is a fixed instant used across engine tests.
var testClock = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

type testEnv struct {
	svc      *StreakService
	streaks  *mockStreakRepo
	defs     *mockMilestoneRepo
	progress *mockProgressRepo
	coins    *mockCoinRepo
	activity *mockActivityRepo
	subs     *mockSubscriptionRepo
}

func newTestEnv() *testEnv {
	env := &testEnv{
		streaks:  &mockStreakRepo{},
		defs:     &mockMilestoneRepo{},
		progress: &mockProgressRepo{},
		coins:    &mockCoinRepo{},
		activity: &mockActivityRepo{days: map[string]bool{}},
		subs:     &mockSubscriptionRepo{},
	}
	cfg := config.StreakConfig{
		ShieldCaps:          map[string]int{"mover": 2, "coach": 3, "crusher": 5},
		DefaultTier:         "mover",
		CoinDefaults:        map[int]int{7: 50, 14: 100, 30: 250, 60: 500, 90: 750, 180: 1500, 365: 3000},
		FallbackCoinBase:    10,
		FallbackCoinPerWeek: 25,
	}
	env.svc = NewStreakService(env.streaks, env.defs, env.progress, env.coins, env.activity, env.subs, cfg)
	env.svc.now = func() time.Time { return testClock }
	return env
}

// logActivity marks a qualifying activity for the user on the given UTC-midnight date.
func (e *testEnv) logActivity(userID uint, day time.Time) {
	e.activity.days[activityKey(userID, day)] = true
}

// date is a shorthand for a UTC-midnight calendar date.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dptr(t time.Time) *time.Time { return &t }
