package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/activity"
	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/gamification"
	"codeQuestAPI/internal/goal"
	"codeQuestAPI/internal/progress"
	"codeQuestAPI/storage"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type progressionFixture struct {
	store  *storage.MemoryStore
	svc    *ProgressionService
	userID uuid.UUID
}

func newProgressionFixture(t *testing.T) *progressionFixture {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := NewProgressionService(store, NewBadgeService(store))
	svc.SetClock(func() time.Time { return day("2026-03-04").Add(10 * time.Hour) })
	return &progressionFixture{store: store, svc: svc, userID: uuid.New()}
}

func (f *progressionFixture) solve(t *testing.T, d progress.Difficulty, tags []string, onDay string) *SolveResult {
	t.Helper()
	result, err := f.svc.ProcessEvent(context.Background(), gamification.SolvedEvent{
		User:       f.userID,
		ProblemID:  uuid.New(),
		Difficulty: d,
		Tags:       tags,
		Day:        day(onDay),
	})
	require.NoError(t, err)
	return result
}

func (f *progressionFixture) addBadge(t *testing.T, name, raw string) *badge.Badge {
	t.Helper()
	b := &badge.Badge{ID: uuid.New(), Name: name, RawRequirement: raw, CreatedAt: time.Now()}
	require.NoError(t, f.store.CreateBadge(context.Background(), b))
	return b
}

func TestProcessSolvedFirstEver(t *testing.T) {
	f := newProgressionFixture(t)

	result := f.solve(t, progress.DifficultyEasy, []string{"Array"}, "2026-03-04")

	assert.Equal(t, 1, result.NewStreak)
	assert.Equal(t, 10, result.XPAwarded)
	assert.Equal(t, 1, result.Level)

	p, err := f.store.LoadUserProgress(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, 1, p.TotalSolved)
	assert.Equal(t, 1, p.SolvedByDifficulty[progress.DifficultyEasy])
	assert.Equal(t, 1, p.SolvedByTag["Array"])
	assert.Equal(t, 10, p.XP)

	feed, err := f.store.ReadActivity(context.Background(), f.userID, nil, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, activity.TypeSolvedProblem, feed[0].Type)
}

func TestProcessSolvedConsecutiveAndSameDay(t *testing.T) {
	f := newProgressionFixture(t)

	f.solve(t, progress.DifficultyEasy, nil, "2026-03-01")
	result := f.solve(t, progress.DifficultyMedium, nil, "2026-03-02")
	assert.Equal(t, 2, result.NewStreak)

	// Second solve the same day: streak holds, counters still move.
	result = f.solve(t, progress.DifficultyHard, nil, "2026-03-02")
	assert.Equal(t, 2, result.NewStreak)

	p, err := f.store.LoadUserProgress(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Streak)
	assert.Equal(t, 3, p.TotalSolved)
	assert.Equal(t, 10+25+50, p.XP)
}

func TestProcessSolvedGapResetsStreak(t *testing.T) {
	f := newProgressionFixture(t)

	f.solve(t, progress.DifficultyEasy, nil, "2026-03-01")
	f.solve(t, progress.DifficultyEasy, nil, "2026-03-02")
	result := f.solve(t, progress.DifficultyEasy, nil, "2026-03-07")

	assert.Equal(t, 1, result.NewStreak)
}

func TestProcessSolvedOutOfOrderDayKeepsStreak(t *testing.T) {
	f := newProgressionFixture(t)

	f.solve(t, progress.DifficultyEasy, nil, "2026-03-03")
	f.solve(t, progress.DifficultyEasy, nil, "2026-03-04")

	// An event dated before the last active day must not corrupt the
	// streak, but the solve itself still counts.
	result := f.solve(t, progress.DifficultyEasy, nil, "2026-03-02")
	assert.Equal(t, 2, result.NewStreak)

	p, err := f.store.LoadUserProgress(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Streak)
	assert.Equal(t, day("2026-03-04"), *p.LastActiveDay)
	assert.Equal(t, 3, p.TotalSolved)
}

func TestProcessSolvedAwardsBadgesAtMostOnce(t *testing.T) {
	f := newProgressionFixture(t)
	streak3 := f.addBadge(t, "3-Day Streak", "streak:3")

	f.solve(t, progress.DifficultyEasy, nil, "2026-03-01")
	f.solve(t, progress.DifficultyEasy, nil, "2026-03-02")
	result := f.solve(t, progress.DifficultyEasy, nil, "2026-03-03")

	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, streak3.ID, result.NewBadges[0].ID)

	// The milestone day also produces a streak_milestone entry.
	feed, err := f.store.ReadActivity(context.Background(), f.userID, nil, 0)
	require.NoError(t, err)
	types := make(map[activity.Type]int)
	for _, e := range feed {
		types[e.Type]++
	}
	assert.Equal(t, 1, types[activity.TypeBadgeEarned])
	assert.Equal(t, 1, types[activity.TypeStreakMilestone])

	// Later solves keep satisfying the requirement but never re-award.
	result = f.solve(t, progress.DifficultyEasy, nil, "2026-03-04")
	assert.Empty(t, result.NewBadges)

	earned, err := f.store.ListUserBadges(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}

func TestProcessSolvedUnknownRequirementNeverAwarded(t *testing.T) {
	f := newProgressionFixture(t)
	f.addBadge(t, "Mystery", "totally:not:a:rule")

	result := f.solve(t, progress.DifficultyHard, []string{"Graph"}, "2026-03-04")
	assert.Empty(t, result.NewBadges)
}

func TestProcessSolvedCreditsGoalsOnce(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()

	g := &goal.Goal{
		ID:          uuid.New(),
		UserID:      f.userID,
		Title:       "Solve 2 problems",
		Kind:        goal.KindDaily,
		Target:      2,
		PeriodStart: day("2026-03-04"),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.store.CreateGoal(ctx, g))

	result := f.solve(t, progress.DifficultyEasy, nil, "2026-03-04")
	assert.Empty(t, result.CompletedGoals)

	result = f.solve(t, progress.DifficultyEasy, nil, "2026-03-04")
	require.Len(t, result.CompletedGoals, 1)
	assert.Equal(t, g.ID, result.CompletedGoals[0].ID)

	// A completed goal stays completed and is not credited again.
	result = f.solve(t, progress.DifficultyEasy, nil, "2026-03-04")
	assert.Empty(t, result.CompletedGoals)

	stored, err := f.store.GetGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, 2, stored.Current)

	feed, err := f.store.ReadActivity(ctx, f.userID, nil, 0)
	require.NoError(t, err)
	completions := 0
	for _, e := range feed {
		if e.Type == activity.TypeGoalCompleted {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}

// failingEventStore injects a write failure into the event scope so the
// rollback path can be observed from outside.
type failingEventStore struct {
	*storage.MemoryStore
}

type failingStore struct {
	storage.Store
}

func (f *failingEventStore) WithinUserEvent(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, s storage.Store) error) error {
	return f.MemoryStore.WithinUserEvent(ctx, userID, func(ctx context.Context, st storage.Store) error {
		return fn(ctx, &failingStore{Store: st})
	})
}

func (f *failingStore) SaveUserProgress(ctx context.Context, p *progress.UserProgress) error {
	return storage.ErrUnavailable
}

func TestProcessSolvedStorageFailureLeavesNoPartialState(t *testing.T) {
	mem := storage.NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	b := &badge.Badge{ID: uuid.New(), Name: "3-Day Streak", RawRequirement: "streak:1", CreatedAt: time.Now()}
	require.NoError(t, mem.CreateBadge(ctx, b))
	g := &goal.Goal{
		ID: uuid.New(), UserID: userID, Title: "Solve 1 problem", Kind: goal.KindDaily,
		Target: 1, PeriodStart: day("2026-03-04"), CreatedAt: time.Now(),
	}
	require.NoError(t, mem.CreateGoal(ctx, g))

	svc := NewProgressionService(&failingEventStore{mem}, NewBadgeService(mem))

	_, err := svc.ProcessEvent(ctx, gamification.SolvedEvent{
		User:       userID,
		ProblemID:  uuid.New(),
		Difficulty: progress.DifficultyEasy,
		Day:        day("2026-03-04"),
	})
	require.ErrorIs(t, err, storage.ErrUnavailable)

	p, err := mem.LoadUserProgress(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Streak)
	assert.Equal(t, 0, p.TotalSolved)

	stored, err := mem.GetGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Current)
	assert.False(t, stored.Completed)

	earned, err := mem.ListUserBadges(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, earned)

	feed, err := mem.ReadActivity(ctx, userID, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestProcessAttemptedIsNoOp(t *testing.T) {
	f := newProgressionFixture(t)

	result, err := f.svc.ProcessEvent(context.Background(), gamification.AttemptedEvent{
		User:      f.userID,
		ProblemID: uuid.New(),
		Day:       day("2026-03-04"),
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	p, err := f.store.LoadUserProgress(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Streak)
	assert.Equal(t, 0, p.TotalSolved)
}

func TestProcessEventRejectsInvalid(t *testing.T) {
	f := newProgressionFixture(t)

	_, err := f.svc.ProcessEvent(context.Background(), gamification.SolvedEvent{
		User: f.userID,
		// missing problem id and difficulty
		Day: day("2026-03-04"),
	})
	require.Error(t, err)
}
