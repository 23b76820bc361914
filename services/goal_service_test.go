package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/goal"
	"codeQuestAPI/storage"
)

func TestCreateGoalValidation(t *testing.T) {
	svc := NewGoalService(storage.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateGoal(ctx, userID, &goal.CreateGoalRequest{Title: "", Kind: goal.KindDaily, Target: 3})
	assert.Error(t, err)

	_, err = svc.CreateGoal(ctx, userID, &goal.CreateGoalRequest{Title: "Solve 3 problems", Kind: goal.KindDaily, Target: 0})
	assert.Error(t, err)

	_, err = svc.CreateGoal(ctx, userID, &goal.CreateGoalRequest{Title: "Solve 3 problems", Kind: "monthly", Target: 3})
	assert.Error(t, err)

	g, err := svc.CreateGoal(ctx, userID, &goal.CreateGoalRequest{Title: "Solve 3 problems", Kind: goal.KindWeekly, Target: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, g.Current)
	assert.False(t, g.Completed)
	assert.False(t, g.PeriodStart.IsZero())
}

func TestUpdateGoalTargetRecomputesCompletion(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewGoalService(store)
	ctx := context.Background()
	userID := uuid.New()

	g := &goal.Goal{
		ID: uuid.New(), UserID: userID, Title: "Solve 3 problems", Kind: goal.KindDaily,
		Target: 3, Current: 3, Completed: true, PeriodStart: day("2026-03-04"),
	}
	require.NoError(t, store.CreateGoal(ctx, g))

	target := 5
	updated, err := svc.UpdateGoal(ctx, userID, g.ID, &goal.UpdateGoalRequest{Target: &target})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Target)
	assert.False(t, updated.Completed, "raising the target reopens the goal")

	target = 2
	updated, err = svc.UpdateGoal(ctx, userID, g.ID, &goal.UpdateGoalRequest{Target: &target})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
}

func TestRolloverGoalsForNewPeriod(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewGoalService(store)
	ctx := context.Background()
	userID := uuid.New()

	now := day("2026-03-04").Add(9 * time.Hour)
	svc.SetClock(func() time.Time { return now })

	stale := &goal.Goal{
		ID: uuid.New(), UserID: userID, Title: "Solve 3 problems", Kind: goal.KindDaily,
		Target: 3, Current: 3, Completed: true, PeriodStart: day("2026-03-03"), CreatedAt: now,
	}
	fresh := &goal.Goal{
		ID: uuid.New(), UserID: userID, Title: "5 Problems a week", Kind: goal.KindWeekly,
		Target: 5, Current: 2, PeriodStart: day("2026-03-02"), CreatedAt: now,
	}
	require.NoError(t, store.CreateGoal(ctx, stale))
	require.NoError(t, store.CreateGoal(ctx, fresh))

	rolled, err := svc.RolloverGoalsForNewPeriod(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, rolled)

	got, err := store.GetGoal(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Current)
	assert.False(t, got.Completed)
	assert.Equal(t, day("2026-03-04"), got.PeriodStart)

	got, err = store.GetGoal(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Current, "current week's goal is untouched")
}
