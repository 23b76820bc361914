package gamification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/goal"
)

func newGoal(title string, kind goal.Kind, target, current int) *goal.Goal {
	return &goal.Goal{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       title,
		Kind:        kind,
		Target:      target,
		Current:     current,
		PeriodStart: PeriodStart(kind, day("2026-03-04")),
	}
}

func TestApplySolveMatchesByTitle(t *testing.T) {
	matching := newGoal("Solve 3 problems", goal.KindDaily, 3, 0)
	other := newGoal("Read one article", goal.KindDaily, 1, 0)

	changed, completed := ApplySolve([]*goal.Goal{matching, other}, day("2026-03-04"))

	require.Len(t, changed, 1)
	assert.Equal(t, matching.ID, changed[0].ID)
	assert.Equal(t, 1, matching.Current)
	assert.Empty(t, completed)
	assert.Equal(t, 0, other.Current)
}

func TestApplySolveCompletesExactlyOnce(t *testing.T) {
	g := newGoal("5 Problems a week", goal.KindWeekly, 2, 1)

	_, completed := ApplySolve([]*goal.Goal{g}, day("2026-03-04"))
	require.Len(t, completed, 1)
	assert.True(t, g.Completed)
	assert.Equal(t, 2, g.Current)

	// A completed goal is skipped entirely afterwards.
	changed, completed := ApplySolve([]*goal.Goal{g}, day("2026-03-04"))
	assert.Empty(t, changed)
	assert.Empty(t, completed)
	assert.Equal(t, 2, g.Current, "current is clamped at target")
}

func TestApplySolveNoMatchingGoalsIsNoOp(t *testing.T) {
	changed, completed := ApplySolve(nil, day("2026-03-04"))
	assert.Empty(t, changed)
	assert.Empty(t, completed)
}

func TestRolloverResetsLapsedDailyGoal(t *testing.T) {
	g := newGoal("Solve 3 problems", goal.KindDaily, 3, 2)
	g.PeriodStart = day("2026-03-03")
	g.Completed = true

	rolled := Rollover([]*goal.Goal{g}, day("2026-03-04"))

	require.Len(t, rolled, 1)
	assert.Equal(t, 0, g.Current)
	assert.False(t, g.Completed)
	assert.Equal(t, day("2026-03-04"), g.PeriodStart)
}

func TestRolloverLeavesCurrentPeriodAlone(t *testing.T) {
	g := newGoal("Solve 3 problems", goal.KindDaily, 3, 2)
	g.PeriodStart = day("2026-03-04")

	rolled := Rollover([]*goal.Goal{g}, day("2026-03-04").Add(18*time.Hour))

	assert.Empty(t, rolled)
	assert.Equal(t, 2, g.Current, "progress never resets mid-period")
}

func TestRolloverWeeklyAtISOWeekBoundary(t *testing.T) {
	g := newGoal("5 Problems a week", goal.KindWeekly, 5, 4)
	// 2026-03-02 is a Monday.
	g.PeriodStart = day("2026-03-02")

	assert.Empty(t, Rollover([]*goal.Goal{g}, day("2026-03-08")), "Sunday is still the same ISO week")

	rolled := Rollover([]*goal.Goal{g}, day("2026-03-09"))
	require.Len(t, rolled, 1)
	assert.Equal(t, day("2026-03-09"), g.PeriodStart)
	assert.Equal(t, 0, g.Current)
}

func TestPeriodStart(t *testing.T) {
	assert.Equal(t, day("2026-03-04"), PeriodStart(goal.KindDaily, day("2026-03-04").Add(15*time.Hour)))
	// Wednesday maps back to Monday.
	assert.Equal(t, day("2026-03-02"), PeriodStart(goal.KindWeekly, day("2026-03-04")))
	// Sunday maps back to the previous Monday, not forward.
	assert.Equal(t, day("2026-03-02"), PeriodStart(goal.KindWeekly, day("2026-03-08")))
}
