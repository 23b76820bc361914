package gamification

import (
	"strings"
	"time"

	"codeQuestAPI/internal/goal"
)

// ApplySolve credits one solved problem against every open goal that
// counts problem solves. Current is clamped at Target; a goal transitions
// to completed at most once per period. Returns the goals that changed and
// the subset that newly completed. An event matching no goals is a no-op.
func ApplySolve(goals []*goal.Goal, now time.Time) (changed, completed []*goal.Goal) {
	for _, g := range goals {
		if g.Completed || !CountsProblemSolves(g.Title) {
			continue
		}
		if g.Current < g.Target {
			g.Current++
		}
		g.UpdatedAt = now
		if g.Current >= g.Target {
			g.Completed = true
			completed = append(completed, g)
		}
		changed = append(changed, g)
	}
	return changed, completed
}

// CountsProblemSolves is the goal-matching rule: a goal counts solve
// events when its title mentions problems ("Solve 3 problems", "5 Problems
// a week"). Carried over from the title-based matching of the original UI.
func CountsProblemSolves(title string) bool {
	return strings.Contains(strings.ToLower(title), "problem")
}

// Rollover resets progress for goals whose period has lapsed: daily goals
// at the day boundary, weekly goals at the ISO week boundary. Returns the
// goals that were reset. Progress never resets mid-period.
func Rollover(goals []*goal.Goal, now time.Time) []*goal.Goal {
	var rolled []*goal.Goal
	for _, g := range goals {
		start := PeriodStart(g.Kind, now)
		if !g.PeriodStart.Before(start) {
			continue
		}
		g.PeriodStart = start
		g.Current = 0
		g.Completed = false
		g.UpdatedAt = now
		rolled = append(rolled, g)
	}
	return rolled
}

// PeriodStart returns the start of the period containing now: midnight UTC
// for daily goals, Monday midnight UTC for weekly goals.
func PeriodStart(kind goal.Kind, now time.Time) time.Time {
	day := DayOf(now)
	if kind != goal.KindWeekly {
		return day
	}
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
