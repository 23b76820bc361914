// Package gamification holds the streak, goal-progress, and badge-award
// engine. Everything here is pure in-memory math over the per-user
// aggregate; persistence belongs to the caller.
package gamification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/progress"
)

// Event is the tagged union of things the engine can be fed. Each variant
// carries one explicit schema and is validated at the boundary before it
// reaches the engine.
type Event interface {
	UserID() uuid.UUID
	Validate() error
}

// SolvedEvent is a submission that the judge accepted.
type SolvedEvent struct {
	User       uuid.UUID
	ProblemID  uuid.UUID
	Difficulty progress.Difficulty
	Tags       []string
	Day        time.Time
}

func (e SolvedEvent) UserID() uuid.UUID { return e.User }

func (e SolvedEvent) Validate() error {
	if e.User == uuid.Nil {
		return fmt.Errorf("solved event: missing user id")
	}
	if e.ProblemID == uuid.Nil {
		return fmt.Errorf("solved event: missing problem id")
	}
	if _, err := progress.ParseDifficulty(string(e.Difficulty)); err != nil {
		return fmt.Errorf("solved event: %w", err)
	}
	if e.Day.IsZero() {
		return fmt.Errorf("solved event: missing day")
	}
	return nil
}

// AttemptedEvent is a submission that did not pass. It never touches
// streaks, goals, or badges.
type AttemptedEvent struct {
	User      uuid.UUID
	ProblemID uuid.UUID
	Day       time.Time
}

func (e AttemptedEvent) UserID() uuid.UUID { return e.User }

func (e AttemptedEvent) Validate() error {
	if e.User == uuid.Nil {
		return fmt.Errorf("attempted event: missing user id")
	}
	if e.ProblemID == uuid.Nil {
		return fmt.Errorf("attempted event: missing problem id")
	}
	return nil
}

// DayOf truncates a timestamp to calendar-day granularity in UTC. The
// engine reasons about days only, never time-of-day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day distance between two timestamps.
func DaysBetween(from, to time.Time) int {
	return int(DayOf(to).Sub(DayOf(from)).Hours() / 24)
}
