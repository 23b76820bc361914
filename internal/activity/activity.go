package activity

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSolvedProblem   Type = "solved_problem"
	TypeStreakMilestone Type = "streak_milestone"
	TypeGoalCompleted   Type = "goal_completed"
	TypeBadgeEarned     Type = "badge_earned"
)

// Entry is one immutable activity-feed row. IDs are assigned monotonically
// by the store; the feed orders by CreatedAt descending with ID descending
// as the tie-break, so entries appended later always surface first.
type Entry struct {
	ID        int64          `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Type      Type           `json:"type" db:"type"`
	Content   string         `json:"content" db:"content"`
	Metadata  map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// DefaultFeedLimit applies when a feed read passes limit <= 0.
const DefaultFeedLimit = 10
