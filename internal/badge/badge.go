package badge

import (
	"time"

	"github.com/google/uuid"
)

// Badge is a catalog entry. The catalog is loaded once at startup and
// treated as read-only; Requirement is parsed from RawRequirement at load
// time, not per evaluation.
type Badge struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Description    string      `json:"description" db:"description"`
	Icon           string      `json:"icon" db:"icon"`
	Color          string      `json:"color" db:"color"`
	RawRequirement string      `json:"requirement" db:"requirement"`
	Requirement    Requirement `json:"-"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

type UserBadge struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id" db:"badge_id"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`
}

type BadgeWithStatus struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}
