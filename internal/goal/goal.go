package goal

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindDaily  Kind = "daily"
	KindWeekly Kind = "weekly"
)

type Goal struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Kind        Kind      `json:"kind" db:"kind"`
	Target      int       `json:"target" db:"target"`
	Current     int       `json:"current" db:"current"`
	Completed   bool      `json:"completed" db:"completed"`
	PeriodStart time.Time `json:"period_start" db:"period_start"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (g *Goal) Clone() *Goal {
	cp := *g
	return &cp
}

type CreateGoalRequest struct {
	Title  string `json:"title"`
	Kind   Kind   `json:"kind"`
	Target int    `json:"target"`
}

type UpdateGoalRequest struct {
	Title  *string `json:"title,omitempty"`
	Target *int    `json:"target,omitempty"`
}
