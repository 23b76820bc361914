package problem

import (
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/progress"
)

type Problem struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	Title       string              `json:"title" db:"title"`
	Description string              `json:"description" db:"description"`
	Difficulty  progress.Difficulty `json:"difficulty" db:"difficulty"`
	Acceptance  int                 `json:"acceptance" db:"acceptance"`
	Solution    string              `json:"solution,omitempty" db:"solution"`
	Tags        []string            `json:"tags"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
}

type Status string

const (
	StatusSolved    Status = "Solved"
	StatusAttempted Status = "Attempted"
)

// UserProblem records a user's latest submission for a problem. Repeat
// submissions upsert the same row, original first-submission semantics.
type UserProblem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ProblemID   uuid.UUID `json:"problem_id" db:"problem_id"`
	Status      Status    `json:"status" db:"status"`
	Code        string    `json:"code,omitempty" db:"code"`
	Language    string    `json:"language,omitempty" db:"language"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

type Filter struct {
	Difficulty string
	Tag        string
	Search     string
}

type SubmitRequest struct {
	ProblemID uuid.UUID `json:"problemId"`
	Status    Status    `json:"status"`
	Code      string    `json:"code"`
	Language  string    `json:"language"`
}
