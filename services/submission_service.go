package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/gamification"
	"codeQuestAPI/internal/problem"
	"codeQuestAPI/storage"
)

// SubmitResponse is what the client gets back for one submission. Stats
// holds the gamification outcome when processing succeeded; StatsPending
// is set instead when the submission was recorded but the progression
// update failed and will be retried.
type SubmitResponse struct {
	Submission   *problem.UserProblem `json:"submission"`
	Stats        *SolveResult         `json:"stats,omitempty"`
	StatsPending bool                 `json:"stats_pending,omitempty"`
}

// SubmissionService records submissions and feeds accepted ones to the
// progression engine. Recording and progression are decoupled: a
// progression failure never loses the submission itself.
type SubmissionService struct {
	store       storage.Store
	progression *ProgressionService
	now         func() time.Time
}

func NewSubmissionService(store storage.Store, progression *ProgressionService) *SubmissionService {
	return &SubmissionService{store: store, progression: progression, now: time.Now}
}

func (s *SubmissionService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID, req *problem.SubmitRequest) (*SubmitResponse, error) {
	if req.Status != problem.StatusSolved && req.Status != problem.StatusAttempted {
		return nil, fmt.Errorf("submission status must be %q or %q", problem.StatusSolved, problem.StatusAttempted)
	}
	p, err := s.store.GetProblem(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	up := &problem.UserProblem{
		UserID:      userID,
		ProblemID:   p.ID,
		Status:      req.Status,
		Code:        req.Code,
		Language:    req.Language,
		SubmittedAt: now,
	}
	if err := s.store.UpsertUserProblem(ctx, up); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	resp := &SubmitResponse{Submission: up}

	var ev gamification.Event
	if req.Status == problem.StatusSolved {
		ev = gamification.SolvedEvent{
			User:       userID,
			ProblemID:  p.ID,
			Difficulty: p.Difficulty,
			Tags:       p.Tags,
			Day:        now,
		}
	} else {
		ev = gamification.AttemptedEvent{
			User:      userID,
			ProblemID: p.ID,
			Day:       now,
		}
	}

	result, err := s.progression.ProcessEvent(ctx, ev)
	if err != nil {
		// The submission itself is safe; stats will catch up when the
		// event is replayed.
		log.Printf("submission recorded for user %s but progression failed: %v", userID, err)
		resp.StatsPending = true
		return resp, nil
	}
	resp.Stats = result
	return resp, nil
}
