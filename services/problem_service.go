package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"codeQuestAPI/internal/problem"
	"codeQuestAPI/storage"
)

type ProblemService struct {
	store storage.Store
}

func NewProblemService(store storage.Store) *ProblemService {
	return &ProblemService{store: store}
}

func (s *ProblemService) GetProblem(ctx context.Context, id uuid.UUID) (*problem.Problem, error) {
	return s.store.GetProblem(ctx, id)
}

func (s *ProblemService) ListProblems(ctx context.Context, f problem.Filter) ([]*problem.Problem, error) {
	problems, err := s.store.ListProblems(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	return problems, nil
}

func (s *ProblemService) ListTags(ctx context.Context) ([]string, error) {
	return s.store.ListTags(ctx)
}

// ListUserProblems returns the user's submission rows keyed by problem,
// which the client joins with the catalog for solved/attempted markers.
func (s *ProblemService) ListUserProblems(ctx context.Context, userID uuid.UUID) ([]*problem.UserProblem, error) {
	return s.store.ListUserProblems(ctx, userID)
}
