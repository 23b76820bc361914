package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/gamification"
	"codeQuestAPI/internal/goal"
	"codeQuestAPI/storage"
)

type GoalService struct {
	store storage.EventStore
	now   func() time.Time
}

func NewGoalService(store storage.EventStore) *GoalService {
	return &GoalService{store: store, now: time.Now}
}

func (s *GoalService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *GoalService) CreateGoal(ctx context.Context, userID uuid.UUID, req *goal.CreateGoalRequest) (*goal.Goal, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("goal title is required")
	}
	if req.Target < 1 {
		return nil, fmt.Errorf("goal target must be at least 1")
	}
	kind := req.Kind
	if kind != goal.KindDaily && kind != goal.KindWeekly {
		return nil, fmt.Errorf("goal kind must be %q or %q", goal.KindDaily, goal.KindWeekly)
	}

	now := s.now().UTC()
	g := &goal.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Kind:        kind,
		Target:      req.Target,
		PeriodStart: gamification.PeriodStart(kind, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) GetGoals(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	goals, err := s.store.LoadGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	return goals, nil
}

func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID uuid.UUID, req *goal.UpdateGoalRequest) (*goal.Goal, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, storage.ErrNotFound
	}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("goal title cannot be empty")
		}
		g.Title = *req.Title
	}
	if req.Target != nil {
		if *req.Target < 1 {
			return nil, fmt.Errorf("goal target must be at least 1")
		}
		g.Target = *req.Target
		// Raising the target can reopen a goal that was already met.
		g.Completed = g.Current >= g.Target
	}
	g.UpdatedAt = s.now().UTC()
	if err := s.store.SaveGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return g, nil
}

// RolloverGoalsForNewPeriod resets progress for every goal of the user
// whose period has lapsed. Runs inside the same per-user event scope as
// solve processing, so a rollover never interleaves with a solve.
func (s *GoalService) RolloverGoalsForNewPeriod(ctx context.Context, userID uuid.UUID) (int, error) {
	rolled := 0
	err := s.store.WithinUserEvent(ctx, userID, func(ctx context.Context, st storage.Store) error {
		goals, err := st.LoadGoals(ctx, userID)
		if err != nil {
			return err
		}
		for _, g := range gamification.Rollover(goals, s.now().UTC()) {
			if err := st.SaveGoal(ctx, g); err != nil {
				return err
			}
			rolled++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to roll over goals for user %s: %w", userID, err)
	}
	if rolled > 0 {
		log.Printf("rolled over %d goals for user %s", rolled, userID)
	}
	return rolled, nil
}

// RolloverAll sweeps every user. Called by the periodic worker.
func (s *GoalService) RolloverAll(ctx context.Context) error {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for rollover: %w", err)
	}
	for _, id := range ids {
		if _, err := s.RolloverGoalsForNewPeriod(ctx, id); err != nil {
			// One stuck user should not halt the sweep.
			log.Printf("goal rollover: %v", err)
		}
	}
	return nil
}
