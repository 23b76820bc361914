package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/gamification"
	"codeQuestAPI/internal/goal"
	"codeQuestAPI/internal/stats"
	"codeQuestAPI/internal/user"
	"codeQuestAPI/storage"
)

const (
	defaultGoalTitle  = "Solve 3 problems"
	defaultGoalTarget = 3
)

type UserService struct {
	store storage.Store
}

func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if req.ClerkID == "" || req.Email == "" || req.Username == "" {
		return nil, fmt.Errorf("clerk_id, email and username are required")
	}
	now := time.Now().UTC()
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FullName:  req.FullName,
		AvatarID:  req.AvatarID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Every new account starts with a daily goal so there is something
	// to track from the first solve.
	g := &goal.Goal{
		ID:          uuid.New(),
		UserID:      u.ID,
		Title:       defaultGoalTitle,
		Kind:        goal.KindDaily,
		Target:      defaultGoalTarget,
		PeriodStart: gamification.PeriodStart(goal.KindDaily, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		log.Printf("failed to create default goal for user %s: %v", u.ID, err)
	}

	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return s.store.GetUserByClerkID(ctx, clerkID)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		if *req.Username == "" {
			return nil, fmt.Errorf("username cannot be empty")
		}
		u.Username = *req.Username
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.AvatarID != nil {
		u.AvatarID = *req.AvatarID
	}
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteUser(ctx, id)
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, u.ID)
}

// GetStats assembles the profile-page stat block from the progress
// aggregate plus badge, friend and goal counts.
func (s *UserService) GetStats(ctx context.Context, userID uuid.UUID) (*stats.UserStats, error) {
	p, err := s.store.LoadUserProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	earned, err := s.store.LoadEarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}
	friends, err := s.store.ListFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friendships: %w", err)
	}
	goals, err := s.store.LoadGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	goalsCompleted := 0
	for _, g := range goals {
		if g.Completed {
			goalsCompleted++
		}
	}
	return &stats.UserStats{
		Streak:             p.Streak,
		TotalSolved:        p.TotalSolved,
		SolvedByDifficulty: p.SolvedByDifficulty,
		XP:                 p.XP,
		Level:              p.Level,
		BadgesEarned:       len(earned),
		FriendsCount:       len(friends),
		GoalsCompleted:     goalsCompleted,
	}, nil
}
