package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"codeQuestAPI/internal/leaderboard"
	"codeQuestAPI/storage"
)

const defaultLeaderboardLimit = 50

type LeaderboardService struct {
	store       storage.Store
	friendships *FriendshipService
}

func NewLeaderboardService(store storage.Store, friendships *FriendshipService) *LeaderboardService {
	return &LeaderboardService{store: store, friendships: friendships}
}

// Global ranks every user by streak, XP breaking ties.
func (s *LeaderboardService) Global(ctx context.Context, userID uuid.UUID, limit int) (*leaderboard.Leaderboard, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	entries, err := s.store.Leaderboard(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	return s.assemble(entries, userID), nil
}

// Friends ranks the user and their accepted friends only.
func (s *LeaderboardService) Friends(ctx context.Context, userID uuid.UUID, limit int) (*leaderboard.Leaderboard, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	friendIDs, err := s.friendships.FriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friends for leaderboard: %w", err)
	}
	scope := append(friendIDs, userID)
	entries, err := s.store.Leaderboard(ctx, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build friends leaderboard: %w", err)
	}
	return s.assemble(entries, userID), nil
}

func (s *LeaderboardService) assemble(entries []*leaderboard.Entry, userID uuid.UUID) *leaderboard.Leaderboard {
	lb := &leaderboard.Leaderboard{
		Entries:    entries,
		TotalUsers: len(entries),
	}
	for _, e := range entries {
		if e.UserID == userID {
			lb.UserPosition = e
			break
		}
	}
	return lb
}
