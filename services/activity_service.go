package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"codeQuestAPI/internal/activity"
	"codeQuestAPI/storage"
)

type ActivityService struct {
	store       storage.Store
	friendships *FriendshipService
}

func NewActivityService(store storage.Store, friendships *FriendshipService) *ActivityService {
	return &ActivityService{store: store, friendships: friendships}
}

// GetFeed merges the user's own entries with their accepted friends',
// newest first, capped at limit (default 10).
func (s *ActivityService) GetFeed(ctx context.Context, userID uuid.UUID, limit int) ([]*activity.Entry, error) {
	friendIDs, err := s.friendships.FriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friends for feed: %w", err)
	}
	entries, err := s.store.ReadActivity(ctx, userID, friendIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity feed: %w", err)
	}
	return entries, nil
}
