package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/notification"
	"codeQuestAPI/storage"
)

// NotificationService registers device tokens and fans pushes out through
// the configured provider. Without a provider every Notify call is a
// silent no-op, which is how local runs behave.
type NotificationService struct {
	store    storage.Store
	provider notification.PushProvider
}

func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) SetPushProvider(p notification.PushProvider) {
	s.provider = p
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("device token is required")
	}
	return s.store.RegisterDeviceToken(ctx, &notification.DeviceToken{
		UserID:    userID,
		Token:     req.Token,
		Platform:  req.Platform,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *NotificationService) NotifyStreakMilestone(userID uuid.UUID, streak int) {
	s.push(userID, "Streak milestone!", fmt.Sprintf("You're on a %d-day streak. Keep it going!", streak), map[string]any{
		"type":   "streak_milestone",
		"streak": streak,
	})
}

func (s *NotificationService) NotifyBadgeEarned(userID uuid.UUID, b *badge.Badge) {
	s.push(userID, "Badge earned!", fmt.Sprintf("You earned the %s badge.", b.Name), map[string]any{
		"type":     "badge_earned",
		"badge_id": b.ID.String(),
	})
}

func (s *NotificationService) NotifyFriendRequest(userID uuid.UUID, fromUsername string) {
	s.push(userID, "New friend request", fmt.Sprintf("%s wants to be your friend.", fromUsername), map[string]any{
		"type": "friend_request",
	})
}

// push delivers in the background; notification failures never block or
// fail the caller.
func (s *NotificationService) push(userID uuid.UUID, title, body string, data map[string]any) {
	if s.provider == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tokens, err := s.store.ListDeviceTokens(ctx, userID)
		if err != nil {
			log.Printf("push to user %s skipped, token lookup failed: %v", userID, err)
			return
		}
		if len(tokens) == 0 {
			return
		}
		devices := make([]notification.DeviceToken, 0, len(tokens))
		for _, t := range tokens {
			devices = append(devices, *t)
		}
		if err := s.provider.SendPush(ctx, devices, title, body, data); err != nil {
			log.Printf("push to user %s failed: %v", userID, err)
		}
	}()
}
