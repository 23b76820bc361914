package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"codeQuestAPI/internal/friendship"
	"codeQuestAPI/internal/user"
	"codeQuestAPI/storage"
)

// inviteTTL bounds how long a QR friend invite stays scannable.
const inviteTTL = 15 * time.Minute

type FriendshipService struct {
	store    storage.Store
	notifier *NotificationService
}

func NewFriendshipService(store storage.Store) *FriendshipService {
	return &FriendshipService{store: store}
}

func (s *FriendshipService) SetNotifier(n *NotificationService) {
	s.notifier = n
}

func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, addresseeID uuid.UUID) (*friendship.Friendship, error) {
	if requesterID == addresseeID {
		return nil, fmt.Errorf("cannot befriend yourself")
	}
	if _, err := s.store.GetUser(ctx, addresseeID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f := &friendship.Friendship{
		ID:          uuid.New(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      friendship.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateFriendship(ctx, f); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if requester, err := s.store.GetUser(ctx, requesterID); err == nil {
			s.notifier.NotifyFriendRequest(addresseeID, requester.Username)
		}
	}
	return f, nil
}

func (s *FriendshipService) Respond(ctx context.Context, userID, friendshipID uuid.UUID, accept bool) (*friendship.Friendship, error) {
	f, err := s.store.GetFriendship(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if f.AddresseeID != userID {
		return nil, fmt.Errorf("only the addressee can respond to a friend request")
	}
	if f.Status != friendship.StatusPending {
		return nil, fmt.Errorf("friend request already %s", f.Status)
	}
	if accept {
		f.Status = friendship.StatusAccepted
	} else {
		f.Status = friendship.StatusRejected
	}
	f.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateFriendship(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FriendshipService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return s.store.DeleteFriendship(ctx, userID, friendID)
}

// ListFriends resolves accepted edges to the friend users themselves.
func (s *FriendshipService) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	edges, err := s.store.ListFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	friends := make([]*user.User, 0, len(edges))
	for _, f := range edges {
		u, err := s.store.GetUser(ctx, f.OtherSide(userID))
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, err
		}
		friends = append(friends, u)
	}
	return friends, nil
}

func (s *FriendshipService) ListRequests(ctx context.Context, userID uuid.UUID) ([]*friendship.Friendship, error) {
	return s.store.ListFriendRequests(ctx, userID)
}

// FriendIDs returns just the accepted friends' IDs, used to scope the
// activity feed and the friends leaderboard.
func (s *FriendshipService) FriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	edges, err := s.store.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.OtherSide(userID))
	}
	return ids, nil
}

// CreateInviteQR mints a short-lived invite token and renders it as a QR
// PNG the client displays for scanning.
func (s *FriendshipService) CreateInviteQR(ctx context.Context, userID uuid.UUID, size int) ([]byte, string, error) {
	if size <= 0 {
		size = 256
	}
	inv := &friendship.Invite{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(inviteTTL),
	}
	if err := s.store.CreateFriendInvite(ctx, inv); err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}
	png, err := qrcode.Encode(inv.Token, qrcode.Medium, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render invite QR: %w", err)
	}
	return png, inv.Token, nil
}

// AcceptInvite consumes a scanned invite token and creates an already
// accepted friendship between inviter and scanner.
func (s *FriendshipService) AcceptInvite(ctx context.Context, scannerID uuid.UUID, token string) (*friendship.Friendship, error) {
	inv, err := s.store.ConsumeFriendInvite(ctx, token, time.Now().UTC())
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, fmt.Errorf("invite is invalid or expired")
		}
		return nil, err
	}
	if inv.UserID == scannerID {
		return nil, fmt.Errorf("cannot accept your own invite")
	}
	now := time.Now().UTC()
	f := &friendship.Friendship{
		ID:          uuid.New(),
		RequesterID: inv.UserID,
		AddresseeID: scannerID,
		Status:      friendship.StatusAccepted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateFriendship(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
