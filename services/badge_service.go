package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"codeQuestAPI/internal/badge"
	"codeQuestAPI/storage"
)

type BadgeService struct {
	store storage.Store
}

func NewBadgeService(store storage.Store) *BadgeService {
	return &BadgeService{store: store}
}

// Catalog returns every badge with its requirement parsed. Badges whose
// requirement does not parse stay in the catalog (so clients can still
// render them) but carry an unknown requirement, which never matches, so
// they are never awarded. The bad requirement is logged once per load as a
// configuration warning.
func (s *BadgeService) Catalog(ctx context.Context, st storage.Store) ([]*badge.Badge, error) {
	if st == nil {
		st = s.store
	}
	badges, err := st.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}
	return ParseCatalog(badges), nil
}

// ParseCatalog fills Requirement from RawRequirement on every badge,
// logging unparseable ones.
func ParseCatalog(badges []*badge.Badge) []*badge.Badge {
	for _, b := range badges {
		req, err := badge.ParseRequirement(b.RawRequirement)
		if err != nil {
			log.Printf("badge %q has unusable requirement %q, it will never be awarded: %v", b.Name, b.RawRequirement, err)
		}
		b.Requirement = req
	}
	return badges
}

// GetUserBadges returns the full catalog annotated with the user's earned
// state, earned badges first is left to the client.
func (s *BadgeService) GetUserBadges(ctx context.Context, userID uuid.UUID) ([]*badge.BadgeWithStatus, error) {
	catalog, err := s.Catalog(ctx, nil)
	if err != nil {
		return nil, err
	}
	userBadges, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user badges: %w", err)
	}

	earnedAt := make(map[uuid.UUID]*badge.UserBadge, len(userBadges))
	for _, ub := range userBadges {
		earnedAt[ub.BadgeID] = ub
	}

	out := make([]*badge.BadgeWithStatus, 0, len(catalog))
	for _, b := range catalog {
		ws := &badge.BadgeWithStatus{Badge: *b}
		if ub, ok := earnedAt[b.ID]; ok {
			ws.Earned = true
			t := ub.EarnedAt
			ws.EarnedAt = &t
		}
		out = append(out, ws)
	}
	return out, nil
}
