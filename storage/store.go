// Package storage defines the persistence contract the gamification core
// and the CRUD services depend on. Two implementations exist: a
// Postgres-backed store and a Map-backed in-memory store used by tests and
// local runs. The store is constructed once at process start and injected
// everywhere; there is no package-level singleton.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/activity"
	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/friendship"
	"codeQuestAPI/internal/goal"
	"codeQuestAPI/internal/leaderboard"
	"codeQuestAPI/internal/notification"
	"codeQuestAPI/internal/problem"
	"codeQuestAPI/internal/progress"
	"codeQuestAPI/internal/user"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable wraps any backend failure. Event processing treats it
	// as fatal and rolls the whole event back.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrAlreadyExists is returned on unique-constraint style conflicts
	// (duplicate usernames, duplicate friendship edges).
	ErrAlreadyExists = errors.New("already exists")
)

type Store interface {
	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)

	// Problems
	CreateProblem(ctx context.Context, p *problem.Problem) error
	GetProblem(ctx context.Context, id uuid.UUID) (*problem.Problem, error)
	ListProblems(ctx context.Context, f problem.Filter) ([]*problem.Problem, error)
	ListTags(ctx context.Context) ([]string, error)
	UpsertUserProblem(ctx context.Context, up *problem.UserProblem) error
	GetUserProblem(ctx context.Context, userID, problemID uuid.UUID) (*problem.UserProblem, error)
	ListUserProblems(ctx context.Context, userID uuid.UUID) ([]*problem.UserProblem, error)

	// Per-user progress aggregate. LoadUserProgress returns a fresh zero
	// aggregate when the user has none yet.
	LoadUserProgress(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error)
	SaveUserProgress(ctx context.Context, p *progress.UserProgress) error

	// Goals
	CreateGoal(ctx context.Context, g *goal.Goal) error
	GetGoal(ctx context.Context, id uuid.UUID) (*goal.Goal, error)
	LoadGoals(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error)
	SaveGoal(ctx context.Context, g *goal.Goal) error

	// Badges
	CreateBadge(ctx context.Context, b *badge.Badge) error
	ListBadges(ctx context.Context) ([]*badge.Badge, error)
	LoadEarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error)
	// InsertUserBadge returns false without error when the (user, badge)
	// pair already exists; a duplicate award is a no-op by design.
	InsertUserBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error)
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error)

	// Friendships
	CreateFriendship(ctx context.Context, f *friendship.Friendship) error
	GetFriendship(ctx context.Context, id uuid.UUID) (*friendship.Friendship, error)
	UpdateFriendship(ctx context.Context, f *friendship.Friendship) error
	DeleteFriendship(ctx context.Context, userID, friendID uuid.UUID) error
	// ListFriendships returns accepted edges touching the user.
	ListFriendships(ctx context.Context, userID uuid.UUID) ([]*friendship.Friendship, error)
	ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*friendship.Friendship, error)
	CreateFriendInvite(ctx context.Context, inv *friendship.Invite) error
	// ConsumeFriendInvite returns and deletes an unexpired invite.
	ConsumeFriendInvite(ctx context.Context, token string, now time.Time) (*friendship.Invite, error)

	// Activity feed. AppendActivity assigns the entry ID and CreatedAt if
	// unset; entries are immutable afterwards. ReadActivity merges the
	// user's and friends' entries, newest first (CreatedAt desc, ID desc),
	// truncated to limit.
	AppendActivity(ctx context.Context, e *activity.Entry) (*activity.Entry, error)
	ReadActivity(ctx context.Context, userID uuid.UUID, friendIDs []uuid.UUID, limit int) ([]*activity.Entry, error)

	// Device tokens for push notifications.
	RegisterDeviceToken(ctx context.Context, t *notification.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]*notification.DeviceToken, error)

	// Leaderboard rows ordered by streak then XP. userIDs nil means global.
	Leaderboard(ctx context.Context, userIDs []uuid.UUID, limit int) ([]*leaderboard.Entry, error)
}

// EventStore adds the per-user event scope the core requires: fn runs
// serialized against other events for the same user, and every write made
// through the scoped store commits atomically or not at all.
type EventStore interface {
	Store
	WithinUserEvent(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, s Store) error) error
}
