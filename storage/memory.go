package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
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

// MemoryStore is the Map-backed store. It backs tests and runs without a
// DATABASE_URL. All methods are safe for concurrent use; WithinUserEvent
// additionally serializes events per user and buffers the event's writes
// so nothing is visible outside the event until it commits.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*user.User
	problems     map[uuid.UUID]*problem.Problem
	userProblems map[uuid.UUID]*problem.UserProblem
	progress     map[uuid.UUID]*progress.UserProgress
	goals        map[uuid.UUID]*goal.Goal
	badges       map[uuid.UUID]*badge.Badge
	userBadges   []*badge.UserBadge
	friendships  map[uuid.UUID]*friendship.Friendship
	invites      map[string]*friendship.Invite
	feed         []*activity.Entry
	deviceTokens map[uuid.UUID][]*notification.DeviceToken

	nextEntryID int64

	lockMu    sync.Mutex
	userLocks map[uuid.UUID]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]*user.User),
		problems:     make(map[uuid.UUID]*problem.Problem),
		userProblems: make(map[uuid.UUID]*problem.UserProblem),
		progress:     make(map[uuid.UUID]*progress.UserProgress),
		goals:        make(map[uuid.UUID]*goal.Goal),
		badges:       make(map[uuid.UUID]*badge.Badge),
		friendships:  make(map[uuid.UUID]*friendship.Friendship),
		invites:      make(map[string]*friendship.Invite),
		deviceTokens: make(map[uuid.UUID][]*notification.DeviceToken),
		userLocks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Users

func (m *MemoryStore) CreateUser(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.ClerkID == u.ClerkID || strings.EqualFold(existing.Username, u.Username) {
			return ErrAlreadyExists
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ClerkID == clerkID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUser(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	delete(m.progress, id)
	delete(m.deviceTokens, id)
	for gid, g := range m.goals {
		if g.UserID == id {
			delete(m.goals, gid)
		}
	}
	return nil
}

func (m *MemoryStore) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	return ids, nil
}

// Problems

func (m *MemoryStore) CreateProblem(ctx context.Context, p *problem.Problem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	m.problems[p.ID] = &cp
	return nil
}

func (m *MemoryStore) GetProblem(ctx context.Context, id uuid.UUID) (*problem.Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.problems[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	return &cp, nil
}

func (m *MemoryStore) ListProblems(ctx context.Context, f problem.Filter) ([]*problem.Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*problem.Problem
	for _, p := range m.problems {
		if f.Difficulty != "" && !strings.EqualFold(string(p.Difficulty), f.Difficulty) {
			continue
		}
		if f.Tag != "" && !containsFold(p.Tags, f.Tag) {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) {
				continue
			}
		}
		cp := *p
		cp.Tags = append([]string(nil), p.Tags...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) ListTags(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range m.problems {
		for _, t := range p.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (m *MemoryStore) UpsertUserProblem(ctx context.Context, up *problem.UserProblem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.userProblems {
		if existing.UserID == up.UserID && existing.ProblemID == up.ProblemID {
			cp := *up
			cp.ID = existing.ID
			m.userProblems[id] = &cp
			up.ID = existing.ID
			return nil
		}
	}
	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	cp := *up
	m.userProblems[cp.ID] = &cp
	return nil
}

func (m *MemoryStore) GetUserProblem(ctx context.Context, userID, problemID uuid.UUID) (*problem.UserProblem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, up := range m.userProblems {
		if up.UserID == userID && up.ProblemID == problemID {
			cp := *up
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListUserProblems(ctx context.Context, userID uuid.UUID) ([]*problem.UserProblem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*problem.UserProblem
	for _, up := range m.userProblems {
		if up.UserID == userID {
			cp := *up
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// Progress

func (m *MemoryStore) LoadUserProgress(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[userID]
	if !ok {
		return progress.New(userID), nil
	}
	return p.Clone(), nil
}

func (m *MemoryStore) SaveUserProgress(ctx context.Context, p *progress.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[p.UserID] = p.Clone()
	return nil
}

// Goals

func (m *MemoryStore) CreateGoal(ctx context.Context, g *goal.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[g.ID] = g.Clone()
	return nil
}

func (m *MemoryStore) GetGoal(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (m *MemoryStore) LoadGoals(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*goal.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) SaveGoal(ctx context.Context, g *goal.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[g.ID]; !ok {
		return ErrNotFound
	}
	m.goals[g.ID] = g.Clone()
	return nil
}

// Badges

func (m *MemoryStore) CreateBadge(ctx context.Context, b *badge.Badge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.badges[b.ID] = &cp
	return nil
}

func (m *MemoryStore) ListBadges(ctx context.Context) ([]*badge.Badge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*badge.Badge, 0, len(m.badges))
	for _, b := range m.badges {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) LoadEarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	earned := make(map[uuid.UUID]struct{})
	for _, ub := range m.userBadges {
		if ub.UserID == userID {
			earned[ub.BadgeID] = struct{}{}
		}
	}
	return earned, nil
}

func (m *MemoryStore) InsertUserBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ub := range m.userBadges {
		if ub.UserID == userID && ub.BadgeID == badgeID {
			return false, nil
		}
	}
	m.userBadges = append(m.userBadges, &badge.UserBadge{
		ID:       uuid.New(),
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	})
	return true, nil
}

func (m *MemoryStore) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*badge.UserBadge
	for _, ub := range m.userBadges {
		if ub.UserID == userID {
			cp := *ub
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Friendships

func (m *MemoryStore) CreateFriendship(ctx context.Context, f *friendship.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.friendships {
		if (existing.RequesterID == f.RequesterID && existing.AddresseeID == f.AddresseeID) ||
			(existing.RequesterID == f.AddresseeID && existing.AddresseeID == f.RequesterID) {
			return ErrAlreadyExists
		}
	}
	cp := *f
	m.friendships[f.ID] = &cp
	return nil
}

func (m *MemoryStore) GetFriendship(ctx context.Context, id uuid.UUID) (*friendship.Friendship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.friendships[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MemoryStore) UpdateFriendship(ctx context.Context, f *friendship.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.friendships[f.ID]; !ok {
		return ErrNotFound
	}
	cp := *f
	m.friendships[f.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.friendships {
		if (f.RequesterID == userID && f.AddresseeID == friendID) ||
			(f.RequesterID == friendID && f.AddresseeID == userID) {
			delete(m.friendships, id)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) ListFriendships(ctx context.Context, userID uuid.UUID) ([]*friendship.Friendship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*friendship.Friendship
	for _, f := range m.friendships {
		if f.Status == friendship.StatusAccepted && (f.RequesterID == userID || f.AddresseeID == userID) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*friendship.Friendship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*friendship.Friendship
	for _, f := range m.friendships {
		if f.Status == friendship.StatusPending && f.AddresseeID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateFriendInvite(ctx context.Context, inv *friendship.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invites[inv.Token] = &cp
	return nil
}

func (m *MemoryStore) ConsumeFriendInvite(ctx context.Context, token string, now time.Time) (*friendship.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[token]
	if !ok || now.After(inv.ExpiresAt) {
		return nil, ErrNotFound
	}
	delete(m.invites, token)
	cp := *inv
	return &cp, nil
}

// Activity feed

func (m *MemoryStore) AppendActivity(ctx context.Context, e *activity.Entry) (*activity.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEntryID++
	cp := *e
	cp.ID = m.nextEntryID
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	m.feed = append(m.feed, &cp)
	out := cp
	return &out, nil
}

func (m *MemoryStore) ReadActivity(ctx context.Context, userID uuid.UUID, friendIDs []uuid.UUID, limit int) ([]*activity.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = activity.DefaultFeedLimit
	}
	include := map[uuid.UUID]struct{}{userID: {}}
	for _, id := range friendIDs {
		include[id] = struct{}{}
	}
	var out []*activity.Entry
	for _, e := range m.feed {
		if _, ok := include[e.UserID]; ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Device tokens

func (m *MemoryStore) RegisterDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.deviceTokens[t.UserID] {
		if existing.Token == t.Token {
			return nil
		}
	}
	cp := *t
	m.deviceTokens[t.UserID] = append(m.deviceTokens[t.UserID], &cp)
	return nil
}

func (m *MemoryStore) ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]*notification.DeviceToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*notification.DeviceToken
	for _, t := range m.deviceTokens[userID] {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// Leaderboard

func (m *MemoryStore) Leaderboard(ctx context.Context, userIDs []uuid.UUID, limit int) ([]*leaderboard.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	var scope map[uuid.UUID]struct{}
	if userIDs != nil {
		scope = make(map[uuid.UUID]struct{}, len(userIDs))
		for _, id := range userIDs {
			scope[id] = struct{}{}
		}
	}
	var entries []*leaderboard.Entry
	for id, u := range m.users {
		if scope != nil {
			if _, ok := scope[id]; !ok {
				continue
			}
		}
		e := &leaderboard.Entry{UserID: id, Username: u.Username, AvatarID: u.AvatarID, Level: 1}
		if p, ok := m.progress[id]; ok {
			e.Streak = p.Streak
			e.XP = p.XP
			e.Level = p.Level
			e.TotalSolved = p.TotalSolved
		}
		entries = append(entries, e)
	}
	// Streak first, XP as the tie-break, original ordering.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Streak != entries[j].Streak {
			return entries[i].Streak > entries[j].Streak
		}
		return entries[i].XP > entries[j].XP
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries, nil
}

// Event scope

func (m *MemoryStore) userLock(userID uuid.UUID) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.userLocks[userID] = l
	}
	return l
}

// eventScope buffers one user's event writes so nothing reaches the
// shared maps until the event commits. Reads within the scope see the
// buffered writes; everyone else keeps seeing the pre-event state, and a
// failed event is discarded wholesale.
type eventScope struct {
	*MemoryStore
	userID uuid.UUID

	progress *progress.UserProgress
	goals    map[uuid.UUID]*goal.Goal
	badges   []*badge.UserBadge
	entries  []*activity.Entry
}

func (sc *eventScope) LoadUserProgress(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	if userID == sc.userID && sc.progress != nil {
		return sc.progress.Clone(), nil
	}
	return sc.MemoryStore.LoadUserProgress(ctx, userID)
}

func (sc *eventScope) SaveUserProgress(ctx context.Context, p *progress.UserProgress) error {
	if p.UserID != sc.userID {
		return sc.MemoryStore.SaveUserProgress(ctx, p)
	}
	sc.progress = p.Clone()
	return nil
}

func (sc *eventScope) CreateGoal(ctx context.Context, g *goal.Goal) error {
	if g.UserID != sc.userID {
		return sc.MemoryStore.CreateGoal(ctx, g)
	}
	sc.goals[g.ID] = g.Clone()
	return nil
}

func (sc *eventScope) GetGoal(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	if g, ok := sc.goals[id]; ok {
		return g.Clone(), nil
	}
	return sc.MemoryStore.GetGoal(ctx, id)
}

func (sc *eventScope) LoadGoals(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	out, err := sc.MemoryStore.LoadGoals(ctx, userID)
	if err != nil || userID != sc.userID {
		return out, err
	}
	seen := make(map[uuid.UUID]struct{}, len(out))
	for i, g := range out {
		seen[g.ID] = struct{}{}
		if pending, ok := sc.goals[g.ID]; ok {
			out[i] = pending.Clone()
		}
	}
	for id, g := range sc.goals {
		if _, ok := seen[id]; !ok {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (sc *eventScope) SaveGoal(ctx context.Context, g *goal.Goal) error {
	if g.UserID != sc.userID {
		return sc.MemoryStore.SaveGoal(ctx, g)
	}
	if _, ok := sc.goals[g.ID]; !ok {
		if _, err := sc.MemoryStore.GetGoal(ctx, g.ID); err != nil {
			return err
		}
	}
	sc.goals[g.ID] = g.Clone()
	return nil
}

func (sc *eventScope) LoadEarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	earned, err := sc.MemoryStore.LoadEarnedBadgeIDs(ctx, userID)
	if err != nil || userID != sc.userID {
		return earned, err
	}
	for _, ub := range sc.badges {
		earned[ub.BadgeID] = struct{}{}
	}
	return earned, nil
}

func (sc *eventScope) InsertUserBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error) {
	if userID != sc.userID {
		return sc.MemoryStore.InsertUserBadge(ctx, userID, badgeID, earnedAt)
	}
	for _, ub := range sc.badges {
		if ub.BadgeID == badgeID {
			return false, nil
		}
	}
	earned, err := sc.MemoryStore.LoadEarnedBadgeIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	if _, ok := earned[badgeID]; ok {
		return false, nil
	}
	sc.badges = append(sc.badges, &badge.UserBadge{
		ID:       uuid.New(),
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	})
	return true, nil
}

func (sc *eventScope) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error) {
	out, err := sc.MemoryStore.ListUserBadges(ctx, userID)
	if err != nil || userID != sc.userID {
		return out, err
	}
	for _, ub := range sc.badges {
		cp := *ub
		out = append(out, &cp)
	}
	return out, nil
}

func (sc *eventScope) AppendActivity(ctx context.Context, e *activity.Entry) (*activity.Entry, error) {
	if e.UserID != sc.userID {
		return sc.MemoryStore.AppendActivity(ctx, e)
	}
	// The entry ID is reserved up front so feed ordering still follows
	// append order once the event commits. A discarded event leaves a
	// gap in the sequence, which is harmless.
	m := sc.MemoryStore
	m.mu.Lock()
	m.nextEntryID++
	id := m.nextEntryID
	m.mu.Unlock()

	cp := *e
	cp.ID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	sc.entries = append(sc.entries, &cp)
	out := cp
	return &out, nil
}

func (sc *eventScope) commit() {
	m := sc.MemoryStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if sc.progress != nil {
		m.progress[sc.userID] = sc.progress
	}
	for id, g := range sc.goals {
		m.goals[id] = g
	}
	m.userBadges = append(m.userBadges, sc.badges...)
	m.feed = append(m.feed, sc.entries...)
}

// WithinUserEvent serializes fn against other events for the same user
// and buffers every write until fn succeeds, so a concurrent reader never
// observes a half-applied event and a failed one leaves no trace.
func (m *MemoryStore) WithinUserEvent(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, s Store) error) error {
	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	sc := &eventScope{
		MemoryStore: m,
		userID:      userID,
		goals:       make(map[uuid.UUID]*goal.Goal),
	}
	if err := fn(ctx, sc); err != nil {
		return err
	}
	sc.commit()
	return nil
}
