package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every store
// method works inside and outside an event transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the pgx-backed store.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

func pgErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// Users

func (s *PostgresStore) CreateUser(ctx context.Context, u *user.User) error {
	query := `
	INSERT INTO users (id, clerk_id, email, username, full_name, avatar_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.q.Exec(ctx, query, u.ID, u.ClerkID, u.Email, u.Username, u.FullName, u.AvatarID, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pge *pgconn.PgError
		if errors.As(err, &pge) && pge.Code == "23505" {
			return ErrAlreadyExists
		}
		return pgErr("create user", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.scanUser(s.q.QueryRow(ctx, `
	SELECT id, clerk_id, email, username, full_name, avatar_id, created_at, updated_at
	FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return s.scanUser(s.q.QueryRow(ctx, `
	SELECT id, clerk_id, email, username, full_name, avatar_id, created_at, updated_at
	FROM users WHERE clerk_id = $1`, clerkID))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FullName, &u.AvatarID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pgErr("get user", err)
	}
	return u, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, u *user.User) error {
	tag, err := s.q.Exec(ctx, `
	UPDATE users SET email = $2, username = $3, full_name = $4, avatar_id = $5, updated_at = $6
	WHERE id = $1`, u.ID, u.Email, u.Username, u.FullName, u.AvatarID, u.UpdatedAt)
	if err != nil {
		return pgErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return pgErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.q.Query(ctx, `SELECT id FROM users`)
	if err != nil {
		return nil, pgErr("list user ids", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, pgErr("scan user id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Problems

func (s *PostgresStore) CreateProblem(ctx context.Context, p *problem.Problem) error {
	query := `
	INSERT INTO problems (id, title, description, difficulty, acceptance, solution, tags, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.q.Exec(ctx, query, p.ID, p.Title, p.Description, p.Difficulty, p.Acceptance, p.Solution, p.Tags, p.CreatedAt)
	if err != nil {
		return pgErr("create problem", err)
	}
	return nil
}

func (s *PostgresStore) GetProblem(ctx context.Context, id uuid.UUID) (*problem.Problem, error) {
	p := &problem.Problem{}
	err := s.q.QueryRow(ctx, `
	SELECT id, title, description, difficulty, acceptance, solution, tags, created_at
	FROM problems WHERE id = $1`, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.Difficulty, &p.Acceptance, &p.Solution, &p.Tags, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pgErr("get problem", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProblems(ctx context.Context, f problem.Filter) ([]*problem.Problem, error) {
	query := `
	SELECT id, title, description, difficulty, acceptance, solution, tags, created_at
	FROM problems
	WHERE ($1 = '' OR difficulty ILIKE $1)
	  AND ($2 = '' OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $2))
	  AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
	ORDER BY title
	`
	rows, err := s.q.Query(ctx, query, f.Difficulty, f.Tag, f.Search)
	if err != nil {
		return nil, pgErr("list problems", err)
	}
	defer rows.Close()

	var out []*problem.Problem
	for rows.Next() {
		p := &problem.Problem{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Difficulty, &p.Acceptance, &p.Solution, &p.Tags, &p.CreatedAt); err != nil {
			return nil, pgErr("scan problem", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT DISTINCT unnest(tags) AS tag FROM problems ORDER BY tag`)
	if err != nil {
		return nil, pgErr("list tags", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, pgErr("scan tag", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *PostgresStore) UpsertUserProblem(ctx context.Context, up *problem.UserProblem) error {
	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	query := `
	INSERT INTO user_problems (id, user_id, problem_id, status, code, language, submitted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (user_id, problem_id)
	DO UPDATE SET status = $4, code = $5, language = $6, submitted_at = $7
	`
	_, err := s.q.Exec(ctx, query, up.ID, up.UserID, up.ProblemID, up.Status, up.Code, up.Language, up.SubmittedAt)
	if err != nil {
		return pgErr("upsert user problem", err)
	}
	return nil
}

func (s *PostgresStore) GetUserProblem(ctx context.Context, userID, problemID uuid.UUID) (*problem.UserProblem, error) {
	up := &problem.UserProblem{}
	err := s.q.QueryRow(ctx, `
	SELECT id, user_id, problem_id, status, code, language, submitted_at
	FROM user_problems WHERE user_id = $1 AND problem_id = $2`, userID, problemID).Scan(
		&up.ID, &up.UserID, &up.ProblemID, &up.Status, &up.Code, &up.Language, &up.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pgErr("get user problem", err)
	}
	return up, nil
}

func (s *PostgresStore) ListUserProblems(ctx context.Context, userID uuid.UUID) ([]*problem.UserProblem, error) {
	rows, err := s.q.Query(ctx, `
	SELECT id, user_id, problem_id, status, code, language, submitted_at
	FROM user_problems WHERE user_id = $1 ORDER BY submitted_at`, userID)
	if err != nil {
		return nil, pgErr("list user problems", err)
	}
	defer rows.Close()

	var out []*problem.UserProblem
	for rows.Next() {
		up := &problem.UserProblem{}
		if err := rows.Scan(&up.ID, &up.UserID, &up.ProblemID, &up.Status, &up.Code, &up.Language, &up.SubmittedAt); err != nil {
			return nil, pgErr("scan user problem", err)
		}
		out = append(out, up)
	}
	return out, rows.Err()
}

// Progress

func (s *PostgresStore) LoadUserProgress(ctx context.Context, userID uuid.UUID) (*progress.UserProgress, error) {
	p := progress.New(userID)
	var byDifficulty, byTag []byte
	err := s.q.QueryRow(ctx, `
	SELECT streak, last_active_day, solved_by_difficulty, solved_by_tag, total_solved, xp, level, updated_at
	FROM user_progress WHERE user_id = $1`, userID).Scan(
		&p.Streak, &p.LastActiveDay, &byDifficulty, &byTag, &p.TotalSolved, &p.XP, &p.Level, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, nil
		}
		return nil, pgErr("load user progress", err)
	}
	if err := json.Unmarshal(byDifficulty, &p.SolvedByDifficulty); err != nil {
		return nil, pgErr("decode solved_by_difficulty", err)
	}
	if err := json.Unmarshal(byTag, &p.SolvedByTag); err != nil {
		return nil, pgErr("decode solved_by_tag", err)
	}
	return p, nil
}

func (s *PostgresStore) SaveUserProgress(ctx context.Context, p *progress.UserProgress) error {
	byDifficulty, err := json.Marshal(p.SolvedByDifficulty)
	if err != nil {
		return fmt.Errorf("encode solved_by_difficulty: %w", err)
	}
	byTag, err := json.Marshal(p.SolvedByTag)
	if err != nil {
		return fmt.Errorf("encode solved_by_tag: %w", err)
	}
	query := `
	INSERT INTO user_progress (user_id, streak, last_active_day, solved_by_difficulty, solved_by_tag, total_solved, xp, level, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (user_id)
	DO UPDATE SET streak = $2, last_active_day = $3, solved_by_difficulty = $4,
	              solved_by_tag = $5, total_solved = $6, xp = $7, level = $8, updated_at = $9
	`
	_, err = s.q.Exec(ctx, query, p.UserID, p.Streak, p.LastActiveDay, byDifficulty, byTag, p.TotalSolved, p.XP, p.Level, p.UpdatedAt)
	if err != nil {
		return pgErr("save user progress", err)
	}
	return nil
}

// Goals

func (s *PostgresStore) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
	INSERT INTO user_goals (id, user_id, title, kind, target, current, completed, period_start, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.q.Exec(ctx, query, g.ID, g.UserID, g.Title, g.Kind, g.Target, g.Current, g.Completed, g.PeriodStart, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return pgErr("create goal", err)
	}
	return nil
}

func (s *PostgresStore) GetGoal(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	g := &goal.Goal{}
	err := s.q.QueryRow(ctx, `
	SELECT id, user_id, title, kind, target, current, completed, period_start, created_at, updated_at
	FROM user_goals WHERE id = $1`, id).Scan(
		&g.ID, &g.UserID, &g.Title, &g.Kind, &g.Target, &g.Current, &g.Completed, &g.PeriodStart, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pgErr("get goal", err)
	}
	return g, nil
}

func (s *PostgresStore) LoadGoals(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	rows, err := s.q.Query(ctx, `
	SELECT id, user_id, title, kind, target, current, completed, period_start, created_at, updated_at
	FROM user_goals WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, pgErr("load goals", err)
	}
	defer rows.Close()

	var out []*goal.Goal
	for rows.Next() {
		g := &goal.Goal{}
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Kind, &g.Target, &g.Current, &g.Completed, &g.PeriodStart, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, pgErr("scan goal", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveGoal(ctx context.Context, g *goal.Goal) error {
	tag, err := s.q.Exec(ctx, `
	UPDATE user_goals SET title = $2, kind = $3, target = $4, current = $5, completed = $6,
	                      period_start = $7, updated_at = $8
	WHERE id = $1`, g.ID, g.Title, g.Kind, g.Target, g.Current, g.Completed, g.PeriodStart, g.UpdatedAt)
	if err != nil {
		return pgErr("save goal", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Badges

func (s *PostgresStore) CreateBadge(ctx context.Context, b *badge.Badge) error {
	query := `
	INSERT INTO badges (id, name, description, icon, color, requirement, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.q.Exec(ctx, query, b.ID, b.Name, b.Description, b.Icon, b.Color, b.RawRequirement, b.CreatedAt)
	if err != nil {
		return pgErr("create badge", err)
	}
	return nil
}

func (s *PostgresStore) ListBadges(ctx context.Context) ([]*badge.Badge, error) {
	rows, err := s.q.Query(ctx, `
	SELECT id, name, description, icon, color, requirement, created_at
	FROM badges ORDER BY name`)
	if err != nil {
		return nil, pgErr("list badges", err)
	}
	defer rows.Close()

	var out []*badge.Badge
	for rows.Next() {
		b := &badge.Badge{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Color, &b.RawRequirement, &b.CreatedAt); err != nil {
			return nil, pgErr("scan badge", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LoadEarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	rows, err := s.q.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, pgErr("load earned badges", err)
	}
	defer rows.Close()

	earned := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, pgErr("scan earned badge", err)
		}
		earned[id] = struct{}{}
	}
	return earned, rows.Err()
}

func (s *PostgresStore) InsertUserBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error) {
	// ON CONFLICT DO NOTHING makes a duplicate award a no-op.
	tag, err := s.q.Exec(ctx, `
	INSERT INTO user_badges (id, user_id, badge_id, earned_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, badge_id) DO NOTHING`, uuid.New(), userID, badgeID, earnedAt)
	if err != nil {
		return false, pgErr("insert user badge", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error) {
	rows, err := s.q.Query(ctx, `
	SELECT id, user_id, badge_id, earned_at
	FROM user_badges WHERE user_id = $1 ORDER BY earned_at`, userID)
	if err != nil {
		return nil, pgErr("list user badges", err)
	}
	defer rows.Close()

	var out []*badge.UserBadge
	for rows.Next() {
		ub := &badge.UserBadge{}
		if err := rows.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &ub.EarnedAt); err != nil {
			return nil, pgErr("scan user badge", err)
		}
		out = append(out, ub)
	}
	return out, rows.Err()
}

// Friendships

func (s *PostgresStore) CreateFriendship(ctx context.Context, f *friendship.Friendship) error {
	query := `
	INSERT INTO friendships (id, requester_id, addressee_id, status, created_at, updated_at)
	SELECT $1, $2, $3, $4, $5, $6
	WHERE NOT EXISTS (
		SELECT 1 FROM friendships
		WHERE (requester_id = $2 AND addressee_id = $3)
		   OR (requester_id = $3 AND addressee_id = $2)
	)
	`
	tag, err := s.q.Exec(ctx, query, f.ID, f.RequesterID, f.AddresseeID, f.Status, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return pgErr("create friendship", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) GetFriendship(ctx context.Context, id uuid.UUID) (*friendship.Friendship, error) {
	f := &friendship.Friendship{}
	err := s.q.QueryRow(ctx, `
	SELECT id, requester_id, addressee_id, status, created_at, updated_at
	FROM friendships WHERE id = $1`, id).Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pgErr("get friendship", err)
	}
	return f, nil
}

func (s *PostgresStore) UpdateFriendship(ctx context.Context, f *friendship.Friendship) error {
	tag, err := s.q.Exec(ctx, `
	UPDATE friendships SET status = $2, updated_at = $3 WHERE id = $1`,
		f.ID, f.Status, f.UpdatedAt)
	if err != nil {
		return pgErr("update friendship", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `
	DELETE FROM friendships
	WHERE (requester_id = $1 AND addressee_id = $2)
	   OR (requester_id = $2 AND addressee_id = $1)`, userID, friendID)
	if err != nil {
		return pgErr("delete friendship", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListFriendships(ctx context.Context, userID uuid.UUID) ([]*friendship.Friendship, error) {
	return s.queryFriendships(ctx, `
	SELECT id, requester_id, addressee_id, status, created_at, updated_at
	FROM friendships
	WHERE status = 'accepted' AND (requester_id = $1 OR addressee_id = $1)`, userID)
}

func (s *PostgresStore) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]*friendship.Friendship, error) {
	return s.queryFriendships(ctx, `
	SELECT id, requester_id, addressee_id, status, created_at, updated_at
	FROM friendships
	WHERE status = 'pending' AND addressee_id = $1
	ORDER BY created_at`, userID)
}

func (s *PostgresStore) queryFriendships(ctx context.Context, query string, args ...any) ([]*friendship.Friendship, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, pgErr("query friendships", err)
	}
	defer rows.Close()

	var out []*friendship.Friendship
	for rows.Next() {
		f := &friendship.Friendship{}
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, pgErr("scan friendship", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateFriendInvite(ctx context.Context, inv *friendship.Invite) error {
	_, err := s.q.Exec(ctx, `
	INSERT INTO friend_invites (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		inv.Token, inv.UserID, inv.ExpiresAt)
	if err != nil {
		return pgErr("create friend invite", err)
	}
	return nil
}

func (s *PostgresStore) ConsumeFriendInvite(ctx context.Context, token string, now time.Time) (*friendship.Invite, error) {
	inv := &friendship.Invite{}
	err := s.q.QueryRow(ctx, `
	DELETE FROM friend_invites WHERE token = $1 AND expires_at > $2
	RETURNING token, user_id, expires_at`, token, now).Scan(&inv.Token, &inv.UserID, &inv.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pgErr("consume friend invite", err)
	}
	return inv, nil
}

// Activity feed

func (s *PostgresStore) AppendActivity(ctx context.Context, e *activity.Entry) (*activity.Entry, error) {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode activity metadata: %w", err)
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	out := *e
	out.CreatedAt = createdAt
	err = s.q.QueryRow(ctx, `
	INSERT INTO activity_feed (user_id, type, content, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`, e.UserID, e.Type, e.Content, meta, createdAt).Scan(&out.ID)
	if err != nil {
		return nil, pgErr("append activity", err)
	}
	return &out, nil
}

func (s *PostgresStore) ReadActivity(ctx context.Context, userID uuid.UUID, friendIDs []uuid.UUID, limit int) ([]*activity.Entry, error) {
	if limit <= 0 {
		limit = activity.DefaultFeedLimit
	}
	ids := make([]string, 0, len(friendIDs)+1)
	ids = append(ids, userID.String())
	for _, id := range friendIDs {
		ids = append(ids, id.String())
	}
	rows, err := s.q.Query(ctx, `
	SELECT id, user_id, type, content, metadata, created_at
	FROM activity_feed
	WHERE user_id = ANY($1::uuid[])
	ORDER BY created_at DESC, id DESC
	LIMIT $2`, ids, limit)
	if err != nil {
		return nil, pgErr("read activity", err)
	}
	defer rows.Close()

	var out []*activity.Entry
	for rows.Next() {
		e := &activity.Entry{}
		var meta []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Content, &meta, &e.CreatedAt); err != nil {
			return nil, pgErr("scan activity", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, pgErr("decode activity metadata", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Device tokens

func (s *PostgresStore) RegisterDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	_, err := s.q.Exec(ctx, `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, token) DO UPDATE SET platform = $3`,
		t.UserID, t.Token, t.Platform, t.CreatedAt)
	if err != nil {
		return pgErr("register device token", err)
	}
	return nil
}

func (s *PostgresStore) ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]*notification.DeviceToken, error) {
	rows, err := s.q.Query(ctx, `
	SELECT user_id, token, platform, created_at
	FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, pgErr("list device tokens", err)
	}
	defer rows.Close()

	var out []*notification.DeviceToken
	for rows.Next() {
		t := &notification.DeviceToken{}
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, pgErr("scan device token", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Leaderboard

func (s *PostgresStore) Leaderboard(ctx context.Context, userIDs []uuid.UUID, limit int) ([]*leaderboard.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var scope []string
	if userIDs != nil {
		scope = make([]string, 0, len(userIDs))
		for _, id := range userIDs {
			scope = append(scope, id.String())
		}
	}
	query := `
	SELECT
		u.id AS user_id,
		u.username,
		u.avatar_id,
		COALESCE(p.streak, 0) AS streak,
		COALESCE(p.xp, 0) AS xp,
		COALESCE(p.level, 1) AS level,
		COALESCE(p.total_solved, 0) AS total_solved,
		RANK() OVER (ORDER BY COALESCE(p.streak, 0) DESC, COALESCE(p.xp, 0) DESC) AS rank
	FROM users u
	LEFT JOIN user_progress p ON u.id = p.user_id
	WHERE $1::uuid[] IS NULL OR u.id = ANY($1::uuid[])
	ORDER BY streak DESC, xp DESC
	LIMIT $2
	`
	rows, err := s.q.Query(ctx, query, scope, limit)
	if err != nil {
		return nil, pgErr("fetch leaderboard", err)
	}
	defer rows.Close()

	var entries []*leaderboard.Entry
	for rows.Next() {
		e := &leaderboard.Entry{}
		if err := rows.Scan(&e.UserID, &e.Username, &e.AvatarID, &e.Streak, &e.XP, &e.Level, &e.TotalSolved, &e.Rank); err != nil {
			return nil, pgErr("scan leaderboard row", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Event scope

// WithinUserEvent runs fn inside one transaction holding a per-user
// advisory lock, so events for the same user serialize and commit
// all-or-nothing. Events for different users proceed in parallel.
func (s *PostgresStore) WithinUserEvent(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, st Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pgErr("begin event tx", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, userID.String()); err != nil {
		return pgErr("acquire user event lock", err)
	}

	if err := fn(ctx, &PostgresStore{pool: s.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return pgErr("commit event tx", err)
	}
	return nil
}
