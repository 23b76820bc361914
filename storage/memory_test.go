package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/activity"
	"codeQuestAPI/internal/goal"
	"codeQuestAPI/internal/progress"
	"codeQuestAPI/internal/user"
)

func TestReadActivityOrderingAndLimit(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()
	friendID := uuid.New()
	strangerID := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		_, err := m.AppendActivity(ctx, &activity.Entry{
			UserID:    userID,
			Type:      activity.TypeSolvedProblem,
			Content:   "solved",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	for i := 0; i < 6; i++ {
		_, err := m.AppendActivity(ctx, &activity.Entry{
			UserID:    friendID,
			Type:      activity.TypeSolvedProblem,
			Content:   "friend solved",
			CreatedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		})
		require.NoError(t, err)
	}
	_, err := m.AppendActivity(ctx, &activity.Entry{
		UserID:    strangerID,
		Type:      activity.TypeSolvedProblem,
		Content:   "not in feed",
		CreatedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)

	feed, err := m.ReadActivity(ctx, userID, []uuid.UUID{friendID}, 0)
	require.NoError(t, err)

	require.Len(t, feed, activity.DefaultFeedLimit, "default limit applies")
	for _, e := range feed {
		assert.NotEqual(t, strangerID, e.UserID, "strangers never appear")
	}
	for i := 1; i < len(feed); i++ {
		prev, cur := feed[i-1], feed[i]
		newerFirst := prev.CreatedAt.After(cur.CreatedAt) ||
			(prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID > cur.ID)
		assert.True(t, newerFirst, "feed must be newest first")
	}
}

func TestReadActivityTieBreakOnEqualTimestamps(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := m.AppendActivity(ctx, &activity.Entry{UserID: userID, Type: activity.TypeSolvedProblem, CreatedAt: ts})
	require.NoError(t, err)
	second, err := m.AppendActivity(ctx, &activity.Entry{UserID: userID, Type: activity.TypeBadgeEarned, CreatedAt: ts})
	require.NoError(t, err)

	feed, err := m.ReadActivity(ctx, userID, nil, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID, "later append wins the tie")
	assert.Equal(t, first.ID, feed[1].ID)
}

func TestInsertUserBadgeDuplicateIsNoOp(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	userID, badgeID := uuid.New(), uuid.New()

	inserted, err := m.InsertUserBadge(ctx, userID, badgeID, time.Now())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = m.InsertUserBadge(ctx, userID, badgeID, time.Now())
	require.NoError(t, err)
	assert.False(t, inserted)

	badges, err := m.ListUserBadges(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}

func TestWithinUserEventRollsBackOnFailure(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	g := &goal.Goal{ID: uuid.New(), UserID: userID, Title: "Solve 3 problems", Kind: goal.KindDaily, Target: 3, Current: 1}
	require.NoError(t, m.CreateGoal(ctx, g))

	boom := errors.New("boom")
	err := m.WithinUserEvent(ctx, userID, func(ctx context.Context, st Store) error {
		p, err := st.LoadUserProgress(ctx, userID)
		require.NoError(t, err)
		p.Streak = 7
		p.RecordSolve(progress.DifficultyEasy, []string{"Array"})
		require.NoError(t, st.SaveUserProgress(ctx, p))

		g.Current = 2
		require.NoError(t, st.SaveGoal(ctx, g))

		if _, err := st.InsertUserBadge(ctx, userID, uuid.New(), time.Now()); err != nil {
			return err
		}
		if _, err := st.AppendActivity(ctx, &activity.Entry{UserID: userID, Type: activity.TypeSolvedProblem}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := m.LoadUserProgress(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Streak, "progress write rolled back")
	assert.Equal(t, 0, p.TotalSolved)

	got, err := m.GetGoal(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Current, "goal write rolled back")

	badges, err := m.ListUserBadges(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, badges, "badge insert rolled back")

	feed, err := m.ReadActivity(ctx, userID, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, feed, "feed entries rolled back")
}

func TestWithinUserEventHidesUncommittedWrites(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	boom := errors.New("boom")
	saved := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- m.WithinUserEvent(ctx, userID, func(ctx context.Context, st Store) error {
			p, err := st.LoadUserProgress(ctx, userID)
			if err != nil {
				return err
			}
			p.Streak = 7
			if err := st.SaveUserProgress(ctx, p); err != nil {
				return err
			}

			// The event itself reads its own writes.
			p, err = st.LoadUserProgress(ctx, userID)
			if err != nil {
				return err
			}
			assert.Equal(t, 7, p.Streak)

			close(saved)
			<-release
			return boom
		})
	}()

	// While the event is mid-flight, an outside reader must still see
	// the pre-event state.
	<-saved
	p, err := m.LoadUserProgress(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Streak, "uncommitted write must not leak out")

	close(release)
	require.ErrorIs(t, <-done, boom)

	p, err = m.LoadUserProgress(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Streak)
}

func TestWithinUserEventCommitsOnSuccess(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	err := m.WithinUserEvent(ctx, userID, func(ctx context.Context, st Store) error {
		p, err := st.LoadUserProgress(ctx, userID)
		if err != nil {
			return err
		}
		p.Streak = 1
		p.RecordSolve(progress.DifficultyEasy, nil)
		return st.SaveUserProgress(ctx, p)
	})
	require.NoError(t, err)

	p, err := m.LoadUserProgress(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
	assert.Equal(t, 1, p.TotalSolved)
}

func TestLeaderboardOrdering(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	mk := func(username string, streak, xp int) uuid.UUID {
		id := uuid.New()
		require.NoError(t, m.CreateUser(ctx, &user.User{ID: id, ClerkID: "clerk_" + username, Username: username}))
		p := progress.New(id)
		p.Streak = streak
		p.XP = xp
		require.NoError(t, m.SaveUserProgress(ctx, p))
		return id
	}

	alice := mk("alice", 5, 100)
	bob := mk("bob", 5, 200)
	carol := mk("carol", 9, 10)

	entries, err := m.Leaderboard(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, carol, entries[0].UserID, "highest streak first")
	assert.Equal(t, bob, entries[1].UserID, "XP breaks streak ties")
	assert.Equal(t, alice, entries[2].UserID)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}

	scoped, err := m.Leaderboard(ctx, []uuid.UUID{alice, bob}, 0)
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, bob, scoped[0].UserID)
}
