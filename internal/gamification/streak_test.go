package gamification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/progress"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUpdateStreakFirstActivity(t *testing.T) {
	p := progress.New(uuid.New())

	streak, err := UpdateStreak(p, day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	require.NotNil(t, p.LastActiveDay)
	assert.Equal(t, day("2026-03-01"), *p.LastActiveDay)
}

func TestUpdateStreakSameDayIsIdempotent(t *testing.T) {
	p := progress.New(uuid.New())

	_, err := UpdateStreak(p, day("2026-03-01"))
	require.NoError(t, err)

	streak, err := UpdateStreak(p, day("2026-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	// Time-of-day never matters.
	streak, err = UpdateStreak(p, day("2026-03-01").Add(23*time.Hour+59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestUpdateStreakConsecutiveDays(t *testing.T) {
	p := progress.New(uuid.New())

	for i, d := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		streak, err := UpdateStreak(p, day(d))
		require.NoError(t, err)
		assert.Equal(t, i+1, streak)
	}
}

func TestUpdateStreakGapResets(t *testing.T) {
	p := progress.New(uuid.New())

	_, err := UpdateStreak(p, day("2026-03-01"))
	require.NoError(t, err)
	_, err = UpdateStreak(p, day("2026-03-02"))
	require.NoError(t, err)

	streak, err := UpdateStreak(p, day("2026-03-05"))
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.Equal(t, day("2026-03-05"), *p.LastActiveDay)
}

func TestUpdateStreakRejectsEarlierDay(t *testing.T) {
	p := progress.New(uuid.New())

	_, err := UpdateStreak(p, day("2026-03-10"))
	require.NoError(t, err)
	_, err = UpdateStreak(p, day("2026-03-11"))
	require.NoError(t, err)

	streak, err := UpdateStreak(p, day("2026-03-09"))
	require.ErrorIs(t, err, ErrInvalidTemporalOrder)
	assert.Equal(t, 2, streak, "streak must be left untouched")
	assert.Equal(t, day("2026-03-11"), *p.LastActiveDay, "last active day must be left untouched")
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	from := day("2026-03-01").Add(23 * time.Hour)
	to := day("2026-03-02").Add(1 * time.Minute)
	assert.Equal(t, 1, DaysBetween(from, to))
}

func TestMilestoneBadge(t *testing.T) {
	five := &badge.Badge{ID: uuid.New(), Name: "5-Day Streak"}
	five.Requirement, _ = badge.ParseRequirement("streak:5")
	ten := &badge.Badge{ID: uuid.New(), Name: "10-Day Streak"}
	ten.Requirement, _ = badge.ParseRequirement("streak:10")
	easy := &badge.Badge{ID: uuid.New(), Name: "Easy Does It"}
	easy.Requirement, _ = badge.ParseRequirement("problems:easy:10")

	catalog := []*badge.Badge{five, ten, easy}
	earned := map[uuid.UUID]struct{}{}

	assert.Nil(t, MilestoneBadge(catalog, earned, 4))
	assert.Equal(t, five, MilestoneBadge(catalog, earned, 5))
	assert.Nil(t, MilestoneBadge(catalog, earned, 6), "only the exact threshold day is a milestone")

	earned[five.ID] = struct{}{}
	assert.Nil(t, MilestoneBadge(catalog, earned, 5), "already earned badges are not re-announced")
}
