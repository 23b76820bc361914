package gamification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/progress"
)

func badgeWithRequirement(name, raw string) *badge.Badge {
	b := &badge.Badge{ID: uuid.New(), Name: name, RawRequirement: raw}
	b.Requirement, _ = badge.ParseRequirement(raw)
	return b
}

func TestEvaluateAwardsSatisfiedBadges(t *testing.T) {
	streak5 := badgeWithRequirement("5-Day Streak", "streak:5")
	easy10 := badgeWithRequirement("Easy Does It", "problems:easy:10")
	array5 := badgeWithRequirement("Array Master", "tag:Array:5")

	p := progress.New(uuid.New())
	p.Streak = 5
	p.SolvedByDifficulty[progress.DifficultyEasy] = 3
	p.SolvedByTag["Array"] = 7

	earned := map[uuid.UUID]struct{}{}
	newBadges := Evaluate(p, earned, []*badge.Badge{streak5, easy10, array5})

	require.Len(t, newBadges, 2)
	assert.Contains(t, newBadges, streak5)
	assert.Contains(t, newBadges, array5)
}

func TestEvaluateSkipsEarnedBadges(t *testing.T) {
	streak5 := badgeWithRequirement("5-Day Streak", "streak:5")

	p := progress.New(uuid.New())
	p.Streak = 9

	earned := map[uuid.UUID]struct{}{streak5.ID: {}}
	assert.Empty(t, Evaluate(p, earned, []*badge.Badge{streak5}))
}

func TestEvaluateUnknownRequirementNeverMatches(t *testing.T) {
	mystery := badgeWithRequirement("Mystery", "wat:does:this:mean")

	p := progress.New(uuid.New())
	p.Streak = 100
	p.TotalSolved = 100

	assert.Empty(t, Evaluate(p, map[uuid.UUID]struct{}{}, []*badge.Badge{mystery}))
}

func TestXPForSolve(t *testing.T) {
	assert.Equal(t, 10, XPForSolve(progress.DifficultyEasy))
	assert.Equal(t, 25, XPForSolve(progress.DifficultyMedium))
	assert.Equal(t, 50, XPForSolve(progress.DifficultyHard))
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 4, LevelForXP(350))
}
