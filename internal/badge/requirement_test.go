package badge

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/progress"
)

func TestParseRequirement(t *testing.T) {
	r, err := ParseRequirement("streak:5")
	require.NoError(t, err)
	assert.Equal(t, RequirementStreak, r.Kind)
	assert.Equal(t, 5, r.Threshold)

	r, err = ParseRequirement("problems:easy:10")
	require.NoError(t, err)
	assert.Equal(t, RequirementDifficultyCount, r.Kind)
	assert.Equal(t, progress.DifficultyEasy, r.Difficulty)
	assert.Equal(t, 10, r.Threshold)

	r, err = ParseRequirement("tag:Array:5")
	require.NoError(t, err)
	assert.Equal(t, RequirementTagCount, r.Kind)
	assert.Equal(t, "Array", r.Tag)
	assert.Equal(t, 5, r.Threshold)
}

func TestParseRequirementRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"streak",
		"streak:zero",
		"streak:0",
		"problems:extreme:10",
		"problems:easy:lots",
		"tag::5",
		"tag:Array:-1",
		"wat:does:this:mean",
	} {
		r, err := ParseRequirement(raw)
		assert.ErrorIs(t, err, ErrUnknownRequirement, "raw=%q", raw)
		assert.Equal(t, RequirementUnknown, r.Kind, "raw=%q", raw)
	}
}

func TestSatisfiedBy(t *testing.T) {
	p := progress.New(uuid.New())
	p.Streak = 5
	p.SolvedByDifficulty[progress.DifficultyEasy] = 10
	p.SolvedByTag["Array"] = 4

	r, _ := ParseRequirement("streak:5")
	assert.True(t, r.SatisfiedBy(p))
	r, _ = ParseRequirement("streak:6")
	assert.False(t, r.SatisfiedBy(p))

	r, _ = ParseRequirement("problems:easy:10")
	assert.True(t, r.SatisfiedBy(p))
	r, _ = ParseRequirement("problems:hard:1")
	assert.False(t, r.SatisfiedBy(p))

	r, _ = ParseRequirement("tag:Array:5")
	assert.False(t, r.SatisfiedBy(p))
	p.SolvedByTag["Array"] = 5
	assert.True(t, r.SatisfiedBy(p))
}

func TestUnknownRequirementFailsClosed(t *testing.T) {
	p := progress.New(uuid.New())
	p.Streak = 100

	r, _ := ParseRequirement("nonsense")
	assert.False(t, r.SatisfiedBy(p))
}
