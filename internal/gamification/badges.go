package gamification

import (
	"github.com/google/uuid"

	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/progress"
)

// Evaluate returns every catalog badge whose requirement the aggregate now
// satisfies and that is not already in earned. It is pure: calling it
// again with the badge recorded in earned yields nothing, which is what
// makes the award path idempotent. Unparsed requirements never match.
func Evaluate(p *progress.UserProgress, earned map[uuid.UUID]struct{}, catalog []*badge.Badge) []*badge.Badge {
	var newlyEarned []*badge.Badge
	for _, b := range catalog {
		if _, ok := earned[b.ID]; ok {
			continue
		}
		if b.Requirement.SatisfiedBy(p) {
			newlyEarned = append(newlyEarned, b)
		}
	}
	return newlyEarned
}

// XPForSolve is the XP grant per solved problem.
func XPForSolve(d progress.Difficulty) int {
	switch d {
	case progress.DifficultyMedium:
		return 25
	case progress.DifficultyHard:
		return 50
	default:
		return 10
	}
}

// LevelForXP levels a user up every 100 XP, starting at level 1.
func LevelForXP(xp int) int {
	return xp/100 + 1
}
