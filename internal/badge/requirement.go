package badge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"codeQuestAPI/internal/progress"
)

// ErrUnknownRequirement marks a catalog entry whose requirement string
// cannot be parsed. Such badges are never auto-awarded.
var ErrUnknownRequirement = errors.New("unknown badge requirement")

type RequirementKind string

const (
	// RequirementUnknown fails closed: SatisfiedBy always returns false.
	RequirementUnknown         RequirementKind = "unknown"
	RequirementStreak          RequirementKind = "streak"
	RequirementDifficultyCount RequirementKind = "difficulty_count"
	RequirementTagCount        RequirementKind = "tag_count"
)

// Requirement is the parsed form of a catalog requirement string:
//
//	streak:5           -> streak >= 5
//	problems:easy:10   -> solved Easy count >= 10
//	tag:Array:5        -> solved count for tag "Array" >= 5
type Requirement struct {
	Kind       RequirementKind
	Difficulty progress.Difficulty
	Tag        string
	Threshold  int
}

func ParseRequirement(raw string) (Requirement, error) {
	parts := strings.Split(raw, ":")
	switch {
	case len(parts) == 2 && parts[0] == "streak":
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 1 {
			return Requirement{Kind: RequirementUnknown}, fmt.Errorf("%w: bad streak threshold %q", ErrUnknownRequirement, raw)
		}
		return Requirement{Kind: RequirementStreak, Threshold: n}, nil

	case len(parts) == 3 && parts[0] == "problems":
		d, err := progress.ParseDifficulty(parts[1])
		if err != nil {
			return Requirement{Kind: RequirementUnknown}, fmt.Errorf("%w: %q", ErrUnknownRequirement, raw)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return Requirement{Kind: RequirementUnknown}, fmt.Errorf("%w: bad count in %q", ErrUnknownRequirement, raw)
		}
		return Requirement{Kind: RequirementDifficultyCount, Difficulty: d, Threshold: n}, nil

	case len(parts) == 3 && parts[0] == "tag":
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 || parts[1] == "" {
			return Requirement{Kind: RequirementUnknown}, fmt.Errorf("%w: bad tag rule %q", ErrUnknownRequirement, raw)
		}
		return Requirement{Kind: RequirementTagCount, Tag: parts[1], Threshold: n}, nil
	}

	return Requirement{Kind: RequirementUnknown}, fmt.Errorf("%w: %q", ErrUnknownRequirement, raw)
}

// SatisfiedBy evaluates the requirement against a progress snapshot.
func (r Requirement) SatisfiedBy(p *progress.UserProgress) bool {
	switch r.Kind {
	case RequirementStreak:
		return p.Streak >= r.Threshold
	case RequirementDifficultyCount:
		return p.SolvedByDifficulty[r.Difficulty] >= r.Threshold
	case RequirementTagCount:
		return p.SolvedByTag[r.Tag] >= r.Threshold
	}
	return false
}
