package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// UserProgress is the per-user gamification aggregate. It is owned by the
// progression engine; everything else reads snapshots.
type UserProgress struct {
	UserID             uuid.UUID          `json:"user_id" db:"user_id"`
	Streak             int                `json:"streak" db:"streak"`
	LastActiveDay      *time.Time         `json:"last_active_day" db:"last_active_day"`
	SolvedByDifficulty map[Difficulty]int `json:"solved_by_difficulty"`
	SolvedByTag        map[string]int     `json:"solved_by_tag"`
	TotalSolved        int                `json:"total_solved" db:"total_solved"`
	XP                 int                `json:"xp" db:"xp"`
	Level              int                `json:"level" db:"level"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

func New(userID uuid.UUID) *UserProgress {
	return &UserProgress{
		UserID:             userID,
		Level:              1,
		SolvedByDifficulty: make(map[Difficulty]int),
		SolvedByTag:        make(map[string]int),
	}
}

// RecordSolve bumps the cumulative counters for one solved problem.
// Each solve has exactly one difficulty, so TotalSolved stays equal to the
// sum of the per-difficulty counts.
func (p *UserProgress) RecordSolve(d Difficulty, tags []string) {
	if p.SolvedByDifficulty == nil {
		p.SolvedByDifficulty = make(map[Difficulty]int)
	}
	if p.SolvedByTag == nil {
		p.SolvedByTag = make(map[string]int)
	}
	p.SolvedByDifficulty[d]++
	for _, tag := range tags {
		p.SolvedByTag[tag]++
	}
	p.TotalSolved++
}

// SolvedCountsConsistent reports whether TotalSolved matches the sum of the
// per-difficulty counters. Checked after every event.
func (p *UserProgress) SolvedCountsConsistent() bool {
	sum := 0
	for _, n := range p.SolvedByDifficulty {
		sum += n
	}
	return sum == p.TotalSolved
}

func (p *UserProgress) Clone() *UserProgress {
	cp := *p
	if p.LastActiveDay != nil {
		day := *p.LastActiveDay
		cp.LastActiveDay = &day
	}
	cp.SolvedByDifficulty = make(map[Difficulty]int, len(p.SolvedByDifficulty))
	for k, v := range p.SolvedByDifficulty {
		cp.SolvedByDifficulty[k] = v
	}
	cp.SolvedByTag = make(map[string]int, len(p.SolvedByTag))
	for k, v := range p.SolvedByTag {
		cp.SolvedByTag[k] = v
	}
	return &cp
}
