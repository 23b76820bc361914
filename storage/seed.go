package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/problem"
)

// Seed loads the starter problem set and badge catalog into an empty
// store. Safe to skip when problems already exist, so restarts against a
// persistent database do not duplicate rows.
func Seed(ctx context.Context, s Store) error {
	existing, err := s.ListProblems(ctx, problem.Filter{})
	if err != nil {
		return fmt.Errorf("seed: check existing problems: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()

	problems := []*problem.Problem{
		{
			ID:          uuid.New(),
			Title:       "Two Sum",
			Description: "Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.",
			Difficulty:  "Easy",
			Acceptance:  49,
			Solution:    "Use a hash map from value to index; for each element look up target minus the element.",
			Tags:        []string{"Array", "Hash Table"},
			CreatedAt:   now,
		},
		{
			ID:          uuid.New(),
			Title:       "Valid Parentheses",
			Description: "Given a string containing just the characters '(', ')', '{', '}', '[' and ']', determine if the input string is valid.",
			Difficulty:  "Easy",
			Acceptance:  40,
			Solution:    "Push opening brackets on a stack and pop on each closer, checking the pair matches.",
			Tags:        []string{"String", "Stack"},
			CreatedAt:   now,
		},
		{
			ID:          uuid.New(),
			Title:       "Longest Substring Without Repeating Characters",
			Description: "Given a string s, find the length of the longest substring without repeating characters.",
			Difficulty:  "Medium",
			Acceptance:  34,
			Solution:    "Sliding window over the string with a map of last-seen positions.",
			Tags:        []string{"String", "Hash Table", "Sliding Window"},
			CreatedAt:   now,
		},
	}
	for _, p := range problems {
		if err := s.CreateProblem(ctx, p); err != nil {
			return fmt.Errorf("seed: create problem %q: %w", p.Title, err)
		}
	}

	badges := []*badge.Badge{
		{
			ID:             uuid.New(),
			Name:           "5-Day Streak",
			Description:    "Practice five days in a row",
			Icon:           "flame",
			Color:          "#F59E0B",
			RawRequirement: "streak:5",
			CreatedAt:      now,
		},
		{
			ID:             uuid.New(),
			Name:           "Easy Does It",
			Description:    "Solve ten easy problems",
			Icon:           "leaf",
			Color:          "#10B981",
			RawRequirement: "problems:easy:10",
			CreatedAt:      now,
		},
		{
			ID:             uuid.New(),
			Name:           "Array Master",
			Description:    "Solve five problems tagged Array",
			Icon:           "grid",
			Color:          "#6366F1",
			RawRequirement: "tag:Array:5",
			CreatedAt:      now,
		},
	}
	for _, b := range badges {
		if err := s.CreateBadge(ctx, b); err != nil {
			return fmt.Errorf("seed: create badge %q: %w", b.Name, err)
		}
	}
	return nil
}
