package stats

import "codeQuestAPI/internal/progress"

type UserStats struct {
	Streak             int                         `json:"streak"`
	TotalSolved        int                         `json:"total_solved"`
	SolvedByDifficulty map[progress.Difficulty]int `json:"solved_by_difficulty"`
	XP                 int                         `json:"xp"`
	Level              int                         `json:"level"`
	BadgesEarned       int                         `json:"badges_earned"`
	FriendsCount       int                         `json:"friends_count"`
	GoalsCompleted     int                         `json:"goals_completed"`
}
