package leaderboard

import "github.com/google/uuid"

type Entry struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	AvatarID    string    `json:"avatar_id" db:"avatar_id"`
	Streak      int       `json:"streak" db:"streak"`
	XP          int       `json:"xp" db:"xp"`
	Level       int       `json:"level" db:"level"`
	TotalSolved int       `json:"total_solved" db:"total_solved"`
	Rank        int       `json:"rank" db:"rank"`
}

type Leaderboard struct {
	Entries      []*Entry `json:"entries"`
	UserPosition *Entry   `json:"user_position,omitempty"`
	TotalUsers   int      `json:"total_users"`
}
