package domain

import "time"

// UserStats is the per-user aggregation of completed tasks in a window.
type UserStats struct {
	CompletedTasks  int        `json:"completed_tasks"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank            int        `json:"rank"`
	UserID          string     `json:"user_id"`
	DisplayName     string     `json:"display_name"`
	CompletedTasks  int        `json:"completed_tasks"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
}

// Leaderboard is a ranked view for one period.
type Leaderboard struct {
	Period      Period             `json:"period"`
	GeneratedAt time.Time          `json:"generated_at"`
	Entries     []LeaderboardEntry `json:"entries"`
}

// Snapshot is a persisted leaderboard.
type Snapshot struct {
	ID      string             `json:"id"`
	Period  Period             `json:"period"`
	TakenAt time.Time          `json:"taken_at"`
	Entries []LeaderboardEntry `json:"entries"`
}
