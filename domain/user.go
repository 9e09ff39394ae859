package domain

import "time"

// User represents an authenticated identity. CompletedTasks and
// LastCompletedDate are denormalized; the leaderboard recomputes them from tasks.
type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email,omitempty"`
	PasswordHash      string     `json:"-"`
	CompletedTasks    int        `json:"completed_tasks"`
	LastCompletedDate *time.Time `json:"last_completed_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DisplayName returns the email or the fallback when it is empty.
func (u *User) DisplayName(fallback string) string {
	if u == nil || u.Email == "" {
		return fallback
	}
	return u.Email
}

// ApplyStats copies aggregated stats onto the denormalized fields and reports
// whether anything changed.
func (u *User) ApplyStats(stats UserStats) bool {
	if u == nil {
		return false
	}
	changed := u.CompletedTasks != stats.CompletedTasks || !sameTime(u.LastCompletedDate, stats.LastCompletedAt)
	u.CompletedTasks = stats.CompletedTasks
	u.LastCompletedDate = stats.LastCompletedAt
	return changed
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
