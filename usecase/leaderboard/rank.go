package leaderboard

import (
	"sort"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Aggregate counts completed tasks per user inside the period window ending at
// now. Completed tasks without a completion timestamp are skipped.
func Aggregate(tasks []domain.Task, period domain.Period, now time.Time) map[string]domain.UserStats {
	stats := make(map[string]domain.UserStats)
	for _, task := range tasks {
		if !task.Completed || task.CompletedAt == nil {
			continue
		}
		if !period.Contains(*task.CompletedAt, now) {
			continue
		}

		entry := stats[task.UserID]
		entry.CompletedTasks++
		if entry.LastCompletedAt == nil || task.CompletedAt.After(*entry.LastCompletedAt) {
			last := *task.CompletedAt
			entry.LastCompletedAt = &last
		}
		stats[task.UserID] = entry
	}
	return stats
}

// Rank orders users by completed count, descending, breaking ties by user id.
// Users missing from names get the fallback label. Equal counts share a rank.
func Rank(stats map[string]domain.UserStats, names map[string]string, fallback string) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(stats))
	for userID, s := range stats {
		name := names[userID]
		if name == "" {
			name = fallback
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:          userID,
			DisplayName:     name,
			CompletedTasks:  s.CompletedTasks,
			LastCompletedAt: s.LastCompletedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CompletedTasks != entries[j].CompletedTasks {
			return entries[i].CompletedTasks > entries[j].CompletedTasks
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		if i > 0 && entries[i].CompletedTasks == entries[i-1].CompletedTasks {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}
