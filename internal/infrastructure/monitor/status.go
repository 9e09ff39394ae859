package monitor

import "time"

type Status struct {
	PostgreSQL    bool      `json:"postgresql"`
	Redis         bool      `json:"redis"`
	Snapshots     bool      `json:"snapshots"`
	SnapshotCount int       `json:"snapshot_count"`
	LastCheck     time.Time `json:"last_check"`
}

// Healthy reports whether the stores user requests depend on are reachable.
func (s Status) Healthy() bool {
	return s.PostgreSQL && s.Redis
}
