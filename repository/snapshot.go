package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskboard/domain"
)

type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *domain.Snapshot) error
	// List returns up to limit snapshots of a period, newest first.
	List(ctx context.Context, period domain.Period, limit int) ([]domain.Snapshot, error)
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)
}
