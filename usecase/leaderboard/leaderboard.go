package leaderboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

const DefaultFallbackName = "no name"

type Config struct {
	FallbackName      string
	LookupConcurrency int
	SnapshotLimit     int
}

type UseCase struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	snapshots repository.SnapshotRepository
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	snapshots repository.SnapshotRepository,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if cfg.FallbackName == "" {
		cfg.FallbackName = DefaultFallbackName
	}
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = 8
	}
	if cfg.SnapshotLimit <= 0 {
		cfg.SnapshotLimit = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		users:     users,
		snapshots: snapshots,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source. Intended for tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// Leaderboard ranks users by tasks completed within the period.
func (uc *UseCase) Leaderboard(ctx context.Context, period domain.Period) (*domain.Leaderboard, error) {
	log := logger.WithRequestID(ctx, uc.logger)
	now := uc.now()

	tasks, err := uc.tasks.ListCompletedSince(ctx, period.Since(now))
	if err != nil {
		log.Error("failed to fetch completed tasks", zap.String("period", string(period)), zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	stats := Aggregate(tasks, period, now)

	names, err := uc.displayNames(ctx, stats)
	if err != nil {
		log.Error("failed to resolve display names", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}

	return &domain.Leaderboard{
		Period:      period,
		GeneratedAt: now,
		Entries:     Rank(stats, names, uc.cfg.FallbackName),
	}, nil
}

// Stats returns the all-time aggregation used to reconcile denormalized counters.
func (uc *UseCase) Stats(ctx context.Context) (map[string]domain.UserStats, error) {
	tasks, err := uc.tasks.ListCompletedSince(ctx, time.Time{})
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	return Aggregate(tasks, domain.PeriodAllTime, uc.now()), nil
}

// Snapshot computes the current leaderboard for period and persists it.
func (uc *UseCase) Snapshot(ctx context.Context, period domain.Period) (*domain.Snapshot, error) {
	board, err := uc.Leaderboard(ctx, period)
	if err != nil {
		return nil, err
	}
	snap := &domain.Snapshot{
		Period:  board.Period,
		TakenAt: board.GeneratedAt,
		Entries: board.Entries,
	}
	if err := uc.snapshots.Save(ctx, snap); err != nil {
		return nil, domain.StoreFailure(err)
	}
	return snap, nil
}

// Snapshots lists stored snapshots for a period, newest first.
func (uc *UseCase) Snapshots(ctx context.Context, period domain.Period, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 || limit > uc.cfg.SnapshotLimit {
		limit = uc.cfg.SnapshotLimit
	}
	snaps, err := uc.snapshots.List(ctx, period, limit)
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Error("failed to list snapshots", zap.Error(err))
		return nil, domain.StoreFailure(err)
	}
	if snaps == nil {
		snaps = []domain.Snapshot{}
	}
	return snaps, nil
}

// displayNames looks every user up concurrently and waits for all lookups.
func (uc *UseCase) displayNames(ctx context.Context, stats map[string]domain.UserStats) (map[string]string, error) {
	names := make(map[string]string, len(stats))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.LookupConcurrency)
	for userID := range stats {
		g.Go(func() error {
			user, err := uc.users.GetByID(gctx, userID)
			if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return err
			}
			mu.Lock()
			names[userID] = user.DisplayName(uc.cfg.FallbackName)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}
