package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// Leaderboards builds and persists leaderboards.
type Leaderboards interface {
	Snapshot(ctx context.Context, period domain.Period) (*domain.Snapshot, error)
	Stats(ctx context.Context) (map[string]domain.UserStats, error)
}

// StatsSyncer writes aggregated stats back onto user records.
type StatsSyncer interface {
	SyncStats(ctx context.Context, stats map[string]domain.UserStats) (int, error)
}

// SchedulerConfig controls how often snapshots are taken and how long they are kept.
type SchedulerConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// SnapshotScheduler periodically snapshots every leaderboard period and
// reconciles the denormalized per-user completion counters.
type SnapshotScheduler struct {
	boards    Leaderboards
	stats     StatsSyncer
	snapshots repository.SnapshotRepository
	monitor   ConnectionHealth
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       SchedulerConfig
	now       func() time.Time
}

func NewSnapshotScheduler(
	boards Leaderboards,
	stats StatsSyncer,
	snapshots repository.SnapshotRepository,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg SchedulerConfig,
) *SnapshotScheduler {
	if cfg.Interval < time.Second {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SnapshotScheduler{
		boards:    boards,
		stats:     stats,
		snapshots: snapshots,
		monitor:   monitor,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
		now:       time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := s.Run(ctx); err != nil {
			s.logger.Error("snapshot run failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *SnapshotScheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("snapshot scheduler started", zap.Duration("interval", s.cfg.Interval))
}

// Stop waits for a running job to finish or for ctx to expire.
func (s *SnapshotScheduler) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("snapshot scheduler stopped")
}

// Run performs one pass synchronously. Every step is attempted; failures are
// joined into the returned error.
func (s *SnapshotScheduler) Run(ctx context.Context) error {
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping snapshot run (offline)")
		return nil
	}

	var result error
	for _, period := range domain.Periods {
		snap, err := s.boards.Snapshot(ctx, period)
		if err != nil {
			result = errors.Join(result, fmt.Errorf("snapshot %s: %w", period, err))
			continue
		}
		s.logger.Debug("leaderboard snapshot stored",
			zap.String("period", string(period)),
			zap.Int("entries", len(snap.Entries)))
	}

	if s.stats != nil {
		if err := s.syncStats(ctx); err != nil {
			result = errors.Join(result, err)
		}
	}

	removed, err := s.snapshots.Cleanup(ctx, s.now().Add(-s.cfg.Retention))
	if err != nil {
		result = errors.Join(result, fmt.Errorf("cleanup: %w", err))
	} else if removed > 0 {
		s.logger.Info("expired snapshots removed", zap.Int("count", removed))
	}

	return result
}

func (s *SnapshotScheduler) syncStats(ctx context.Context) error {
	stats, err := s.boards.Stats(ctx)
	if err != nil {
		return fmt.Errorf("aggregate stats: %w", err)
	}
	updated, err := s.stats.SyncStats(ctx, stats)
	if err != nil {
		return fmt.Errorf("sync stats: %w", err)
	}
	if updated > 0 {
		s.logger.Info("user completion stats reconciled", zap.Int("updated", updated))
	}
	return nil
}
