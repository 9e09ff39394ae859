package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase/leaderboard"
	"github.com/fastygo/taskboard/usecase/profile"
)

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func stamp(at time.Time) *time.Time { return &at }

func newScheduler(online bool) (*SnapshotScheduler, *memory.SnapshotRepository, *memory.UserRepository, *memory.TaskRepository) {
	tasks := memory.NewTaskRepository(
		domain.Task{ID: "1", UserID: "u1", Completed: true, CompletedAt: stamp(now.Add(-time.Hour))},
		domain.Task{ID: "2", UserID: "u1", Completed: true, CompletedAt: stamp(now.AddDate(0, -3, 0))},
	)
	users := memory.NewUserRepository(
		domain.User{ID: "u1", Email: "a@example.com"},
		domain.User{ID: "u2", Email: "b@example.com", CompletedTasks: 9},
	)
	snaps := memory.NewSnapshotRepository()
	boards := leaderboard.New(tasks, users, snaps, leaderboard.Config{}, nil).WithClock(func() time.Time { return now })

	s := NewSnapshotScheduler(boards, profile.New(users, nil), snaps, staticHealth(online), nil, SchedulerConfig{Interval: time.Minute, Retention: 24 * time.Hour})
	s.now = func() time.Time { return now }
	return s, snaps, users, tasks
}

func TestSnapshotScheduler_RunSnapshotsEveryPeriod(t *testing.T) {
	s, snaps, users, _ := newScheduler(true)
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, period := range domain.Periods {
		got, _ := snaps.List(ctx, period, 0)
		if len(got) != 1 {
			t.Fatalf("%s: got %d snapshots want 1", period, len(got))
		}
	}
	allTime, _ := snaps.List(ctx, domain.PeriodAllTime, 1)
	if allTime[0].Entries[0].CompletedTasks != 2 {
		t.Fatalf("all-time snapshot: %+v", allTime[0].Entries)
	}

	u1, _ := users.GetByID(ctx, "u1")
	u2, _ := users.GetByID(ctx, "u2")
	if u1.CompletedTasks != 2 || u2.CompletedTasks != 0 {
		t.Fatalf("stats not reconciled: u1=%d u2=%d", u1.CompletedTasks, u2.CompletedTasks)
	}
}

func TestSnapshotScheduler_SkipsWhenOffline(t *testing.T) {
	s, snaps, _, _ := newScheduler(false)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, _ := snaps.List(context.Background(), domain.PeriodDaily, 0); len(got) != 0 {
		t.Fatalf("offline run should not snapshot")
	}
}

func TestSnapshotScheduler_CleansUpExpired(t *testing.T) {
	s, snaps, _, _ := newScheduler(true)
	ctx := context.Background()
	if err := snaps.Save(ctx, &domain.Snapshot{Period: domain.PeriodDaily, TakenAt: now.AddDate(0, 0, -3)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, _ := snaps.List(ctx, domain.PeriodDaily, 0)
	if len(got) != 1 || !got[0].TakenAt.Equal(now) {
		t.Fatalf("expired snapshot should be removed: %+v", got)
	}
}

func TestSnapshotScheduler_JoinsErrors(t *testing.T) {
	s, _, _, tasks := newScheduler(true)
	tasks.Fail(errors.New("db down"))

	err := s.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsDomainError(err, domain.ErrCodeStoreFailed) {
		t.Fatalf("joined error should keep the store failure: %v", err)
	}
}

func TestSnapshotScheduler_StartStop(t *testing.T) {
	s, _, _, _ := newScheduler(true)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
