package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/memory"
)

func newUseCase(tasks *memory.TaskRepository, users *memory.UserRepository, snaps *memory.SnapshotRepository) *UseCase {
	return New(tasks, users, snaps, Config{}, nil).WithClock(func() time.Time { return now })
}

func TestLeaderboard_ResolvesNamesWithFallback(t *testing.T) {
	tasks := memory.NewTaskRepository(
		domain.Task{ID: "1", UserID: "A", Completed: true, CompletedAt: completedAt(now)},
		domain.Task{ID: "2", UserID: "A", Completed: true, CompletedAt: completedAt(now.Add(-time.Hour))},
		domain.Task{ID: "3", UserID: "B", Completed: true, CompletedAt: completedAt(now.Add(-time.Hour))},
		domain.Task{ID: "4", UserID: "C", Completed: true, CompletedAt: completedAt(now.AddDate(0, 0, -10))},
	)
	users := memory.NewUserRepository(
		domain.User{ID: "A", Email: "a@example.com"},
		domain.User{ID: "C", Email: "c@example.com"},
	)
	uc := newUseCase(tasks, users, memory.NewSnapshotRepository())

	board, err := uc.Leaderboard(context.Background(), domain.PeriodDaily)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if board.Period != domain.PeriodDaily || !board.GeneratedAt.Equal(now) {
		t.Fatalf("unexpected header %+v", board)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("got %d entries want 2: %+v", len(board.Entries), board.Entries)
	}
	if board.Entries[0].DisplayName != "a@example.com" || board.Entries[0].CompletedTasks != 2 {
		t.Fatalf("first entry: %+v", board.Entries[0])
	}
	if board.Entries[1].DisplayName != DefaultFallbackName {
		t.Fatalf("user without record should use fallback, got %q", board.Entries[1].DisplayName)
	}
	if users.Lookups("A") != 1 || users.Lookups("B") != 1 || users.Lookups("C") != 0 {
		t.Fatalf("expected one lookup per ranked user")
	}
}

func TestLeaderboard_StoreFailure(t *testing.T) {
	tasks := memory.NewTaskRepository()
	tasks.Fail(errors.New("connection refused"))
	uc := newUseCase(tasks, memory.NewUserRepository(), memory.NewSnapshotRepository())

	_, err := uc.Leaderboard(context.Background(), domain.PeriodWeekly)
	if !domain.IsDomainError(err, domain.ErrCodeStoreFailed) {
		t.Fatalf("got %v want STORE_FAILED", err)
	}
}

func TestLeaderboard_LookupFailureFailsRequest(t *testing.T) {
	tasks := memory.NewTaskRepository(
		domain.Task{ID: "1", UserID: "A", Completed: true, CompletedAt: completedAt(now)},
	)
	users := memory.NewUserRepository()
	users.Fail(errors.New("timeout"))
	uc := newUseCase(tasks, users, memory.NewSnapshotRepository())

	if _, err := uc.Leaderboard(context.Background(), domain.PeriodAllTime); !domain.IsDomainError(err, domain.ErrCodeStoreFailed) {
		t.Fatalf("got %v want STORE_FAILED", err)
	}
}

func TestSnapshot_PersistsAndLists(t *testing.T) {
	tasks := memory.NewTaskRepository(
		domain.Task{ID: "1", UserID: "A", Completed: true, CompletedAt: completedAt(now)},
	)
	snaps := memory.NewSnapshotRepository()
	uc := newUseCase(tasks, memory.NewUserRepository(domain.User{ID: "A", Email: "a@example.com"}), snaps)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := uc.Snapshot(ctx, domain.PeriodMonthly); err != nil {
			t.Fatalf("snapshot: %v", err)
		}
	}

	got, err := uc.Snapshots(ctx, domain.PeriodMonthly, 0)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(got) != 2 || len(got[0].Entries) != 1 || got[0].Entries[0].DisplayName != "a@example.com" {
		t.Fatalf("got %+v", got)
	}

	empty, err := uc.Snapshots(ctx, domain.PeriodDaily, 5)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty period: %v %v", empty, err)
	}
}

func TestStats_AllTime(t *testing.T) {
	tasks := memory.NewTaskRepository(
		domain.Task{ID: "1", UserID: "A", Completed: true, CompletedAt: completedAt(now.AddDate(-2, 0, 0))},
		domain.Task{ID: "2", UserID: "A", Completed: true, CompletedAt: completedAt(now)},
	)
	uc := newUseCase(tasks, memory.NewUserRepository(), memory.NewSnapshotRepository())

	stats, err := uc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats["A"].CompletedTasks != 2 || !stats["A"].LastCompletedAt.Equal(now) {
		t.Fatalf("got %+v", stats["A"])
	}
}
