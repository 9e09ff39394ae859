package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "snapshots.db"), "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_ListNewestFirstPerPeriod(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		snap := &domain.Snapshot{Period: domain.PeriodWeekly, TakenAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Save(ctx, snap); err != nil {
			t.Fatalf("save weekly %d: %v", i, err)
		}
	}
	for _, p := range []domain.Period{domain.PeriodDaily, domain.PeriodMonthly, domain.PeriodAllTime} {
		if err := store.Save(ctx, &domain.Snapshot{Period: p, TakenAt: base}); err != nil {
			t.Fatalf("save %s: %v", p, err)
		}
	}

	got, err := store.List(ctx, domain.PeriodWeekly, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d snapshots want 3", len(got))
	}
	for i, want := range []time.Time{base.Add(2 * time.Hour), base.Add(time.Hour), base} {
		if !got[i].TakenAt.Equal(want) || got[i].Period != domain.PeriodWeekly {
			t.Fatalf("snapshot %d: got %s/%s want weekly/%s", i, got[i].Period, got[i].TakenAt, want)
		}
	}

	limited, err := store.List(ctx, domain.PeriodWeekly, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limited list: %v %v", limited, err)
	}

	// weekly sorts last, so the listing above walked back from Cursor.Last; all-time sorts first.
	last, err := store.List(ctx, domain.PeriodAllTime, 10)
	if err != nil || len(last) != 1 {
		t.Fatalf("all-time list: %v %v", last, err)
	}
}

func TestStore_Cleanup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		if err := store.Save(ctx, &domain.Snapshot{Period: domain.PeriodDaily, TakenAt: base.AddDate(0, 0, -i)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	removed, err := store.Cleanup(ctx, base.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d want 2", removed)
	}
	size, err := store.Size()
	if err != nil || size != 2 {
		t.Fatalf("size %d err %v", size, err)
	}
}

func TestStore_SaveRejectsMissingPeriod(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(context.Background(), &domain.Snapshot{}); err != domain.ErrInvalidPayload {
		t.Fatalf("got %v want ErrInvalidPayload", err)
	}
}
