package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestManager_ShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"postgres", "redis", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := strings.Join(order, ","); got != "http,redis,postgres" {
		t.Fatalf("got order %s", got)
	}
}

func TestManager_ShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	boom := errors.New("boom")
	ran := false
	m.Register("first", func(context.Context) error { ran = true; return nil })
	m.Register("second", func(context.Context) error { return boom })

	err := m.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "second") {
		t.Fatalf("error should name the component: %v", err)
	}
	if !ran {
		t.Fatalf("remaining hooks should still run after a failure")
	}
}

func TestManager_ShutdownOnce(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("once", func(context.Context) error { calls++; return nil })

	_ = m.Shutdown(context.Background())
	_ = m.Shutdown(context.Background())
	m.Register("late", func(context.Context) error { calls++; return nil })
	_ = m.Shutdown(context.Background())

	if calls != 1 {
		t.Fatalf("got %d calls want 1", calls)
	}
}

func TestManager_ShutdownHonoursTimeout(t *testing.T) {
	m := New(10*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := m.Shutdown(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v want deadline exceeded", err)
	}
}

func TestManager_ListenCancelsWithParent(t *testing.T) {
	m := New(time.Second, nil)
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := m.Listen(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("listen context not cancelled")
	}
}
