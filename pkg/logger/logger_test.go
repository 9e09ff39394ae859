package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	WithRequestID(ctx, base).Info("hello")
	WithRequestID(context.Background(), base).Info("bare")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-1" {
		t.Fatalf("request_id: got %v", got)
	}
	if _, ok := entries[1].ContextMap()["request_id"]; ok {
		t.Fatalf("bare context should not add request_id")
	}
}

func TestWithRequestID_NilLogger(t *testing.T) {
	if WithRequestID(context.Background(), nil) == nil {
		t.Fatalf("nil base should yield a no-op logger")
	}
}

func TestNew_FallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "not-a-level", Encoding: "console", Service: "taskboard"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug should be disabled at the fallback level")
	}
	if !log.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("info should be enabled")
	}
}
