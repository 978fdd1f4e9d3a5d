package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerUsableBeforeInit(t *testing.T) {
	if GetLogger() == nil {
		t.Fatal("expected nop logger before Init")
	}
	Info(context.Background(), "no init yet")
	SetLevel(zapcore.DebugLevel)
}

func TestInitAndContextLogging(t *testing.T) {
	Init("development")
	if GetLogger() == nil {
		t.Fatal("expected logger initialized")
	}

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContextAttachesIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := log
	log = zap.New(core)
	t.Cleanup(func() { log = prev })

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")
	ctx = context.WithValue(ctx, ProfileIDKey, "profile-9")
	Warn(ctx, "rates fallback")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-7" || fields["profile_id"] != "profile-9" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestWithContextNil(t *testing.T) {
	//nolint:staticcheck // nil context is tolerated on purpose
	if WithContext(nil) == nil {
		t.Fatal("expected base logger for nil context")
	}
}

func TestInit_Production(t *testing.T) {
	once = sync.Once{}
	Init("production")
	if GetLogger() == nil {
		t.Fatal("expected production logger initialized")
	}
	SetLevel(zapcore.WarnLevel)
	if WithContext(context.Background()) == nil {
		t.Fatal("expected logger without contextual fields")
	}
	Sync()
}
