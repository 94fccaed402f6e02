package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		if _, err := NewLogger(env, ""); err != nil {
			t.Errorf("NewLogger(%q): %v", env, err)
		}
	}
	if _, err := NewLogger("staging", ""); err == nil {
		t.Error("expected error for unknown env")
	}
}

func TestNewLogger_Level(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNewCLILogger(t *testing.T) {
	l, err := NewCLILogger("")
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("cli logger should default to warn")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
	l := zap.NewExample()
	if got := FromContext(WithLogger(context.Background(), l)); got != l {
		t.Error("expected stored logger")
	}
}

func TestWith(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, reqLogger := With(context.Background(), base, zap.String("request_id", "r1"))
	if FromContext(ctx) != reqLogger {
		t.Fatal("derived logger not stored in context")
	}
	_, child := With(ctx, zap.NewNop(), zap.String("collection", "users"))
	child.Info("imported")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "r1" || fields["collection"] != "users" {
		t.Errorf("fields = %v, want request_id and collection", fields)
	}
}

func TestWith_NilBase(t *testing.T) {
	ctx, l := With(context.Background(), nil)
	if l == nil || FromContext(ctx) != l {
		t.Error("expected a no-op logger stored in context")
	}
}
