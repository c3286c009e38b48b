package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Environments(t *testing.T) {
	tests := []struct {
		env       string
		wantLevel zapcore.Level
	}{
		{"prod", zapcore.InfoLevel},
		{"local", zapcore.DebugLevel},
		{"dev", zapcore.DebugLevel},
		{"docker", zapcore.DebugLevel},
	}
	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			l, err := NewLogger(tc.env)
			if err != nil {
				t.Fatalf("NewLogger(%s): %v", tc.env, err)
			}
			if !l.Core().Enabled(tc.wantLevel) {
				t.Errorf("level %s should be enabled", tc.wantLevel)
			}
			if tc.wantLevel == zapcore.InfoLevel && l.Core().Enabled(zapcore.DebugLevel) {
				t.Error("debug must be disabled in prod")
			}
		})
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("local", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled with warn override")
	}

	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestContextLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must never return nil")
	}

	def := zap.NewExample()
	if FromContextOr(context.Background(), def) != def {
		t.Error("expected fallback logger")
	}

	l := zap.NewNop().With(zap.String("request_id", "abc"))
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l || FromContextOr(ctx, def) != l {
		t.Error("stored logger not returned")
	}
}
