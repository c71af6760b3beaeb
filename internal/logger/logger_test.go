package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/polkiloo/uniformorders/internal/config"
)

func TestNewUsesConfiguredLevel(t *testing.T) {
	l := New(&config.Config{LogLevel: "warn"})
	if l == nil {
		t.Fatal("expected logger, got nil")
	}
	if !l.Enabled(context.Background(), slog.LevelWarn) {
		t.Errorf("expected warn level to be enabled")
	}
	if l.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("did not expect info level to be enabled")
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "")

	l.Debug("hidden")
	l.Info("order submitted", slog.String("order", "o-1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "order submitted" || entry["order"] != "o-1" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["service"] != "uniformorders" {
		t.Errorf("expected service attribute, got %v", entry["service"])
	}
}
