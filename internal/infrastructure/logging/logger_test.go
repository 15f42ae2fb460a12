package logging

import (
	"log/slog"
	"testing"

	"github.com/webdeck/homebridge-indigo/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	logger := New(config.LoggingConfig{
		Level:  "warn",
		Format: "json",
		Output: "stdout",
	}, "test")

	if logger.Enabled(nil, slog.LevelInfo) {
		t.Error("info should be filtered at warn level")
	}
	if !logger.Enabled(nil, slog.LevelWarn) {
		t.Error("warn should be enabled at warn level")
	}
	if !logger.Enabled(nil, slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestWith_ReturnsNewLogger(t *testing.T) {
	base := Default()
	derived := base.With("component", "indigo")

	if derived == base {
		t.Error("With() should return a new Logger")
	}
	if derived.Logger == base.Logger {
		t.Error("With() should wrap a new slog.Logger")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil || logger.Logger == nil {
		t.Fatal("Default() returned nil logger")
	}
}
