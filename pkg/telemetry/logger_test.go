package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFileLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackforge.log")
	logger, err := NewLogger(LoggingConfig{
		Level:      "debug",
		Format:     "json",
		Output:     path,
		TimeFormat: "rfc3339",
	})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return logger, path
}

func readLogLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if raw == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			t.Fatalf("bad log line %q: %v", raw, err)
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestComponentLoggerFields(t *testing.T) {
	logger, path := newFileLogger(t)

	logger.NewComponentLogger("planner").
		WithPlanID("plan-9").
		WithResource("field", "Priority").
		Info("plan computed")

	lines := readLogLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	entry := lines[0]
	if entry["component"] != "planner" || entry["plan_id"] != "plan-9" {
		t.Errorf("missing fields: %v", entry)
	}
	if entry["resource_kind"] != "field" || entry["resource_key"] != "Priority" {
		t.Errorf("missing resource fields: %v", entry)
	}
	if entry["message"] != "plan computed" || entry["level"] != "info" {
		t.Errorf("wrong message or level: %v", entry)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackforge.log")
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	lines := readLogLines(t, path)
	if len(lines) != 1 || lines[0]["message"] != "kept" {
		t.Errorf("level filtering broken: %v", lines)
	}
}

func TestWithErrorField(t *testing.T) {
	logger, path := newFileLogger(t)
	logger.WithError(errors.New("connection refused")).Error("apply failed")

	lines := readLogLines(t, path)
	if len(lines) != 1 || lines[0]["error"] != "connection refused" {
		t.Errorf("error field missing: %v", lines)
	}
}

func TestFromContextFallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("expected fallback logger, got nil")
	}

	logger, _ := newFileLogger(t)
	ctx := logger.WithContext(context.Background())
	if FromContext(ctx) != logger {
		t.Error("context did not round-trip the logger")
	}
}

func TestParseLogLevelDefaults(t *testing.T) {
	if got := parseLogLevel("nonsense"); got.String() != "info" {
		t.Errorf("unknown level should default to info, got %s", got)
	}
}
