package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in    string
		want  slog.Level
		known bool
	}{
		{"", slog.LevelInfo, true},
		{"info", slog.LevelInfo, true},
		{"DEBUG", slog.LevelDebug, true},
		{" warn ", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tc := range cases {
		got, known := parseLevel(tc.in)
		if got != tc.want || known != tc.known {
			t.Fatalf("parseLevel(%q) = %v/%v, want %v/%v", tc.in, got, known, tc.want, tc.known)
		}
	}
}

func TestLoggerTagsServiceAndWarnsOnUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "diligence-api", "verbose")
	logger.Info("startup")

	out := buf.String()
	if !strings.Contains(out, `"service":"diligence-api"`) {
		t.Fatalf("expected service attr in output, got %s", out)
	}
	if !strings.Contains(out, "unknown_log_level") {
		t.Fatalf("expected unknown level warning, got %s", out)
	}
}

func TestDebugLevelSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "diligence-api", "info")
	logger.Debug("noise")

	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed at info level, got %s", buf.String())
	}
}
