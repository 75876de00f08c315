package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected log.Level
		wantErr  bool
	}{
		{name: "empty defaults to info", input: "", expected: log.InfoLevel},
		{name: "debug", input: "debug", expected: log.DebugLevel},
		{name: "mixed case with spaces", input: "  WARN ", expected: log.WarnLevel},
		{name: "error", input: "error", expected: log.ErrorLevel},
		{name: "unknown", input: "chatty", expected: log.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "intent", "FetchPlayback")
		logger.Info("dispatched")

		if !strings.Contains(buf.String(), "intent=FetchPlayback") {
			t.Errorf("expected intent field in output, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state", "spt.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("hello")
	})
}

func TestGenerators(t *testing.T) {
	t.Run("GenerateID is unique", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b {
			t.Errorf("expected distinct ids, got %s twice", a)
		}
		if len(a) != 36 {
			t.Errorf("expected uuid string length 36, got %d", len(a))
		}
	})

	t.Run("GenerateState is url safe", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.ContainsAny(state, "+/=") {
			t.Errorf("expected url-safe state, got %s", state)
		}
	})
}

func TestBrowserCommand(t *testing.T) {
	t.Run("linux uses xdg-open", func(t *testing.T) {
		cmd, err := browserCommand("linux", "https://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(cmd.Path) != "xdg-open" && cmd.Args[0] != "xdg-open" {
			t.Errorf("expected xdg-open, got %v", cmd.Args)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		if _, err := browserCommand("plan9", "https://example.com"); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}
