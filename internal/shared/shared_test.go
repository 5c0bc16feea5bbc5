package shared

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestErrors(t *testing.T) {
	tc := []struct {
		name  string
		err   error
		fatal bool
	}{
		{name: "not authenticated", err: fmt.Errorf("%w: no session", ErrNotAuthenticated), fatal: true},
		{name: "unsupported", err: fmt.Errorf("%w: create playlist", ErrUnsupported), fatal: true},
		{name: "token expired", err: ErrTokenExpired, fatal: true},
		{name: "retrieval failed", err: fmt.Errorf("%w: playlist x", ErrRetrievalFailed), fatal: false},
		{name: "not found", err: ErrPlaylistNotFound, fatal: false},
		{name: "forbidden", err: fmt.Errorf("%w: add tracks", ErrForbidden), fatal: false},
		{name: "plain error", err: errors.New("boom"), fatal: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal() = %v, want %v", got, tt.fatal)
			}
			if got := IsSkippable(tt.err); got != !tt.fatal {
				t.Errorf("IsSkippable() = %v, want %v", got, !tt.fatal)
			}
		})
	}

	t.Run("nil is not skippable", func(t *testing.T) {
		if IsSkippable(nil) {
			t.Error("expected nil error to not be skippable")
		}
	})
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger mirrors output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tunetx.log")
		var mirror bytes.Buffer

		logger, closer, err := NewFileLogger(path, &mirror)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("transfer started", "playlist", "Road Trip")
		closer.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "transfer started") {
			t.Errorf("expected log file to contain entry, got %q", string(data))
		}
		if !strings.Contains(mirror.String(), "Road Trip") {
			t.Errorf("expected mirror to contain entry, got %q", mirror.String())
		}
	})
}

func TestGenerators(t *testing.T) {
	t.Run("GenerateID is unique", func(t *testing.T) {
		if GenerateID() == GenerateID() {
			t.Error("expected distinct ids")
		}
	})

	t.Run("GenerateState is url safe", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if state == "" || strings.ContainsAny(state, "+/=") {
			t.Errorf("unexpected state token %q", state)
		}
	})
}

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	t.Cleanup(func() { getRuntime = original })

	for goos, bin := range map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "rundll32"} {
		t.Run(goos, func(t *testing.T) {
			getRuntime = func() string { return goos }
			cmd, err := browserCommand("https://example.com")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Args[0] != bin {
				t.Errorf("expected %s, got %s", bin, cmd.Args[0])
			}
			if cmd.Args[len(cmd.Args)-1] != "https://example.com" {
				t.Errorf("url should be the last argument, got %v", cmd.Args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if _, err := browserCommand("https://example.com"); !errors.Is(err, ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}
	})
}
