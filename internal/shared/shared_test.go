package shared

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{name: "basic normalization", title: "Song Title", artist: "Artist Name", want: "song title|artist name"},
		{name: "extra whitespace", title: "  Song   Title  ", artist: "  Artist   Name  ", want: "song title|artist name"},
		{name: "mixed case", title: "SoNg TiTlE", artist: "ArTiSt NaMe", want: "song title|artist name"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTrackKey(tt.title, tt.artist); got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		SetLogLevel(logger, "warn")
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		SetLogLevel(logger, "nonsense")
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("unknown level should be ignored, got %v", logger.GetLevel())
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "run", "abc")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "run=abc") {
			t.Errorf("expected child logger fields in output, got %q", buf.String())
		}
	})
}

func TestErrors(t *testing.T) {
	t.Run("RateLimitError matches sentinel", func(t *testing.T) {
		err := fmt.Errorf("add failed: %w", &RateLimitError{Service: "Spotify"})
		if !errors.Is(err, ErrRateLimited) {
			t.Error("expected wrapped RateLimitError to match ErrRateLimited")
		}
		if !IsRateLimited(err) {
			t.Error("expected IsRateLimited to be true")
		}
	})

	t.Run("HTTPStatusError unwraps by status", func(t *testing.T) {
		tc := []struct {
			status int
			want   error
		}{
			{status: 401, want: ErrNotAuthenticated},
			{status: 404, want: ErrPlaylistNotFound},
			{status: 503, want: ErrServiceUnavailable},
			{status: 500, want: ErrAPIRequest},
		}
		for _, tt := range tc {
			err := &HTTPStatusError{Service: "Discogs", StatusCode: tt.status}
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d: expected %v", tt.status, tt.want)
			}
			if IsRateLimited(err) {
				t.Errorf("status %d should not be a rate limit", tt.status)
			}
		}
	})

	t.Run("IsRateLimited nil", func(t *testing.T) {
		if IsRateLimited(nil) {
			t.Error("nil is not a rate limit")
		}
	})
}

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	t.Cleanup(func() { getRuntime = original })

	tc := []struct {
		goos string
		want string
		err  bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
		{goos: "plan9", err: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }
			cmd, err := browserCommand("https://example.com")
			if tt.err {
				if err == nil {
					t.Fatal("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Args[0] != tt.want {
				t.Errorf("expected %s, got %s", tt.want, cmd.Args[0])
			}
		})
	}
}
