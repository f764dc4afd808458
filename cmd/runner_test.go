package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	tu "github.com/desertthunder/tunesync/internal/testing"
	"github.com/desertthunder/tunesync/internal/ui"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			spotify := tu.NewMockService("Spotify")
			releases := tu.NewMockReleaseCatalog()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Services:   map[string]services.Service{"spotify": spotify},
				Releases:   releases,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.services["spotify"] != spotify {
				t.Error("expected spotify to be set")
			}
			if runner.releases != releases {
				t.Error("expected release catalog to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("copies the service map", func(t *testing.T) {
			svcs := map[string]services.Service{"spotify": tu.NewMockService("Spotify")}
			runner := NewRunner(RunnerOpts{Services: svcs})
			runner.services["ytmusic"] = tu.NewMockService("YouTube Music")

			if len(svcs) != 1 {
				t.Errorf("expected caller map to be untouched, got %d entries", len(svcs))
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "playlists", "reconcile", "dedupe", "tags", "history"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("Load", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		conf := "[sync]\nmax_retries = 7\n\n[log]\nlevel = \"debug\"\n"
		if err := os.WriteFile(path, []byte(conf), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner, _ := newTestRunner(t, tu.NewMockService("Spotify"))
		app := &cli.Command{
			Name: "tunesync",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "config", Value: "config.toml"},
				&cli.StringFlag{Name: "env-file", Value: filepath.Join(dir, ".env")},
			},
			Before:   runner.Load,
			Commands: runner.register(),
		}

		if err := app.Run(context.Background(), []string{"tunesync", "--config", path, "history"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.configPath != path {
			t.Errorf("expected config path %s, got %s", path, runner.configPath)
		}
		if runner.config.Sync.MaxRetries != 7 {
			t.Errorf("expected max retries 7, got %d", runner.config.Sync.MaxRetries)
		}
		if runner.config.Sync.ChunkSize != 100 {
			t.Errorf("expected default chunk size to survive, got %d", runner.config.Sync.ChunkSize)
		}
	})
}

func TestRunnerServices(t *testing.T) {
	t.Run("serviceKey", func(t *testing.T) {
		tc := []struct {
			input    string
			expected string
		}{
			{"spotify", "spotify"},
			{"Spotify", "spotify"},
			{"ytmusic", "ytmusic"},
			{"youtube", "ytmusic"},
			{" YT ", "ytmusic"},
			{"deezer", "deezer"},
		}

		for _, c := range tc {
			if got := serviceKey(c.input); got != c.expected {
				t.Errorf("serviceKey(%q): expected %q, got %q", c.input, c.expected, got)
			}
		}
	})

	t.Run("returns injected services", func(t *testing.T) {
		mock := tu.NewMockService("Spotify")
		runner := NewRunner(RunnerOpts{Services: map[string]services.Service{"spotify": mock}})

		svc, err := runner.service(context.Background(), "Spotify")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc != mock {
			t.Error("expected injected service")
		}
	})

	t.Run("builds and caches YouTube Music from config", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

		first, err := runner.service(context.Background(), "ytmusic")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := first.(*services.YouTubeService); !ok {
			t.Errorf("expected *services.YouTubeService, got %T", first)
		}

		second, _ := runner.service(context.Background(), "youtube")
		if first != second {
			t.Error("expected the service to be cached")
		}
	})

	t.Run("requires YouTube Music settings", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.YouTube.ProxyURL = ""
		runner := NewRunner(RunnerOpts{Config: config})

		_, err := runner.service(context.Background(), "ytmusic")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("requires a saved Spotify token", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.TokenPath = filepath.Join(t.TempDir(), "missing.json")
		runner := NewRunner(RunnerOpts{Config: config})

		_, err := runner.service(context.Background(), "spotify")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("rejects unknown services", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		_, err := runner.service(context.Background(), "deezer")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("release catalog requires a Discogs token", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		_, err := runner.releaseCatalog()
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("release catalog is built from config", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Discogs.Token = "token"
		runner := NewRunner(RunnerOpts{Config: config})

		catalog, err := runner.releaseCatalog()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := catalog.(*services.DiscogsService); !ok {
			t.Errorf("expected *services.DiscogsService, got %T", catalog)
		}
	})
}

func TestConfirmer(t *testing.T) {
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

	t.Run("auto-first needs no confirmer", func(t *testing.T) {
		c, err := runner.confirmer("tui", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c != nil {
			t.Errorf("expected nil confirmer, got %T", c)
		}
	})

	t.Run("tui uses the picker", func(t *testing.T) {
		c, err := runner.confirmer("tui", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := c.(*ui.Picker); !ok {
			t.Errorf("expected *ui.Picker, got %T", c)
		}
	})

	t.Run("plain uses the survey prompt", func(t *testing.T) {
		c, err := runner.confirmer("plain", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c == nil {
			t.Error("expected a confirmer")
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		_, err := runner.confirmer("gui", false)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("plain prompt parses the answer", func(t *testing.T) {
		output := &bytes.Buffer{}
		r := NewRunner(RunnerOpts{Output: output})
		var asked string
		r.ask = func(p survey.Prompt, response any, opts ...survey.AskOpt) error {
			asked = p.(*survey.Input).Message
			*response.(*string) = "2"
			return nil
		}

		choice, err := r.promptPlain(context.Background(), query("Miles Davis", "So What"), candidates("a", "b", "c"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if choice.Index != 1 {
			t.Errorf("expected index 1, got %d", choice.Index)
		}
		if asked == "" {
			t.Error("expected the prompt to be shown")
		}
		if !strings.Contains(output.String(), "2. Artist b - Title b") {
			t.Errorf("expected candidates to be listed, got %q", output.String())
		}
	})

	t.Run("plain prompt maps interrupts to cancellation", func(t *testing.T) {
		r := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		r.ask = func(p survey.Prompt, response any, opts ...survey.AskOpt) error {
			return terminal.InterruptErr
		}

		_, err := r.promptPlain(context.Background(), query("Miles Davis", "So What"), candidates("a"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
