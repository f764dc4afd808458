package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/repositories"
	"github.com/desertthunder/tunesync/internal/retry"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tasks"
	"github.com/desertthunder/tunesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configPath   string
	httpClient   *http.Client
	logger       *log.Logger
	input        io.Reader
	output       io.Writer
	services     map[string]services.Service
	releases     services.ReleaseCatalog
	db           *sql.DB
	sleeper      retry.Sleeper
	ask          askFunc
	progressView bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Services, Releases and DB replace the ones a command would otherwise build from the config.
type RunnerOpts struct {
	Config       *shared.Config
	ConfigPath   string
	HTTPClient   *http.Client
	Logger       *log.Logger
	Input        io.Reader
	Output       io.Writer
	Services     map[string]services.Service
	Releases     services.ReleaseCatalog
	DB           *sql.DB
	Sleeper      retry.Sleeper
	ProgressView bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	svcs := make(map[string]services.Service, len(opts.Services))
	for name, svc := range opts.Services {
		svcs[name] = svc
	}

	return &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		input:        opts.Input,
		output:       opts.Output,
		services:     svcs,
		releases:     opts.Releases,
		db:           opts.DB,
		sleeper:      opts.Sleeper,
		ask:          surveyAsk,
		progressView: opts.ProgressView,
	}
}

// Load resolves the configuration named by the global flags before any command runs.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config, err := shared.ResolveConfig(path, cmd.String("env-file"))
	if err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	shared.SetLogLevel(r.logger, config.Log.Level)
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, reconcileCommand, dedupeCommand, tagsCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// service returns the named streaming service, building it from the config on first use.
func (r *Runner) service(ctx context.Context, name string) (services.Service, error) {
	key := serviceKey(name)
	if svc, ok := r.services[key]; ok {
		return svc, nil
	}

	var svc services.Service
	switch key {
	case "spotify":
		if err := r.config.RequireSpotify(); err != nil {
			return nil, err
		}
		cfg := r.config.Credentials.Spotify
		tok, err := services.LoadToken(cfg.TokenPath)
		if err != nil {
			return nil, err
		}
		svc = services.NewSpotifyFromToken(ctx, services.NewSpotifyAuthenticator(cfg), tok).
			WithSearchLimit(r.config.Sync.SearchLimit)
	case "ytmusic":
		if err := r.config.RequireYouTube(); err != nil {
			return nil, err
		}
		cfg := r.config.Credentials.YouTube
		svc = services.NewYouTubeService(cfg.ProxyURL, cfg.HeadersPath, r.httpClient).
			WithSearchLimit(r.config.Sync.SearchLimit)
	default:
		return nil, fmt.Errorf("%w: unknown service %q (want spotify or ytmusic)", shared.ErrInvalidArgument, name)
	}

	r.services[key] = svc
	return svc, nil
}

// serviceKey maps user spellings of a service to its registry key.
func serviceKey(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spotify", "spot":
		return "spotify"
	case "ytmusic", "youtube", "yt", "youtube-music":
		return "ytmusic"
	default:
		return strings.ToLower(name)
	}
}

// releaseCatalog returns the Discogs catalog unless one was injected.
func (r *Runner) releaseCatalog() (services.ReleaseCatalog, error) {
	if r.releases != nil {
		return r.releases, nil
	}
	if err := r.config.RequireDiscogs(); err != nil {
		return nil, err
	}
	r.releases = services.NewDiscogsService(r.config.Credentials.Discogs, r.httpClient)
	return r.releases, nil
}

// database returns the run history database and a function that releases it.
func (r *Runner) database() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// reconciler builds a [tasks.Reconciler] with the configured retry and pacing settings.
//
// Run history is recorded when the database opens; otherwise the run proceeds without it.
func (r *Runner) reconciler(svc services.Service, opts ...tasks.Option) (*tasks.Reconciler, func()) {
	base := []tasks.Option{tasks.WithLogger(r.logger), tasks.WithSyncConfig(r.config.Sync)}
	if r.sleeper != nil {
		base = append(base, tasks.WithSleeper(r.sleeper))
	}

	release := func() {}
	if db, closeDB, err := r.database(); err != nil {
		r.logger.Warn("run history disabled", "error", err)
	} else {
		base = append(base, tasks.WithRecorder(repositories.NewRunRecorder(db)))
		release = closeDB
	}

	return tasks.NewReconciler(svc, append(base, opts...)...), release
}

// run executes work, behind the progress view when enabled and interactive is set.
//
// Without the view, updates are logged at debug level.
func (r *Runner) run(ctx context.Context, title string, interactive bool, work ui.Work) error {
	if r.progressView && interactive {
		return ui.RunWithProgress(ctx, title, work)
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	err := work(progress)
	close(progress)
	<-done
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
