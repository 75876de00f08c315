package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
	"github.com/desertthunder/spt/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Config, client and cache are resolved by [Runner.Load] before any action runs; the engine
// is built on first use by [Runner.ready].
type Runner struct {
	config     *shared.Config
	configPath string
	client     tasks.Client
	spotify    *services.SpotifyService
	tracks     *repositories.TrackRepository
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.Engine
	device     string

	mu sync.Mutex
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     tasks.Client
	Tracks     *repositories.TrackRepository
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		tracks:     opts.Tracks,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playbackCommand, playCommand, listCommand, searchCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Load resolves the configuration, logger, Spotify client and track cache from the global flags.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.configPath == "" {
		path, err := shared.DefaultConfigPath()
		if err != nil {
			return ctx, err
		}
		r.configPath = path
	}

	if r.config == nil {
		config, err := shared.LoadConfig(r.configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
			config = shared.DefaultConfig()
		case err != nil:
			return ctx, err
		}
		r.config = config
	}

	if err := r.configureLogger(cmd.Bool("verbose")); err != nil {
		return ctx, err
	}
	r.device = cmd.String("device")

	if r.client == nil {
		r.connectSpotify()
	}
	if r.tracks == nil && r.config.Player.CacheTracks {
		r.openCache()
	}
	return ctx, nil
}

func (r *Runner) configureLogger(verbose bool) error {
	if r.config.Log.File != "" {
		logger, err := shared.NewFileLogger(r.config.Log.File)
		if err != nil {
			return err
		}
		r.logger = logger
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return nil
}

// connectSpotify builds the Web API client when credentials are configured. Commands that need
// it fail later through [Runner.ready].
func (r *Runner) connectSpotify() {
	creds := r.config.Credentials.Spotify
	svc, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		r.logger.Debug("spotify client unavailable", "error", err)
		return
	}

	svc.SetLogger(shared.WithLogger(r.logger, "service", svc.Name()))
	svc.SetTokenRefreshCallback(r.saveToken)
	if token := creds.Token(); token != nil {
		svc.SetToken(token)
	}
	r.spotify = svc
	r.client = svc
}

func (r *Runner) openCache() {
	db, err := shared.OpenCache(r.config)
	if err != nil {
		r.logger.Warn("track cache disabled", "error", err)
		return
	}
	r.db = db
	r.tracks = repositories.NewTrackRepository(db)
}

// saveToken persists tokens issued by the refresh flow.
func (r *Runner) saveToken(token *oauth2.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		r.logger.Warn("ignoring refreshed token", "error", err)
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "error", err)
		return
	}
	r.logger.Debug("refreshed token saved", "path", r.configPath)
}

// Close releases the cache database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// ready returns the engine, building it on first use and applying --device. updates is only
// used by the first call.
func (r *Runner) ready(ctx context.Context, updates chan<- tasks.Update) (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	if r.client == nil {
		return nil, fmt.Errorf("%w: set credentials in %s and run 'spt auth'", shared.ErrNotAuthenticated, r.configPath)
	}
	if r.spotify != nil && r.spotify.Token() == nil {
		return nil, fmt.Errorf("%w: run 'spt auth' first", shared.ErrNotAuthenticated)
	}

	config := r.currentConfig()
	store := state.NewStore(state.SearchLimits{Small: config.Search.SmallLimit, Large: config.Search.LargeLimit})

	opts := tasks.EngineOpts{
		Logger:    shared.WithLogger(r.logger, "component", "engine"),
		SeekDelay: config.Player.SeekDelay(),
		Updates:   updates,
	}
	if r.tracks != nil {
		opts.Cache = repositories.NewTrackCacheAdapter(r.tracks)
	}
	engine := tasks.NewEngine(r.client, store, opts)
	if id := config.Player.DeviceID; id != "" {
		if err := engine.Execute(ctx, tasks.SelectDevice{ID: id}); err != nil {
			return nil, err
		}
	}
	r.engine = engine

	if r.device != "" {
		if err := r.selectDevice(ctx, r.device); err != nil {
			return nil, err
		}
	}
	return r.engine, nil
}

func (r *Runner) currentConfig() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

// execute runs every intent in order and stops at the first failure.
func (r *Runner) execute(ctx context.Context, intents ...tasks.Intent) (*tasks.Engine, error) {
	engine, err := r.ready(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, in := range intents {
		if err := engine.Execute(ctx, in); err != nil {
			return engine, err
		}
	}
	return engine, nil
}

// persistDevice records id as the default device in the config file.
func (r *Runner) persistDevice(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.config.Player.DeviceID = id
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save device", "error", err)
	}
}

func (r *Runner) icons() formatter.Icons {
	return formatter.IconsFrom(r.currentConfig().Behavior)
}

func (r *Runner) writeLines(template string, entries [][]formatter.Field) error {
	return formatter.WriteLines(r.output, template, entries, r.icons())
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}
