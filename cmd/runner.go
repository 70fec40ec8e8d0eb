package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodset/internal/services"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configLoaded bool
	catalog      services.Catalog
	logger       *log.Logger
	output       io.Writer
	isTerminal   func() bool
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config path before any command runs; a nil Catalog is built
// from the configured credentials on first use.
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    services.Catalog
	Logger     *log.Logger
	Output     io.Writer
	IsTerminal func() bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loaded := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.IsTerminal == nil {
		opts.IsTerminal = stdoutIsTerminal
	}

	return &Runner{
		config:       opts.Config,
		configLoaded: loaded,
		catalog:      opts.Catalog,
		logger:       opts.Logger,
		output:       opts.Output,
		isTerminal:   opts.IsTerminal,
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		collectCommand, searchCommand, keywordsCommand, runsCommand, setupCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config file (when one was not injected), overlays environment credentials, and applies
// the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if !r.configLoaded {
		config, err := loadConfig(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configLoaded = true
	}
	shared.ApplyEnv(r.config)

	level := r.config.Logging.Level
	if flag := cmd.String("log-level"); flag != "" {
		level = flag
	}
	if level != "" {
		ll, err := shared.ParseLevel(level)
		if err != nil {
			return ctx, err
		}
		shared.SetLogLevel(r.logger, ll)
	}

	return ctx, r.config.Validate()
}

// loadConfig reads path when it exists and falls back to the embedded defaults otherwise.
func loadConfig(path string) (*shared.Config, error) {
	if path == "" {
		return shared.DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return shared.DefaultConfig(), nil
	}
	return shared.LoadConfig(path)
}

// catalogService returns the injected catalog or builds a Spotify client from config.
func (r *Runner) catalogService() (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	if err := r.config.RequireCredentials(); err != nil {
		return nil, err
	}

	c := r.config.Catalog
	svc, err := services.NewSpotifyService(services.SpotifyOpts{
		ClientID:     r.config.Credentials.Spotify.ClientID,
		ClientSecret: r.config.Credentials.Spotify.ClientSecret,
		BaseURL:      c.BaseURL,
		TokenURL:     c.TokenURL,
		Market:       c.Market,
		RateLimit:    c.RateLimit,
		MaxRetries:   c.MaxRetries,
		Timeout:      c.RequestTimeout(),
		Logger:       r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.catalog = svc
	return svc, nil
}

// openDatabase opens the configured database and brings its schema up to date.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// SetLogger swaps the logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
