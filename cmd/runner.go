package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/urfave/cli/v3"
	"github.com/zetachan/encore/internal/auth"
	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/checkpoint"
	"github.com/zetachan/encore/internal/setlist"
	"github.com/zetachan/encore/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	input  io.Reader

	db   *sql.DB
	lock *flock.Flock
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		input:  opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, runCommand, resumeCommand, reportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the Runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// openStore opens the checkpoint database, applying migrations on the
// way, and returns a store over it. The handle is cached per process.
func (r *Runner) openStore() (*checkpoint.SQLiteStore, error) {
	if r.db == nil {
		if err := r.config.ResolvePaths(); err != nil {
			return nil, err
		}
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		r.db = db
	}
	return checkpoint.NewSQLiteStore(r.db), nil
}

// acquireLock takes the single-run file lock. Two concurrent runs would
// race on the same checkpoint row, so the second invocation fails fast.
func (r *Runner) acquireLock() error {
	if err := r.config.ResolvePaths(); err != nil {
		return err
	}
	r.lock = flock.New(r.config.Database.Path + ".lock")
	locked, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return shared.ErrRunInProgress
	}
	return nil
}

func (r *Runner) releaseLock() {
	if r.lock != nil {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warnf("failed to release run lock: %v", err)
		}
		r.lock = nil
	}
}

// newAuthenticator builds the OAuth helper from configured credentials.
func (r *Runner) newAuthenticator() (*auth.Authenticator, error) {
	if err := r.config.ResolvePaths(); err != nil {
		return nil, err
	}
	spotify := r.config.Credentials.Spotify
	return auth.NewAuthenticator(spotify.ClientID, spotify.ClientSecret, spotify.RedirectURI, spotify.TokenPath, r.logger)
}

// newCatalog returns a Spotify client authorized with the cached token.
func (r *Runner) newCatalog(ctx context.Context) (catalog.Service, error) {
	authenticator, err := r.newAuthenticator()
	if err != nil {
		return nil, err
	}
	httpClient, err := authenticator.Client(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewSpotifyClient(httpClient, r.config.Search.RequestsPerSecond, r.logger), nil
}

// loadSetlist fetches and parses the source, which is either a
// setlist.fm URL or a path to a local JSON file.
func (r *Runner) loadSetlist(ctx context.Context, source string) (*setlist.Setlist, error) {
	if setlist.IsURL(source) {
		scraper := setlist.NewScraper(time.Duration(r.config.Scraper.TimeoutSeconds)*time.Second, r.config.Scraper.UserAgent)
		return scraper.Fetch(ctx, source)
	}
	return setlist.LoadFile(source)
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
