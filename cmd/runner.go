package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mpdgen/internal/formatter"
	"github.com/desertthunder/mpdgen/internal/player"
	"github.com/desertthunder/mpdgen/internal/rules"
	"github.com/desertthunder/mpdgen/internal/shared"
	"github.com/desertthunder/mpdgen/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for the CLI and drives the reconciliation
// loop: generate, sync, block until the library changes, repeat.
type Runner struct {
	config *shared.Config
	client player.Client
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Client player.Client
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration. A nil
// Client is dialed lazily when Reconcile starts.
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

	return &Runner{
		config: opts.Config,
		client: opts.Client,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// Reconcile is the root command action. It runs until the process is
// terminated; any error ends the loop and propagates.
func (r *Runner) Reconcile(ctx context.Context, cmd *cli.Command) error {
	scriptPath := cmd.Args().First()
	if scriptPath == "" {
		return fmt.Errorf("%w: path to the rules document", shared.ErrMissingArgument)
	}

	if r.client == nil {
		address := cmd.String("mpd")
		if address == "" {
			address = r.config.MPD.Address
		}
		client, err := player.Dial(address, r.config.MPD.Password)
		if err != nil {
			return err
		}
		defer client.Close()
		r.client = client
		r.logger.Info("connected", "mpd", address)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.cycle(ctx, scriptPath); err != nil {
			return err
		}
		if err := r.waitForUpdate(); err != nil {
			return err
		}
	}
}

// cycle runs one generate-and-sync pass with fresh per-cycle state. The
// rules document is re-read every pass so edits take effect on the next
// library update.
func (r *Runner) cycle(ctx context.Context, scriptPath string) error {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read rules document: %w", err)
	}
	script, err := rules.ParseScript(data)
	if err != nil {
		return err
	}

	cycle, err := rules.NewCycle(r.client, r.libraryFS(), r.logger)
	if err != nil {
		return err
	}
	r.logger.Info("starting cycle", "cycle", cycle.ID, "tracks", cycle.Catalog.Len(), "rules", len(script.Playlists))

	if err := cycle.Generate(script); err != nil {
		return err
	}

	engine := tasks.NewEngine(r.client, r.config.Sync.RateLimit, r.logger)
	result, err := engine.Sync(ctx, cycle)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(r.output, formatter.RenderResult(result)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// libraryFS resolves the music root at most once per cycle: the configured
// override wins, otherwise the server is asked for its music_directory.
func (r *Runner) libraryFS() func() (fs.FS, error) {
	return sync.OnceValues(func() (fs.FS, error) {
		root := r.config.Library.Root
		if root == "" {
			var err error
			root, err = r.client.MusicDirectory()
			if err != nil {
				return nil, err
			}
		}
		return os.DirFS(root), nil
	})
}

// waitForUpdate blocks on the library-update idle event, then keeps
// re-blocking while a database scan is still in progress, so the next cycle
// sees the fully updated library.
func (r *Runner) waitForUpdate() error {
	for {
		if err := r.client.WaitLibraryUpdate(); err != nil {
			return err
		}
		r.logger.Info("library update triggered")

		status, err := r.client.Status()
		if err != nil {
			return err
		}
		if !status.Updating {
			return nil
		}
	}
}
