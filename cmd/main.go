package main

import (
	"context"
	"os"

	"github.com/desertthunder/mpdgen/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("mpdgen.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("mpdgen.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("ignoring unreadable mpdgen.toml", "err", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:      "mpdgen",
		Usage:     "Generate MPD playlists from declarative rules and keep them in sync",
		Version:   "0.1.0",
		ArgsUsage: "<rules-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mpd",
				Usage: "MPD connection target (host:port or unix socket path)",
			},
		},
		Action: runner.Reconcile,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
