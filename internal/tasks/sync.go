// package tasks implements playlist synchronization against the MPD server.
//
// The core abstraction is Engine, which diffs each generated playlist
// against the server's stored state and issues minimal batched updates: an
// unchanged playlist costs no remote mutation at all, and every mutation for
// one playlist travels in a single batch so an observer never sees a
// half-written playlist.
package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mpdgen/internal/library"
	"github.com/desertthunder/mpdgen/internal/player"
	"github.com/desertthunder/mpdgen/internal/rules"
	"golang.org/x/time/rate"
)

// Action is the decision taken for one generated playlist.
type Action string

const (
	ActionNone    Action = "unchanged"
	ActionCreate  Action = "create-empty"
	ActionRewrite Action = "rewrite"
)

// PlaylistResult records the decision for one generated playlist. Every
// playlist gets an entry; no mutation happens silently.
type PlaylistResult struct {
	Name   string
	Action Action
	Tracks int
}

// Result summarizes one cycle's synchronization.
type Result struct {
	CycleID   string
	Playlists []PlaylistResult
	Mutations int // mutating batches issued
}

// Engine reconciles generated playlists with the server's stored state.
type Engine struct {
	client  player.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewEngine creates an Engine. rateLimit caps mutating batches per second
// and falls back to 10 when non-positive.
func NewEngine(client player.Client, rateLimit float64, logger *log.Logger) *Engine {
	if rateLimit <= 0 {
		rateLimit = 10.0
	}
	return &Engine{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		logger:  logger,
	}
}

// Sync diffs every playlist generated in the cycle against the server, in
// generation order. Remote contents already read during generation are
// reused instead of fetched again. Running Sync twice with no intervening
// remote or rule changes issues zero mutations the second time.
func (e *Engine) Sync(ctx context.Context, cycle *rules.Cycle) (*Result, error) {
	result := &Result{CycleID: cycle.ID}

	for _, gen := range cycle.Playlists.Generated() {
		want, err := e.normalize(cycle.Catalog, gen.Tracks)
		if err != nil {
			return nil, fmt.Errorf("playlist %q: %w", gen.Name, err)
		}

		have, exists, err := cycle.Playlists.RemoteContents(gen.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect playlist %q: %w", gen.Name, err)
		}

		switch {
		case !exists && len(want) == 0:
			// explicit creation keeps the generated playlist discoverable
			e.logger.Info("creating empty playlist", "playlist", gen.Name)
			if err := e.sendCreate(ctx, gen.Name); err != nil {
				return nil, err
			}
			result.Mutations++
			result.Playlists = append(result.Playlists, PlaylistResult{Name: gen.Name, Action: ActionCreate})

		case !slices.Equal(want, have):
			e.logger.Info("rewriting playlist", "playlist", gen.Name, "tracks", len(want), "existed", exists)
			if err := e.sendRewrite(ctx, gen.Name, want, exists); err != nil {
				return nil, err
			}
			result.Mutations++
			result.Playlists = append(result.Playlists, PlaylistResult{Name: gen.Name, Action: ActionRewrite, Tracks: len(want)})

		default:
			e.logger.Info("no change", "playlist", gen.Name, "tracks", len(want))
			result.Playlists = append(result.Playlists, PlaylistResult{Name: gen.Name, Action: ActionNone, Tracks: len(want)})
		}
	}

	return result, nil
}

// normalize turns a playlist value into the ordered path sequence to store:
// unordered sets sort by track index first, explicit sequences keep their
// order.
func (e *Engine) normalize(cat *library.Catalog, t library.Tracks) ([]string, error) {
	seq := t.Sequence()
	paths := make([]string, 0, len(seq))
	for _, i := range seq {
		p, ok := cat.PathOf(i)
		if !ok {
			return nil, fmt.Errorf("track index %d is outside the catalog", i)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (e *Engine) sendCreate(ctx context.Context, name string) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	batch := e.client.Begin()
	batch.Create(name)
	if err := batch.End(); err != nil {
		return fmt.Errorf("failed to create playlist %q: %w", name, err)
	}
	return nil
}

func (e *Engine) sendRewrite(ctx context.Context, name string, paths []string, exists bool) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	batch := e.client.Begin()
	if exists {
		batch.Clear(name)
	}
	for _, p := range paths {
		batch.Add(name, p)
	}
	if err := batch.End(); err != nil {
		return fmt.Errorf("failed to rewrite playlist %q: %w", name, err)
	}
	return nil
}
