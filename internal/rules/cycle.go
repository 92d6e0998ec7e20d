package rules

import (
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mpdgen/internal/library"
	"github.com/desertthunder/mpdgen/internal/player"
	"github.com/desertthunder/mpdgen/internal/shared"
)

// Cycle owns every piece of state scoped to one generate-and-sync pass: the
// library catalog, the three accessors and their caches, and the frozen-key
// set. A Cycle is built fresh for every pass and discarded afterwards; rule
// files and genre tags may have changed as part of the library update that
// triggered the pass, so nothing here may leak into the next one.
type Cycle struct {
	ID        string
	Catalog   *library.Catalog
	Genres    *Genres
	Labels    *Labels
	Playlists *Playlists

	logger *log.Logger
}

// NewCycle snapshots the music database into a fresh catalog and wires the
// accessors around it. libraryFS is called at most once, on the first label
// lookup.
func NewCycle(client player.Client, libraryFS func() (fs.FS, error), logger *log.Logger) (*Cycle, error) {
	tracks, err := client.ListTracks()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate library: %w", err)
	}
	cat := library.NewCatalog(tracks)
	id := shared.GenerateID()

	return &Cycle{
		ID:        id,
		Catalog:   cat,
		Genres:    NewGenres(client, cat),
		Labels:    NewLabels(libraryFS, cat),
		Playlists: NewPlaylists(client, cat),
		logger:    shared.WithLogger(logger, "cycle", id),
	}, nil
}

// Generate evaluates every rule in the script in document order and records
// the results through the playlist binding. The script's only observable
// effect is what ends up in Playlists.Generated.
func (c *Cycle) Generate(script *Script) error {
	for i := range script.Playlists {
		rule := &script.Playlists[i]
		tracks, err := c.eval(rule.Tracks)
		if err != nil {
			return fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		if err := c.Playlists.Write(rule.Name, tracks); err != nil {
			return fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		c.logger.Debug("generated playlist", "name", rule.Name, "tracks", tracks.Len())
	}
	return nil
}

func (c *Cycle) eval(e Expr) (library.Tracks, error) {
	switch {
	case e.AllTracks:
		return library.FromSet(c.Catalog.All()), nil

	case e.Genre != "":
		s, err := c.Genres.Get(e.Genre)
		if err != nil {
			return library.Tracks{}, err
		}
		return library.FromSet(s), nil

	case e.Label != "":
		s, err := c.Labels.Get(e.Label)
		if err != nil {
			return library.Tracks{}, err
		}
		return library.FromSet(s), nil

	case e.Playlist != "":
		return c.Playlists.Read(e.Playlist)

	case len(e.Union) > 0:
		acc := library.NewSet()
		for _, child := range e.Union {
			v, err := c.eval(child)
			if err != nil {
				return library.Tracks{}, err
			}
			acc.AddAll(v.AsSet())
		}
		return library.FromSet(acc), nil

	case len(e.Intersect) > 0:
		first, err := c.eval(e.Intersect[0])
		if err != nil {
			return library.Tracks{}, err
		}
		acc := first.AsSet()
		for _, child := range e.Intersect[1:] {
			v, err := c.eval(child)
			if err != nil {
				return library.Tracks{}, err
			}
			acc.Retain(v.AsSet())
		}
		return library.FromSet(acc), nil

	case len(e.Difference) > 0:
		first, err := c.eval(e.Difference[0])
		if err != nil {
			return library.Tracks{}, err
		}
		acc := first.AsSet()
		for _, child := range e.Difference[1:] {
			v, err := c.eval(child)
			if err != nil {
				return library.Tracks{}, err
			}
			acc.RemoveAll(v.AsSet())
		}
		return library.FromSet(acc), nil
	}

	return library.Tracks{}, fmt.Errorf("%w: empty expression", shared.ErrInvalidScript)
}
