package rules

import (
	"github.com/desertthunder/mpdgen/internal/library"
	"github.com/desertthunder/mpdgen/internal/player"
)

// Genres resolves a genre name to the set of track indices whose genre tag
// exactly equals it. An unmatched genre resolves to the empty set, never an
// error; database entries that no longer map to a catalog index are dropped.
type Genres struct {
	acc *accessor[library.Set]
}

// NewGenres creates the genre binding for one cycle.
func NewGenres(client player.Client, cat *library.Catalog) *Genres {
	return &Genres{acc: newAccessor(func(name string) (library.Set, error) {
		files, err := client.FindGenre(name)
		if err != nil {
			return nil, err
		}
		set := library.NewSet()
		for _, f := range files {
			if i, ok := cat.IndexOf(f); ok {
				set.Add(i)
			}
		}
		return set, nil
	})}
}

// Get resolves and memoizes the track set for a genre name.
func (g *Genres) Get(name string) (library.Set, error) {
	return g.acc.Get(name)
}
