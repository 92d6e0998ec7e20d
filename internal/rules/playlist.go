package rules

import (
	"errors"
	"fmt"

	"github.com/desertthunder/mpdgen/internal/library"
	"github.com/desertthunder/mpdgen/internal/player"
	"github.com/desertthunder/mpdgen/internal/shared"
)

// Generated is one computed playlist recorded by a Write.
type Generated struct {
	Name   string
	Tracks library.Tracks
}

// Playlists is the playlist binding: Read returns a stored playlist's
// current remote contents, Write records a computed value for the sync
// engine.
//
// A name freezes on its first Read, successful or not. Writes to a frozen
// name fail with a wrapped [shared.ErrConflict]: the old value has already
// been consulted, so redefining it would silently change the meaning of
// earlier computations. A name may be written any number of times before
// its first read; a read after a write returns the written value without
// consulting the server.
type Playlists struct {
	client player.Client
	cat    *library.Catalog
	acc    *accessor[library.Tracks]
	frozen map[string]struct{}

	// raw remote contents by name, memoized for the sync engine
	remote map[string][]string
	absent map[string]struct{}

	order     []string
	generated map[string]library.Tracks
}

// NewPlaylists creates the playlist binding for one cycle.
func NewPlaylists(client player.Client, cat *library.Catalog) *Playlists {
	p := &Playlists{
		client:    client,
		cat:       cat,
		frozen:    make(map[string]struct{}),
		remote:    make(map[string][]string),
		absent:    make(map[string]struct{}),
		generated: make(map[string]library.Tracks),
	}
	p.acc = newAccessor(p.fetch)
	return p
}

// Read returns the playlist value for name and freezes the name, regardless
// of whether the lookup succeeded. A name that was never written and has no
// remote playlist fails with a wrapped [shared.ErrNotFound].
func (p *Playlists) Read(name string) (library.Tracks, error) {
	defer func() { p.frozen[name] = struct{}{} }()
	return p.acc.Get(name)
}

// Write records v as the generated output for name and as its cached read
// value. Fails with a wrapped [shared.ErrConflict] once name is frozen; the
// cached value is left untouched by a failed write.
func (p *Playlists) Write(name string, v library.Tracks) error {
	if _, ok := p.frozen[name]; ok {
		return fmt.Errorf("%w: cannot redefine playlist %q after its contents have been queried", shared.ErrConflict, name)
	}
	if _, ok := p.generated[name]; !ok {
		p.order = append(p.order, name)
	}
	p.generated[name] = v
	p.acc.put(name, v)
	return nil
}

// Generated returns the computed playlists in first-write order.
func (p *Playlists) Generated() []Generated {
	out := make([]Generated, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, Generated{Name: name, Tracks: p.generated[name]})
	}
	return out
}

// RemoteContents returns the stored playlist's raw paths as the server
// reports them, memoized for the cycle. exists is false when the server has
// no playlist called name; that is not an error at this layer.
func (p *Playlists) RemoteContents(name string) (files []string, exists bool, err error) {
	if f, ok := p.remote[name]; ok {
		return f, true, nil
	}
	if _, ok := p.absent[name]; ok {
		return nil, false, nil
	}

	f, err := p.client.PlaylistContents(name)
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			p.absent[name] = struct{}{}
			return nil, false, nil
		}
		return nil, false, err
	}
	p.remote[name] = f
	return f, true, nil
}

// fetch resolves name from the server's stored playlist as an ordered
// sequence, dropping entries that no longer map to a catalog index.
func (p *Playlists) fetch(name string) (library.Tracks, error) {
	files, exists, err := p.RemoteContents(name)
	if err != nil {
		return library.Tracks{}, err
	}
	if !exists {
		return library.Tracks{}, fmt.Errorf("%w: no stored playlist %q and no generated value for it", shared.ErrNotFound, name)
	}

	seq := make([]int, 0, len(files))
	for _, f := range files {
		if i, ok := p.cat.IndexOf(f); ok {
			seq = append(seq, i)
		}
	}
	return library.FromSeq(seq), nil
}
