// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"

	"github.com/desertthunder/mpdgen/internal/player"
	"github.com/desertthunder/mpdgen/internal/shared"
)

// FakePlayer is a test double for [player.Client]. Stored playlists live in
// the Stored map; batches record their commands in Ops and apply them to
// Stored on End, so consecutive cycles observe each other's writes.
type FakePlayer struct {
	TracksList []string
	GenreIndex map[string][]string
	Stored     map[string][]string
	Root       string

	ListErr error
	FindErr error
	RootErr error
	ReadErr map[string]error // non-not-found error injection per playlist

	FindCalls     map[string]int
	ContentsCalls map[string]int

	Ops     []string // flattened mutating commands in applied order
	Batches int      // mutating batches that reached End

	UpdatesLeft int // WaitLibraryUpdate calls to allow before failing
	StatusSeq   []player.Status
}

// NewFakePlayer returns a FakePlayer with all maps initialized.
func NewFakePlayer() *FakePlayer {
	return &FakePlayer{
		GenreIndex:    make(map[string][]string),
		Stored:        make(map[string][]string),
		ReadErr:       make(map[string]error),
		FindCalls:     make(map[string]int),
		ContentsCalls: make(map[string]int),
	}
}

func (f *FakePlayer) ListTracks() ([]string, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]string(nil), f.TracksList...), nil
}

func (f *FakePlayer) FindGenre(genre string) ([]string, error) {
	f.FindCalls[genre]++
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	return append([]string(nil), f.GenreIndex[genre]...), nil
}

func (f *FakePlayer) MusicDirectory() (string, error) {
	if f.RootErr != nil {
		return "", f.RootErr
	}
	return f.Root, nil
}

func (f *FakePlayer) PlaylistContents(name string) ([]string, error) {
	f.ContentsCalls[name]++
	if err := f.ReadErr[name]; err != nil {
		return nil, err
	}
	files, ok := f.Stored[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
	}
	return append([]string(nil), files...), nil
}

func (f *FakePlayer) Begin() player.Batch {
	return &FakeBatch{player: f}
}

func (f *FakePlayer) Status() (player.Status, error) {
	if len(f.StatusSeq) == 0 {
		return player.Status{}, nil
	}
	st := f.StatusSeq[0]
	f.StatusSeq = f.StatusSeq[1:]
	return st, nil
}

func (f *FakePlayer) WaitLibraryUpdate() error {
	if f.UpdatesLeft > 0 {
		f.UpdatesLeft--
		return nil
	}
	return errors.New("watcher closed")
}

func (f *FakePlayer) Close() error { return nil }

type fakeOp struct {
	verb string
	name string
	uri  string
}

// FakeBatch records mutating commands and applies them to the FakePlayer's
// stored playlists on End.
type FakeBatch struct {
	player *FakePlayer
	ops    []fakeOp
}

func (b *FakeBatch) Create(name string) {
	b.ops = append(b.ops, fakeOp{verb: "create", name: name})
}

func (b *FakeBatch) Clear(name string) {
	b.ops = append(b.ops, fakeOp{verb: "clear", name: name})
}

func (b *FakeBatch) Add(name, uri string) {
	b.ops = append(b.ops, fakeOp{verb: "add", name: name, uri: uri})
}

func (b *FakeBatch) End() error {
	for _, o := range b.ops {
		switch o.verb {
		case "create", "clear":
			b.player.Stored[o.name] = []string{}
			b.player.Ops = append(b.player.Ops, o.verb+" "+o.name)
		case "add":
			b.player.Stored[o.name] = append(b.player.Stored[o.name], o.uri)
			b.player.Ops = append(b.player.Ops, "add "+o.name+" "+o.uri)
		}
	}
	if len(b.ops) > 0 {
		b.player.Batches++
	}
	b.ops = nil
	return nil
}
