package rules

import (
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/mpdgen/internal/library"
	"github.com/desertthunder/mpdgen/internal/shared"
	tu "github.com/desertthunder/mpdgen/internal/testing"
)

func TestPlaylistsReadRemote(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3", "a/2.mp3", "b/3.mp3"}
	fake.Stored["mix"] = []string{"b/3.mp3", "a/1.mp3", "gone/stale.mp3"}
	pls := NewPlaylists(fake, library.NewCatalog(fake.TracksList))

	got, err := pls.Read("mix")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !got.Ordered() {
		t.Error("remote playlist should preserve stored order")
	}
	if want := []int{2, 0}; !slices.Equal(got.Sequence(), want) {
		t.Errorf("Read sequence = %v, want %v (stale entry dropped)", got.Sequence(), want)
	}
}

func TestPlaylistsWriteThenRead(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3", "a/2.mp3"}
	pls := NewPlaylists(fake, library.NewCatalog(fake.TracksList))

	want := library.FromSeq([]int{1, 0})
	if err := pls.Write("new", want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := pls.Read("new")
	if err != nil {
		t.Fatalf("Read after Write failed: %v", err)
	}
	if !slices.Equal(got.Sequence(), want.Sequence()) {
		t.Errorf("Read = %v, want %v", got.Sequence(), want.Sequence())
	}
	if fake.ContentsCalls["new"] != 0 {
		t.Errorf("Read of a written name hit the server %d times, want 0", fake.ContentsCalls["new"])
	}
}

func TestPlaylistsReadFreezes(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3"}
	fake.Stored["mix"] = []string{"a/1.mp3"}
	pls := NewPlaylists(fake, library.NewCatalog(fake.TracksList))

	before, err := pls.Read("mix")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if err := pls.Write("mix", library.FromSeq(nil)); !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("Write after Read error = %v, want ErrConflict", err)
	}

	after, err := pls.Read("mix")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !slices.Equal(after.Sequence(), before.Sequence()) {
		t.Errorf("cached value changed by failed write: %v -> %v", before.Sequence(), after.Sequence())
	}
	if len(pls.Generated()) != 0 {
		t.Errorf("failed write recorded a generated playlist: %v", pls.Generated())
	}
}

func TestPlaylistsFailedReadStillFreezes(t *testing.T) {
	fake := tu.NewFakePlayer()
	pls := NewPlaylists(fake, library.NewCatalog(nil))

	if _, err := pls.Read("missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("Read error = %v, want ErrNotFound", err)
	}
	if err := pls.Write("missing", library.FromSeq(nil)); !errors.Is(err, shared.ErrConflict) {
		t.Errorf("Write after failed Read error = %v, want ErrConflict", err)
	}
}

func TestPlaylistsRewriteBeforeRead(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3", "a/2.mp3"}
	pls := NewPlaylists(fake, library.NewCatalog(fake.TracksList))

	if err := pls.Write("x", library.FromSeq([]int{0})); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if err := pls.Write("y", library.FromSeq([]int{1})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := pls.Write("x", library.FromSeq([]int{0, 1})); err != nil {
		t.Fatalf("rewrite before read failed: %v", err)
	}

	gen := pls.Generated()
	if len(gen) != 2 || gen[0].Name != "x" || gen[1].Name != "y" {
		t.Fatalf("Generated order = %v, want [x y]", gen)
	}
	if want := []int{0, 1}; !slices.Equal(gen[0].Tracks.Sequence(), want) {
		t.Errorf("x = %v, want %v (last write wins)", gen[0].Tracks.Sequence(), want)
	}
}

func TestPlaylistsRemoteContentsMemoized(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.Stored["mix"] = []string{"a/1.mp3"}
	pls := NewPlaylists(fake, library.NewCatalog([]string{"a/1.mp3"}))

	for range 2 {
		files, exists, err := pls.RemoteContents("mix")
		if err != nil || !exists {
			t.Fatalf("RemoteContents = (%v, %v, %v)", files, exists, err)
		}
		if _, exists, err := pls.RemoteContents("absent"); err != nil || exists {
			t.Fatalf("RemoteContents(absent) = (exists=%v, err=%v), want absent", exists, err)
		}
	}
	if fake.ContentsCalls["mix"] != 1 {
		t.Errorf("PlaylistContents(mix) called %d times, want 1", fake.ContentsCalls["mix"])
	}
	if fake.ContentsCalls["absent"] != 1 {
		t.Errorf("PlaylistContents(absent) called %d times, want 1", fake.ContentsCalls["absent"])
	}
}

func TestPlaylistsRemoteContentsError(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.ReadErr["mix"] = errors.New("connection reset")
	pls := NewPlaylists(fake, library.NewCatalog(nil))

	if _, _, err := pls.RemoteContents("mix"); !errors.Is(err, fake.ReadErr["mix"]) {
		t.Errorf("RemoteContents error = %v, want %v", err, fake.ReadErr["mix"])
	}
}
