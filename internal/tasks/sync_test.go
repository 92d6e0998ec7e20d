package tasks

import (
	"context"
	"io"
	"io/fs"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/desertthunder/mpdgen/internal/library"
	"github.com/desertthunder/mpdgen/internal/rules"
	"github.com/desertthunder/mpdgen/internal/shared"
	tu "github.com/desertthunder/mpdgen/internal/testing"
)

func emptyFS() (fs.FS, error) { return fstest.MapFS{}, nil }

func newSyncCycle(t *testing.T, fake *tu.FakePlayer) *rules.Cycle {
	t.Helper()
	c, err := rules.NewCycle(fake, emptyFS, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewCycle failed: %v", err)
	}
	return c
}

func newTestEngine(fake *tu.FakePlayer) *Engine {
	return NewEngine(fake, 1000, shared.NewLogger(io.Discard))
}

func TestSyncUnchanged(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3", "b/2.mp3"}
	fake.Stored["mix"] = []string{"a/1.mp3", "b/2.mp3"}

	cycle := newSyncCycle(t, fake)
	if err := cycle.Playlists.Write("mix", library.FromSet(library.NewSet(0, 1))); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	res, err := newTestEngine(fake).Sync(context.Background(), cycle)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Mutations != 0 {
		t.Errorf("Mutations = %d, want 0", res.Mutations)
	}
	if len(fake.Ops) != 0 {
		t.Errorf("ops issued for unchanged playlist: %v", fake.Ops)
	}
	if len(res.Playlists) != 1 || res.Playlists[0].Action != ActionNone {
		t.Errorf("Playlists = %+v, want one unchanged entry", res.Playlists)
	}
}

func TestSyncCreatesEmptyPlaylist(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3"}

	cycle := newSyncCycle(t, fake)
	if err := cycle.Playlists.Write("fresh", library.FromSet(library.NewSet())); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	res, err := newTestEngine(fake).Sync(context.Background(), cycle)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Mutations != 1 {
		t.Errorf("Mutations = %d, want 1", res.Mutations)
	}
	if res.Playlists[0].Action != ActionCreate {
		t.Errorf("Action = %q, want %q", res.Playlists[0].Action, ActionCreate)
	}
	if got, ok := fake.Stored["fresh"]; !ok || len(got) != 0 {
		t.Errorf("Stored[fresh] = (%v, %v), want empty playlist", got, ok)
	}
}

func TestSyncExistingEmptyStaysPut(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3"}
	fake.Stored["fresh"] = []string{}

	cycle := newSyncCycle(t, fake)
	if err := cycle.Playlists.Write("fresh", library.FromSet(library.NewSet())); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	res, err := newTestEngine(fake).Sync(context.Background(), cycle)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Mutations != 0 || len(fake.Ops) != 0 {
		t.Errorf("Mutations = %d, ops = %v, want no work", res.Mutations, fake.Ops)
	}
}

func TestSyncRewritesChangedPlaylist(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3", "b/2.mp3", "c/3.mp3"}
	fake.Stored["mix"] = []string{"c/3.mp3"}

	cycle := newSyncCycle(t, fake)
	if err := cycle.Playlists.Write("mix", library.FromSeq([]int{1, 0})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	res, err := newTestEngine(fake).Sync(context.Background(), cycle)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Mutations != 1 || fake.Batches != 1 {
		t.Errorf("Mutations = %d, Batches = %d, want one batch", res.Mutations, fake.Batches)
	}

	wantOps := []string{"clear mix", "add mix b/2.mp3", "add mix a/1.mp3"}
	if !slices.Equal(fake.Ops, wantOps) {
		t.Errorf("ops = %v, want %v", fake.Ops, wantOps)
	}
	if want := []string{"b/2.mp3", "a/1.mp3"}; !slices.Equal(fake.Stored["mix"], want) {
		t.Errorf("Stored[mix] = %v, want %v", fake.Stored["mix"], want)
	}
}

func TestSyncAbsentNonEmptySkipsClear(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3", "b/2.mp3"}

	cycle := newSyncCycle(t, fake)
	if err := cycle.Playlists.Write("new", library.FromSet(library.NewSet(1, 0))); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := newTestEngine(fake).Sync(context.Background(), cycle); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	// unordered sets store in catalog index order
	wantOps := []string{"add new a/1.mp3", "add new b/2.mp3"}
	if !slices.Equal(fake.Ops, wantOps) {
		t.Errorf("ops = %v, want %v", fake.Ops, wantOps)
	}
}

func TestSyncIdempotentAcrossCycles(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3", "b/2.mp3", "c/3.mp3"}
	fake.GenreIndex["Metal"] = []string{"b/2.mp3", "c/3.mp3"}

	script, err := rules.ParseScript([]byte("playlists:\n  - name: metal\n    tracks: {genre: Metal}\n"))
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}

	run := func() *Result {
		cycle := newSyncCycle(t, fake)
		if err := cycle.Generate(script); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		res, err := newTestEngine(fake).Sync(context.Background(), cycle)
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		return res
	}

	if res := run(); res.Mutations != 1 {
		t.Fatalf("first pass Mutations = %d, want 1", res.Mutations)
	}
	if res := run(); res.Mutations != 0 {
		t.Errorf("second pass Mutations = %d, want 0", res.Mutations)
	}
	if want := []string{"b/2.mp3", "c/3.mp3"}; !slices.Equal(fake.Stored["metal"], want) {
		t.Errorf("Stored[metal] = %v, want %v", fake.Stored["metal"], want)
	}
}

func TestSyncStaleIndexFails(t *testing.T) {
	fake := tu.NewFakePlayer()
	fake.TracksList = []string{"a/1.mp3"}

	cycle := newSyncCycle(t, fake)
	if err := cycle.Playlists.Write("bad", library.FromSeq([]int{99})); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := newTestEngine(fake).Sync(context.Background(), cycle); err == nil {
		t.Error("Sync accepted an out-of-catalog track index")
	}
}
