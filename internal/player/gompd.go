package player

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mpdgen/internal/shared"
	"github.com/fhs/gompd/v2/mpd"
)

// MPD implements [Client] over a live gompd connection plus a dedicated
// watcher connection subscribed to the "update" subsystem.
type MPD struct {
	conn    *mpd.Client
	watcher *mpd.Watcher
}

// Network guesses the dial network for a connection target: absolute paths
// are unix sockets, everything else is host:port over TCP.
func Network(address string) string {
	if strings.HasPrefix(address, "/") {
		return "unix"
	}
	return "tcp"
}

// Dial connects to the MPD server at address (host:port or unix socket
// path). password may be empty.
func Dial(address, password string) (*MPD, error) {
	network := Network(address)

	var conn *mpd.Client
	var err error
	if password != "" {
		conn, err = mpd.DialAuthenticated(network, address, password)
	} else {
		conn, err = mpd.Dial(network, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPD at %s: %w", address, err)
	}

	// Only file paths are consumed from responses; clearing tag types trims
	// every list reply down to those.
	if err := conn.Command("tagtypes clear").OK(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to clear tag types: %w", err)
	}

	watcher, err := mpd.NewWatcher(network, address, password, "update")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start update watcher: %w", err)
	}

	return &MPD{conn: conn, watcher: watcher}, nil
}

// ListTracks enumerates every file in the music database.
func (m *MPD) ListTracks() ([]string, error) {
	files, err := m.conn.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list database files: %w", err)
	}
	return files, nil
}

// FindGenre queries tracks whose genre tag exactly equals genre.
func (m *MPD) FindGenre(genre string) ([]string, error) {
	attrs, err := m.conn.Find("genre", genre)
	if err != nil {
		return nil, fmt.Errorf("genre query for %q failed: %w", genre, err)
	}
	files := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if f := a["file"]; f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// MusicDirectory asks the server for its music_directory. MPD answers the
// config command only on unix socket connections; callers fall back to the
// configured library root otherwise.
func (m *MPD) MusicDirectory() (string, error) {
	attrs, err := m.conn.Command("config").Attrs()
	if err != nil {
		return "", fmt.Errorf("%w: config command failed: %v", shared.ErrNoLibraryRoot, err)
	}
	dir := attrs["music_directory"]
	if dir == "" {
		return "", fmt.Errorf("%w: server did not report music_directory", shared.ErrNoLibraryRoot)
	}
	return dir, nil
}

// PlaylistContents returns the ordered file paths stored under name.
func (m *MPD) PlaylistContents(name string) ([]string, error) {
	attrs, err := m.conn.PlaylistContents(name)
	if err != nil {
		var mpdErr mpd.Error
		if errors.As(err, &mpdErr) && mpdErr.Code == mpd.ErrorNoExist {
			return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
		}
		return nil, fmt.Errorf("failed to read playlist %q: %w", name, err)
	}
	files := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if f := a["file"]; f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// Status queries the server status.
func (m *MPD) Status() (Status, error) {
	attrs, err := m.conn.Status()
	if err != nil {
		return Status{}, fmt.Errorf("status query failed: %w", err)
	}
	_, updating := attrs["updating_db"]
	return Status{Updating: updating}, nil
}

// WaitLibraryUpdate blocks until the watcher delivers an "update" idle
// event.
func (m *MPD) WaitLibraryUpdate() error {
	select {
	case _, ok := <-m.watcher.Event:
		if !ok {
			return fmt.Errorf("%w: update watcher closed", shared.ErrNotConnected)
		}
		return nil
	case err, ok := <-m.watcher.Error:
		if !ok {
			return fmt.Errorf("%w: update watcher closed", shared.ErrNotConnected)
		}
		return fmt.Errorf("update watcher failed: %w", err)
	}
}

// Begin opens a batch of mutating playlist commands.
func (m *MPD) Begin() Batch {
	return &batch{conn: m.conn}
}

// Close shuts down the watcher and the command connection.
func (m *MPD) Close() error {
	werr := m.watcher.Close()
	cerr := m.conn.Close()
	if cerr != nil {
		return cerr
	}
	return werr
}

type opKind int

const (
	opCreate opKind = iota
	opClear
	opAdd
)

type op struct {
	kind opKind
	name string
	uri  string
}

// batch buffers stored-playlist commands until End. gompd's command list
// covers queue and playback commands only, so End flushes the buffered
// commands back-to-back on the single shared connection; MPD serves one
// connection's commands without interleaving.
type batch struct {
	conn *mpd.Client
	ops  []op
}

func (b *batch) Create(name string) {
	// save-then-clear is the established trick for materializing an empty
	// stored playlist: save snapshots the queue, clear empties the result.
	b.ops = append(b.ops, op{kind: opCreate, name: name}, op{kind: opClear, name: name})
}

func (b *batch) Clear(name string) {
	b.ops = append(b.ops, op{kind: opClear, name: name})
}

func (b *batch) Add(name, uri string) {
	b.ops = append(b.ops, op{kind: opAdd, name: name, uri: uri})
}

func (b *batch) End() error {
	for _, o := range b.ops {
		var err error
		switch o.kind {
		case opCreate:
			err = b.conn.PlaylistSave(o.name)
		case opClear:
			err = b.conn.PlaylistClear(o.name)
		case opAdd:
			err = b.conn.PlaylistAdd(o.name, o.uri)
		}
		if err != nil {
			return fmt.Errorf("playlist batch for %q failed: %w", o.name, err)
		}
	}
	b.ops = nil
	return nil
}
