// package player defines the protocol surface mpdgen needs from an MPD
// server and its gompd-backed implementation.
//
// The interface is the seam between playlist generation and the wire
// protocol: everything above it deals in track paths and playlist names,
// nothing above it knows about connections or command framing.
package player

// Status is the subset of MPD server status the reconciliation loop cares
// about.
type Status struct {
	// Updating reports whether a database update scan is in progress.
	Updating bool
}

// Client is the capability set required from the remote server. The
// connection is a single shared resource for the whole process lifetime;
// implementations do not retry, failures propagate to the caller.
type Client interface {
	// ListTracks enumerates every file path in the music database.
	ListTracks() ([]string, error)

	// FindGenre returns the paths of all tracks whose genre tag exactly
	// equals genre. An unmatched genre is an empty result, not an error.
	FindGenre(genre string) ([]string, error)

	// MusicDirectory returns the server's music library root path.
	MusicDirectory() (string, error)

	// PlaylistContents returns the ordered file paths of a stored playlist.
	// A missing playlist fails with a wrapped [shared.ErrPlaylistNotFound].
	PlaylistContents(name string) ([]string, error)

	// Begin opens a batch of mutating playlist commands. Nothing is sent
	// until End; all commands for one playlist go through one batch.
	Begin() Batch

	// Status queries the server status.
	Status() (Status, error)

	// WaitLibraryUpdate blocks until the server signals a library update
	// event.
	WaitLibraryUpdate() error

	// Close releases the connection and the update watcher.
	Close() error
}

// Batch collects mutating playlist commands and sends them together on End.
type Batch interface {
	// Create makes an empty stored playlist discoverable under name.
	Create(name string)

	// Clear removes every entry from the stored playlist name.
	Clear(name string)

	// Add appends the track at uri to the stored playlist name.
	Add(name, uri string)

	// End sends the collected commands and reports the first failure.
	End() error
}
