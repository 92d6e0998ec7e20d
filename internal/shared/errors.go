package shared

import "fmt"

var (
	// Lookup errors
	ErrNotFound         = fmt.Errorf("not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Rule evaluation errors
	ErrConflict      = fmt.Errorf("playlist already read")
	ErrMalformedRule = fmt.Errorf("malformed rule file")
	ErrInvalidScript = fmt.Errorf("invalid rules document")

	// Configuration and connection errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrNoLibraryRoot   = fmt.Errorf("library root unavailable")
	ErrNotConnected    = fmt.Errorf("not connected to MPD")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
