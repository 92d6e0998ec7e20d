package rules

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/mpdgen/internal/shared"
	"gopkg.in/yaml.v3"
)

// Script is the declarative rules document, re-read and re-parsed at the
// start of every cycle. Rules are applied in document order; order matters
// because a rule may read a playlist that an earlier rule wrote.
//
//	playlists:
//	  - name: instrumental
//	    tracks: {label: instrumental}
//	  - name: loud
//	    tracks:
//	      union:
//	        - genre: Metal
//	        - genre: Hardcore
type Script struct {
	Playlists []PlaylistRule `yaml:"playlists"`
}

// PlaylistRule names one generated playlist and the expression computing
// its tracks.
type PlaylistRule struct {
	Name   string `yaml:"name"`
	Tracks Expr   `yaml:"tracks"`
}

// Expr is one node of the track-set expression grammar. Exactly one key may
// be set per node, mirroring the one-key discipline of label rule files:
//
//	all_tracks: true          every track in the library
//	genre: NAME               tracks whose genre tag equals NAME
//	label: NAME               tracks matched by the label's rule files
//	playlist: NAME            current contents of a stored playlist (ordered)
//	union: [EXPR, ...]        members of any operand
//	intersect: [EXPR, ...]    members of every operand
//	difference: [EXPR, ...]   first operand minus the rest
type Expr struct {
	AllTracks  bool   `yaml:"all_tracks"`
	Genre      string `yaml:"genre"`
	Label      string `yaml:"label"`
	Playlist   string `yaml:"playlist"`
	Union      []Expr `yaml:"union"`
	Intersect  []Expr `yaml:"intersect"`
	Difference []Expr `yaml:"difference"`
}

// ParseScript decodes and validates a rules document. Unknown fields are
// rejected so a typoed key fails loudly instead of matching nothing.
func ParseScript(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidScript, err)
	}
	if len(s.Playlists) == 0 {
		return nil, fmt.Errorf("%w: no playlists defined", shared.ErrInvalidScript)
	}
	for i := range s.Playlists {
		rule := &s.Playlists[i]
		if rule.Name == "" {
			return nil, fmt.Errorf("%w: playlist #%d has no name", shared.ErrInvalidScript, i+1)
		}
		if err := rule.Tracks.validate(); err != nil {
			return nil, fmt.Errorf("%w: playlist %q: %v", shared.ErrInvalidScript, rule.Name, err)
		}
	}
	return &s, nil
}

func (e *Expr) validate() error {
	n := 0
	if e.AllTracks {
		n++
	}
	if e.Genre != "" {
		n++
	}
	if e.Label != "" {
		n++
	}
	if e.Playlist != "" {
		n++
	}
	if len(e.Union) > 0 {
		n++
	}
	if len(e.Intersect) > 0 {
		n++
	}
	if len(e.Difference) > 0 {
		n++
	}
	if n != 1 {
		return fmt.Errorf("expression must have exactly one of all_tracks, genre, label, playlist, union, intersect, difference")
	}
	for _, children := range [][]Expr{e.Union, e.Intersect, e.Difference} {
		for i := range children {
			if err := children[i].validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
