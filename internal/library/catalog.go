// package library models one cycle's view of the MPD music database: every
// known track path with a stable integer index for the cycle, and the
// ancestor index answering "all tracks under directory P".
//
// A Catalog is built once per reconciliation cycle and discarded at cycle
// end; indices are not stable across cycles.
package library

import (
	"path"
	"sort"
)

// Catalog assigns each track path a 0-based index by lexicographic path
// order and provides path↔index translation.
type Catalog struct {
	paths []string
	index map[string]int

	// ancestor index, built lazily on first Under call
	under map[string]Set
}

// NewCatalog builds a Catalog from the library's track paths. Paths are
// cleaned, deduplicated and sorted; the caller's slice is not retained.
func NewCatalog(trackPaths []string) *Catalog {
	index := make(map[string]int, len(trackPaths))
	paths := make([]string, 0, len(trackPaths))
	for _, p := range trackPaths {
		p = path.Clean(p)
		if _, ok := index[p]; ok {
			continue
		}
		index[p] = 0
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for i, p := range paths {
		index[p] = i
	}
	return &Catalog{paths: paths, index: index}
}

// Len returns the number of tracks in the catalog.
func (c *Catalog) Len() int {
	return len(c.paths)
}

// All returns the set of every track index in the catalog.
func (c *Catalog) All() Set {
	s := make(Set, len(c.paths))
	for i := range c.paths {
		s[i] = struct{}{}
	}
	return s
}

// PathOf translates an index back to its track path.
func (c *Catalog) PathOf(i int) (string, bool) {
	if i < 0 || i >= len(c.paths) {
		return "", false
	}
	return c.paths[i], true
}

// IndexOf translates a track path to its index. Paths unknown to the
// catalog (stale playlist entries, removed files) report ok=false.
func (c *Catalog) IndexOf(p string) (int, bool) {
	i, ok := c.index[path.Clean(p)]
	return i, ok
}

// Under returns the set of track indices whose path equals p or descends
// from it. Directory "." (or "") means the library root, i.e. every track.
// Unknown paths yield an empty set.
//
// The ancestor index behind this is built once, on the first call, and
// reused for the rest of the cycle.
func (c *Catalog) Under(p string) Set {
	if c.under == nil {
		c.buildAncestorIndex()
	}
	if p == "" {
		p = "."
	}
	s, ok := c.under[path.Clean(p)]
	if !ok {
		return NewSet()
	}
	return s
}

func (c *Catalog) buildAncestorIndex() {
	under := make(map[string]Set)
	register := func(key string, i int) {
		s, ok := under[key]
		if !ok {
			s = NewSet()
			under[key] = s
		}
		s.Add(i)
	}
	for i, p := range c.paths {
		register(p, i)
		for d := path.Dir(p); ; d = path.Dir(d) {
			register(d, i)
			if d == "." || d == "/" {
				break
			}
		}
	}
	c.under = under
}
