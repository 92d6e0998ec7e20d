package library

import "sort"

// Set is an unordered collection of track indices.
type Set map[int]struct{}

// NewSet creates a Set containing the given indices.
func NewSet(ids ...int) Set {
	s := make(Set, len(ids))
	for _, i := range ids {
		s[i] = struct{}{}
	}
	return s
}

// Add inserts a single index.
func (s Set) Add(i int) {
	s[i] = struct{}{}
}

// Contains reports whether the index is a member.
func (s Set) Contains(i int) bool {
	_, ok := s[i]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// AddAll inserts every member of o.
func (s Set) AddAll(o Set) {
	for i := range o {
		s[i] = struct{}{}
	}
}

// RemoveAll deletes every member of o.
func (s Set) RemoveAll(o Set) {
	for i := range o {
		delete(s, i)
	}
}

// Retain drops every member not also present in o.
func (s Set) Retain(o Set) {
	for i := range s {
		if !o.Contains(i) {
			delete(s, i)
		}
	}
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for i := range s {
		c[i] = struct{}{}
	}
	return c
}

// Sorted returns the members in ascending index order.
func (s Set) Sorted() []int {
	ids := make([]int, 0, len(s))
	for i := range s {
		ids = append(ids, i)
	}
	sort.Ints(ids)
	return ids
}

// Equal reports whether both sets have exactly the same members.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !o.Contains(i) {
			return false
		}
	}
	return true
}

// Tracks is a playlist value: either an unordered set of track indices or an
// author-ordered sequence. Unordered values are sorted by index before any
// ordered use; explicit sequences keep their order.
type Tracks struct {
	ordered bool
	seq     []int
	set     Set
}

// FromSet wraps an unordered set.
func FromSet(s Set) Tracks {
	return Tracks{set: s}
}

// FromSeq wraps an explicit ordered sequence.
func FromSeq(ids []int) Tracks {
	return Tracks{ordered: true, seq: ids}
}

// Ordered reports whether the value carries an author-specified order.
func (t Tracks) Ordered() bool {
	return t.ordered
}

// Len returns the number of tracks.
func (t Tracks) Len() int {
	if t.ordered {
		return len(t.seq)
	}
	return t.set.Len()
}

// Sequence normalizes the value to a slice of indices: the author order for
// sequences, ascending index order for sets.
func (t Tracks) Sequence() []int {
	if t.ordered {
		return t.seq
	}
	return t.set.Sorted()
}

// AsSet returns the members as an unordered set. The result is a copy and
// safe to mutate.
func (t Tracks) AsSet() Set {
	if t.ordered {
		return NewSet(t.seq...)
	}
	return t.set.Clone()
}
