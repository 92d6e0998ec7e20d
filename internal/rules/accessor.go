// package rules evaluates the user's declarative rules document against one
// cycle's library snapshot.
//
// The core abstraction is the lazy, memoizing accessor shared by the genre,
// label and playlist bindings: a value is resolved at most once per name per
// cycle, and playlist names freeze on first read so a rule cannot redefine a
// playlist whose old contents were already consulted.
package rules

// accessor is the lazy by-name lookup underlying the genre, label and
// playlist bindings. The first successful resolution for a name is cached
// for the rest of the cycle and returned on later lookups even if the
// underlying data changes mid-cycle. Failed resolutions are not cached.
type accessor[V any] struct {
	resolve func(name string) (V, error)
	cache   map[string]V
}

func newAccessor[V any](resolve func(string) (V, error)) *accessor[V] {
	return &accessor[V]{resolve: resolve, cache: make(map[string]V)}
}

// Get returns the value for name, resolving and caching it on first use.
func (a *accessor[V]) Get(name string) (V, error) {
	if v, ok := a.cache[name]; ok {
		return v, nil
	}
	v, err := a.resolve(name)
	if err != nil {
		var zero V
		return zero, err
	}
	a.cache[name] = v
	return v, nil
}

// put seeds the cache for name, replacing any earlier value.
func (a *accessor[V]) put(name string, v V) {
	a.cache[name] = v
}
