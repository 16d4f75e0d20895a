// Package store holds the client's local model of authority-owned
// collections. Every mutation is round-tripped through the remote authority
// before the local cache changes; the client never mints authoritative ids.
//
// Each store tracks one {loading, error} pair shared by all of its
// operations, not one per entity. Two operations racing on the same store
// both toggle the same pair and the last one to settle determines the final
// value. That is a known limitation of the reference behavior and is kept
// deliberately.
package store

import "sync"

// collection is the generic local cache for one entity kind. Callers apply
// authority responses through it; application order is response arrival
// order, guarded by the mutex.
type collection[E any] struct {
	mu    sync.Mutex
	items []E
	id    func(E) string

	loading bool
	err     string

	// Per-scope sequence numbers for list calls. A list response whose
	// sequence is not newer than the last applied one for its scope is
	// stale and gets dropped instead of overwriting fresher data.
	issued  map[string]uint64
	applied map[string]uint64
}

func newCollection[E any](id func(E) string) *collection[E] {
	return &collection[E]{
		id:      id,
		issued:  make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// begin marks an operation in flight and clears the previous error.
func (c *collection[E]) begin() {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	c.mu.Unlock()
}

// settle records the operation outcome. err may be nil.
func (c *collection[E]) settle(err error) {
	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.err = err.Error()
	} else {
		c.err = ""
	}
	c.mu.Unlock()
}

// nextSeq reserves a sequence number for a list call against scope.
func (c *collection[E]) nextSeq(scope string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued[scope]++
	return c.issued[scope]
}

// applyList replaces the collection wholesale. It reports false when the
// response is stale for its scope and was discarded.
func (c *collection[E]) applyList(scope string, seq uint64, items []E) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied[scope] {
		return false
	}
	c.applied[scope] = seq
	c.items = append(c.items[:0:0], items...)
	return true
}

// applyCreate appends the canonical entity returned by the authority.
func (c *collection[E]) applyCreate(item E) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
}

// applyUpdate replaces the matching entity by id. An update resolving for an
// entity no longer present locally is appended instead: a defensive upsert,
// not an error.
func (c *collection[E]) applyUpdate(item E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id(item)
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// applyDelete removes the entity with the given id, if present.
func (c *collection[E]) applyDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, item := range c.items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

// clear empties the collection and marks every list issued so far as stale,
// so in-flight responses cannot resurrect the cleared data.
func (c *collection[E]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	for scope, seq := range c.issued {
		c.applied[scope] = seq
	}
}

// snapshot returns a copy of the current collection.
func (c *collection[E]) snapshot() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(c.items[:0:0], c.items...)
}

// find returns the entity with the given id.
func (c *collection[E]) find(id string) (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.id(item) == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// state returns the shared loading flag and last error string.
func (c *collection[E]) state() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading, c.err
}
