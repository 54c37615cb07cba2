// Package handle implements the opaque handle registry backing the C
// ABI (spec §4.10). Every parser, store, and lazy view exposed across
// cgo is an opaque uint64 handle rather than a Go pointer, so the C side
// never dereferences Go memory directly and the Go side never worries
// about a foreign caller handing back a forged pointer: a handle is only
// ever a lookup key into this registry.
//
// The registry is backed by a lock-free concurrent map (haxmap) rather
// than a mutex-guarded map, since spec §5 requires the C ABI to support
// concurrent calls across distinct handles without serialising on a
// single lock.
package handle

import (
	"sync/atomic"

	"github.com/alphadose/haxmap"
)

// ID is an opaque handle value. Zero is never issued and always means
// "invalid handle".
type ID uint64

// Registry maps IDs to arbitrary Go values (typically *ocsv.BatchParser,
// *ocsv.Store, or *ocsv.LazyView) kept alive on behalf of C callers that
// hold only the numeric ID.
type Registry struct {
	m       *haxmap.Map[uint64, any]
	counter atomic.Uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{m: haxmap.New[uint64, any]()}
}

// Put stores v under a freshly minted ID and returns it.
func (r *Registry) Put(v any) ID {
	id := r.counter.Add(1)
	r.m.Set(id, v)
	return ID(id)
}

// Get returns the value stored under id, or nil, false if id is unknown
// (including the reserved zero ID).
func (r *Registry) Get(id ID) (any, bool) {
	if id == 0 {
		return nil, false
	}
	return r.m.Get(uint64(id))
}

// Delete removes id from the registry. Safe to call on an unknown ID.
func (r *Registry) Delete(id ID) {
	r.m.Del(uint64(id))
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	return int(r.m.Len())
}
