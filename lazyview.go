package ocsv

import "container/list"

// lazyViewCacheLimit bounds the number of decoded rows LazyView keeps
// alive at once (spec §4.11).
const lazyViewCacheLimit = 1024

// LazyView gives on-demand, cached access to a pinned Store's rows
// without materialising every row up front. It is the access pattern the
// C ABI uses for huge Stores where callers only ever touch a handful of
// rows: Row and Field are cheap for repeated access to the same row, and
// memory use stays bounded regardless of Store size.
//
// A LazyView holds a Store Pin for its entire lifetime; Destroy releases
// it. Every method after Destroy returns ErrUseAfterDestroy, matching the
// C ABI's handle-invalidation contract (spec §4.10).
type LazyView struct {
	store      *Store
	rowOffset  int        // logical row 0 of this view maps to store row rowOffset
	cache      *list.List // most-recently-used row indices, front = most recent
	cacheIndex map[int]*list.Element
	destroyed  bool
}

type lazyCacheEntry struct {
	row    int
	fields [][]byte
}

// NewLazyView pins store and returns a LazyView over its rows starting at
// rowOffset (nonzero when a caller wants to window into a larger Store
// without copying, e.g. serving one page of a result set).
func NewLazyView(store *Store, rowOffset int) *LazyView {
	store.Pin()
	return &LazyView{
		store:      store,
		rowOffset:  rowOffset,
		cache:      list.New(),
		cacheIndex: make(map[int]*list.Element),
	}
}

// RowCount returns the number of rows visible through this view.
func (v *LazyView) RowCount() (int, error) {
	if v.destroyed {
		return 0, ErrUseAfterDestroy
	}
	n := v.store.RowCount() - v.rowOffset
	if n < 0 {
		n = 0
	}
	return n, nil
}

// Row returns row i (relative to rowOffset), decoding and caching it if
// it isn't already cached. The returned slice is only valid until the
// view's Store is reset or the view is destroyed; it is not invalidated
// by later Row/Field calls on other rows.
func (v *LazyView) Row(i int) ([][]byte, error) {
	if v.destroyed {
		return nil, ErrUseAfterDestroy
	}
	if el, ok := v.cacheIndex[i]; ok {
		v.cache.MoveToFront(el)
		return el.Value.(*lazyCacheEntry).fields, nil
	}

	storeRow := v.rowOffset + i
	fields := v.store.Row(storeRow)
	if fields == nil {
		return nil, ErrOutOfRange
	}

	el := v.cache.PushFront(&lazyCacheEntry{row: i, fields: fields})
	v.cacheIndex[i] = el
	if v.cache.Len() > lazyViewCacheLimit {
		oldest := v.cache.Back()
		v.cache.Remove(oldest)
		delete(v.cacheIndex, oldest.Value.(*lazyCacheEntry).row)
	}
	return fields, nil
}

// Field returns one field of row i without going through the row-level
// cache entry's slice indexing twice; it still populates the cache the
// same as Row, since most callers that want one field from a row will
// want its neighbours next.
//
// Earlier revisions of this fetched the header row's fields through the
// same cache path used for data rows, which meant a cache eviction could
// silently invalidate a caller's held reference to a header field while
// they were still iterating data rows below the cache limit. Field now
// always re-resolves through Row so the returned slice is the one
// currently cached, never a stale one evicted out from under the caller.
func (v *LazyView) Field(i, col int) ([]byte, error) {
	fields, err := v.Row(i)
	if err != nil {
		return nil, err
	}
	if col < 0 || col >= len(fields) {
		return nil, ErrOutOfRange
	}
	return fields[col], nil
}

// Destroy releases the view's pin on its Store. Safe to call more than
// once.
func (v *LazyView) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.store.Unpin()
	v.cache.Init()
	v.cacheIndex = nil
}
