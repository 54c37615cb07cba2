package ocsv

// fieldRef locates one field's bytes inside a Store's arena.
type fieldRef struct {
	start uint32
	end   uint32
}

// rowRef locates one row's fields inside a Store's field index.
type rowRef struct {
	firstField int
	fieldCount int
}

// Status reports the outcome of a parse.
type Status struct {
	OK  bool
	Err *Error
}

// Store is the owned, indexed result of one parse (spec §3). Field bytes
// live contiguously in a single arena with offset indices rather than as
// independent heap strings, per spec §4.4 — this is what lets LazyView and
// the C ABI hand out zero-copy borrowed slices that stay valid for the
// Store's lifetime.
type Store struct {
	arena  []byte
	fields []fieldRef
	rows   []rowRef

	sourceByteCount int64
	status          Status

	// pendingFirstField is the index into fields where the row currently
	// being assembled starts. It lets Store satisfy rowSink's no-argument
	// finishRow/discardRow while the StateMachine itself stays agnostic
	// about how a concrete sink locates "its" row.
	pendingFirstField int

	// pinned is set by LazyView/CAbi consumers that have issued borrowed
	// slices; once true, BatchParser.Parse refuses to reuse (and so
	// Reset) the Store until Unpin is called, honoring the "Store address
	// and field addresses do not move until destruction" invariant (spec
	// §3 invariant c). Reset itself does not check it.
	pinned bool
}

// NewStore returns an empty Store ready to receive a parse.
func NewStore() *Store {
	return &Store{}
}

// Reset clears all rows and fields for parser reuse, invalidating any
// previously borrowed slices. It is a documented contract violation (spec
// §5) to keep using slices borrowed before Reset.
func (s *Store) Reset() {
	s.arena = s.arena[:0]
	s.fields = s.fields[:0]
	s.rows = s.rows[:0]
	s.sourceByteCount = 0
	s.pendingFirstField = 0
	s.status = Status{OK: true}
}

// Pin marks the Store as having outstanding borrowed references (used by
// LazyView and the C ABI). Unpin reverses it.
func (s *Store) Pin()   { s.pinned = true }
func (s *Store) Unpin() { s.pinned = false }

// pushField copies b into the arena and records a new field in the
// current (not-yet-finished) row.
func (s *Store) pushField(b []byte) {
	start := uint32(len(s.arena))
	s.arena = append(s.arena, b...)
	end := uint32(len(s.arena))
	s.fields = append(s.fields, fieldRef{start: start, end: end})
}

// pushEmptyField records a zero-length field without touching the arena.
func (s *Store) pushEmptyField() {
	at := uint32(len(s.arena))
	s.fields = append(s.fields, fieldRef{start: at, end: at})
}

// finishRowAt closes out a row spanning all fields pushed since firstField
// and advances pendingFirstField past it.
func (s *Store) finishRowAt(firstField int) {
	s.rows = append(s.rows, rowRef{firstField: firstField, fieldCount: len(s.fields) - firstField})
	s.pendingFirstField = len(s.fields)
}

// discardRowAt drops fields pushed since firstField without recording a
// row (used by skip_empty_lines and skip_lines_with_error recovery), and
// resets pendingFirstField to match.
func (s *Store) discardRowAt(firstField int) {
	s.fields = s.fields[:firstField]
	s.pendingFirstField = firstField
}

// finishRow and discardRow satisfy rowSink for a Store driven directly by
// a StateMachine (BatchParser's usage; spec §4.5).
func (s *Store) finishRow() error {
	s.finishRowAt(s.pendingFirstField)
	return nil
}

func (s *Store) discardRow() {
	s.discardRowAt(s.pendingFirstField)
}

// RowCount returns the number of stored rows.
func (s *Store) RowCount() int { return len(s.rows) }

// FieldCount returns the number of fields in row i, or -1 if i is out of
// range.
func (s *Store) FieldCount(row int) int {
	if row < 0 || row >= len(s.rows) {
		return -1
	}
	return s.rows[row].fieldCount
}

// Field returns the borrowed bytes of field (row, col). The returned slice
// is valid until the next Reset. ok is false if the indices are out of
// range.
func (s *Store) Field(row, col int) (field []byte, ok bool) {
	if row < 0 || row >= len(s.rows) {
		return nil, false
	}
	r := s.rows[row]
	if col < 0 || col >= r.fieldCount {
		return nil, false
	}
	f := s.fields[r.firstField+col]
	return s.arena[f.start:f.end], true
}

// Row returns a copy of row i as a [][]byte of borrowed field slices, or
// nil if i is out of range. Unlike Field, this allocates the outer slice
// (but never the field bytes) for convenience callers that want a whole
// row at once (e.g. PackedCodec, JSON export).
func (s *Store) Row(i int) [][]byte {
	if i < 0 || i >= len(s.rows) {
		return nil
	}
	r := s.rows[i]
	out := make([][]byte, r.fieldCount)
	for j := 0; j < r.fieldCount; j++ {
		f := s.fields[r.firstField+j]
		out[j] = s.arena[f.start:f.end]
	}
	return out
}

// SourceByteCount returns the total input bytes consumed by the parse that
// produced this Store.
func (s *Store) SourceByteCount() int64 { return s.sourceByteCount }

// StatusOK reports whether the parse that produced this Store succeeded.
func (s *Store) StatusOK() bool { return s.status.OK }

// StatusErr returns the failure recorded on this Store, or nil if StatusOK.
func (s *Store) StatusErr() *Error { return s.status.Err }
