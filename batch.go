package ocsv

// BatchParser parses a complete, already-in-memory input in one call (spec
// §4.5). It owns a StateMachine and a Store and resets both before each
// parse so the parser can be reused across many inputs without
// reallocating its field arena's backing capacity.
type BatchParser struct {
	dialect Dialect
	sm      *StateMachine
	store   *Store
}

// NewBatchParser validates d and returns a BatchParser ready to Parse.
func NewBatchParser(d Dialect) (*BatchParser, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &BatchParser{
		dialect: d,
		sm:      NewStateMachine(d),
		store:   NewStore(),
	}, nil
}

// Parse runs input through the automaton to completion and returns the
// resulting Store. The returned Store is owned by the BatchParser and is
// invalidated by the next Parse call unless Pin is held.
func (p *BatchParser) Parse(input []byte) (*Store, error) {
	if p.store.pinned {
		return nil, newError(ErrStorePinnedKind, 0, 0, "store is pinned by an active LazyView; Unpin before reusing the parser")
	}
	p.store.Reset()
	p.sm.Reset()

	s := NewScanner(input)
	if err := p.sm.Feed(s, p.store); err != nil {
		p.store.status = Status{OK: false, Err: toError(err)}
		return p.store, err
	}
	if err := p.sm.Finish(p.store); err != nil {
		p.store.status = Status{OK: false, Err: toError(err)}
		return p.store, err
	}
	p.store.sourceByteCount = int64(len(input))
	p.store.status = Status{OK: true}
	return p.store, nil
}

func toError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return newError(ErrAllocationFailedKind, 0, 0, err.Error())
}

// *Store satisfies rowSink directly (see store.go); BatchParser.Parse
// drives the StateMachine with p.store as the sink.
var _ rowSink = (*Store)(nil)
