package ocsv

// RowCallback receives one completed, in-window row as borrowed field
// slices valid only for the duration of the call (spec §4.6). Returning
// false stops the stream early, the same way bufio.Scanner callers signal
// "no more needed".
type RowCallback func(fields [][]byte) bool

// ErrCallback receives every error that Feed or Finish returns. With
// SkipLinesWithError set, malformed-quote rows met during Feed are skipped
// without an error, but field/row size errors and an unterminated quote at
// Finish still reach it.
type ErrCallback func(err *Error)

// StreamParser drives the StateMachine across repeated Feed calls,
// carrying field/row state between chunks so a chunk boundary can land in
// the middle of a quoted field, an escaped quote, or a multi-byte UTF-8
// rune without corrupting the result (spec §4.6, the "carry-buffer
// pitfall"). It implements rowSink itself, buffering the fields of the
// row currently in progress and invoking RowCallback only once that row
// is complete.
type StreamParser struct {
	dialect Dialect
	sm      *StateMachine
	rowCB   RowCallback
	errCB   ErrCallback

	rowFields [][]byte
	carry     []byte // unconsumed multi-byte UTF-8 tail from the previous chunk
	stopped   bool
	finished  bool
}

// NewStreamParser validates d and returns a StreamParser that will call
// rowCB for each completed in-window row and errCB for each error (if
// errCB is nil, errors are reported only through Feed's and Finish's
// return values; an error does not mark the parser stopped).
func NewStreamParser(d Dialect, rowCB RowCallback, errCB ErrCallback) (*StreamParser, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &StreamParser{
		dialect: d,
		sm:      NewStateMachine(d),
		rowCB:   rowCB,
		errCB:   errCB,
	}, nil
}

// pushField, pushEmptyField, finishRow, discardRow implement rowSink.
func (p *StreamParser) pushField(b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	p.rowFields = append(p.rowFields, cp)
}

func (p *StreamParser) pushEmptyField() {
	p.rowFields = append(p.rowFields, []byte{})
}

func (p *StreamParser) finishRow() error {
	fields := p.rowFields
	p.rowFields = nil
	if p.rowCB != nil && !p.rowCB(fields) {
		p.stopped = true
		p.sm.stopped = true
	}
	return nil
}

func (p *StreamParser) discardRow() {
	p.rowFields = nil
}

// Feed consumes one chunk of input. Any trailing bytes that form a
// partial multi-byte UTF-8 rune (or the dialect's multi-byte escape
// sequence; ocsv's escape/quote/delimiter/comment are always single
// bytes, so only UTF-8 continuation bytes are at risk) are retained in
// carry and prefixed onto the next chunk, rather than fed to the
// StateMachine early. Ordinary ASCII and already-complete multi-byte
// runes are fed immediately: only a genuinely incomplete trailing
// sequence is held back, so Feed never buffers more than three bytes
// across calls.
func (p *StreamParser) Feed(chunk []byte) error {
	if p.stopped || p.finished {
		return nil
	}
	buf := chunk
	if len(p.carry) > 0 {
		buf = append(append([]byte{}, p.carry...), chunk...)
		p.carry = nil
	}

	consumeUpTo := len(buf)
	if tail := trailingPartialRuneLen(buf); tail > 0 {
		consumeUpTo = len(buf) - tail
		p.carry = append(p.carry, buf[consumeUpTo:]...)
	}

	s := NewScanner(buf[:consumeUpTo])
	err := p.sm.Feed(s, p)
	if err != nil {
		if e, ok := err.(*Error); ok && p.errCB != nil {
			p.errCB(e)
		}
		return err
	}
	return nil
}

// trailingPartialRuneLen reports how many trailing bytes of buf form an
// incomplete multi-byte UTF-8 sequence (0 if buf ends on a complete
// sequence or plain ASCII). It locates the last lead byte within the
// final 3 bytes of buf and asks a Scanner positioned there to TakeRune,
// reusing the same partial-detection Scanner uses internally rather than
// re-deriving it.
func trailingPartialRuneLen(buf []byte) int {
	limit := 3
	if len(buf) < limit {
		limit = len(buf)
	}
	for back := 1; back <= limit; back++ {
		lead := buf[len(buf)-back]
		cont := utf8ContinuationCount(lead)
		if cont < 0 {
			continue // not a lead byte; keep looking further back
		}
		if cont == 0 {
			return 0 // ASCII byte this far back means no partial sequence
		}
		s := NewScanner(buf[len(buf)-back:])
		if _, _, partial := s.TakeRune(); partial {
			return back
		}
		return 0
	}
	return 0
}

// Finish signals true end of input: any carry bytes are flushed as raw
// content (an incomplete sequence at true EOF is invalid input, handled
// like any other byte by the StateMachine) and EOF finalisation runs.
func (p *StreamParser) Finish() error {
	if p.finished {
		return nil
	}
	p.finished = true
	if p.stopped {
		return nil
	}
	if len(p.carry) > 0 {
		s := NewScanner(p.carry)
		p.carry = nil
		if err := p.sm.Feed(s, p); err != nil {
			if e, ok := err.(*Error); ok && p.errCB != nil {
				p.errCB(e)
			}
			return err
		}
	}
	if err := p.sm.Finish(p); err != nil {
		if e, ok := err.(*Error); ok && p.errCB != nil {
			p.errCB(e)
		}
		return err
	}
	return nil
}
