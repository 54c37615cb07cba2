package ocsv

// smState is one of the five automaton states from spec §4.3.
type smState int

const (
	stFieldStart smState = iota
	stInField
	stInQuotedField
	stQuoteInQuote
	stLineComment
)

// rowSink receives field and row events from the StateMachine. BatchParser
// backs it with a Store; StreamParser backs it with its row-fields buffer
// and invokes the caller's callback on finishRow.
type rowSink interface {
	pushField(b []byte)
	pushEmptyField()
	// finishRow is called once all fields of a completed, in-window row
	// have been pushed. A returned error halts the feed; neither Store nor
	// StreamParser returns one (StreamParser signals a stop requested by
	// its row callback through the StateMachine's stopped flag instead).
	finishRow() error
	// discardRow drops whatever fields were pushed since the last
	// finishRow/discardRow call, for window filtering, skip_empty_lines,
	// and skip_lines_with_error recovery.
	discardRow()
}

// StateMachine implements the RFC 4180 automaton of spec §4.3: byte-level
// transitions over a 256-entry class table, carrying enough state
// (partial field buffer, quote/comment state, line/column counters) to be
// driven across arbitrary chunk boundaries by StreamParser, or straight
// through by BatchParser.
type StateMachine struct {
	dialect Dialect
	classes *classTable

	state   smState
	field   []byte // partial field content accumulated so far
	rowFld  int    // fields pushed in the row in progress
	rowLen  uint64 // bytes consumed for the row in progress (max_row_bytes)
	rowIdx  int    // 0-based index of the row currently being assembled
	rowHasB bool   // at least one non-CR byte has been consumed on this row

	line   int
	column int

	stopped bool
}

// NewStateMachine returns a StateMachine initialised to FieldStart for the
// given Dialect.
func NewStateMachine(d Dialect) *StateMachine {
	return &StateMachine{
		dialect: d,
		classes: buildClassTable(d),
		state:   stFieldStart,
		line:    1,
		column:  1,
	}
}

// Reset returns the StateMachine to its initial state for a fresh parse,
// reusing its field buffer's capacity.
func (m *StateMachine) Reset() {
	m.state = stFieldStart
	m.field = m.field[:0]
	m.rowFld = 0
	m.rowLen = 0
	m.rowIdx = 0
	m.rowHasB = false
	m.line = 1
	m.column = 1
	m.stopped = false
}

func (m *StateMachine) class(b byte) byteClass { return m.classes[b] }

func (m *StateMachine) advanceLineCol(b byte) {
	if b == '\n' {
		m.line++
		m.column = 1
	} else {
		m.column++
	}
}

func (m *StateMachine) err(kind ErrorKind, msg string) *Error {
	return newError(kind, m.line, m.column, msg)
}

func (m *StateMachine) checkFieldLimit() *Error {
	if m.dialect.MaxFieldBytes != 0 && uint64(len(m.field)) > m.dialect.MaxFieldBytes {
		return m.err(ErrFieldTooLargeKind, "field exceeds max_field_bytes")
	}
	return nil
}

func (m *StateMachine) checkRowLimit() *Error {
	if m.dialect.MaxRowBytes != 0 && m.rowLen > m.dialect.MaxRowBytes {
		return m.err(ErrRowTooLargeKind, "row exceeds max_row_bytes")
	}
	return nil
}

// appendByte appends b to the in-progress field buffer, enforcing
// max_field_bytes.
func (m *StateMachine) appendByte(b byte) *Error {
	m.field = append(m.field, b)
	return m.checkFieldLimit()
}

// commitField pushes the accumulated field buffer (trimmed if configured)
// to sink and clears it. wasQuoted is tracked by the caller; a quoted
// field is never trimmed.
func (m *StateMachine) commitField(sink rowSink, wasQuoted bool) {
	b := m.field
	if m.dialect.Trim && !wasQuoted {
		b = trimASCIISpace(b)
	}
	if len(b) == 0 {
		sink.pushEmptyField()
	} else {
		sink.pushField(b)
	}
	m.rowFld++
	m.field = m.field[:0]
}

func trimASCIISpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isASCIISpace(b[start]) {
		start++
	}
	for end > start && isASCIISpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}

// finishOrDiscardRow applies window filtering (spec §4.3 "Window
// filtering") then advances rowIdx.
func (m *StateMachine) finishOrDiscardRow(sink rowSink) error {
	keep := m.dialect.inWindow(m.rowIdx)
	m.rowIdx++
	m.rowFld = 0
	m.rowLen = 0
	m.rowHasB = false
	if keep {
		return sink.finishRow()
	}
	sink.discardRow()
	return nil
}

// dropRow discards the fields pushed so far for the in-progress row
// without counting it as a produced row at all (comment lines,
// skip_empty_lines) — rowIdx is not advanced.
func (m *StateMachine) dropRow(sink rowSink) {
	sink.discardRow()
	m.rowFld = 0
	m.rowLen = 0
	m.rowHasB = false
}

// Feed drives the automaton over every byte in s until s reaches EOF. It
// does not perform EOF finalisation (see Finish) so that StreamParser can
// call Feed repeatedly across chunks and only Finish once, at true input
// end.
func (m *StateMachine) Feed(s *Scanner, sink rowSink) error {
	for {
		b, ok := s.Advance()
		if !ok {
			return nil
		}
		if err := m.step(b, sink); err != nil {
			if m.dialect.SkipLinesWithError && recoverable(err) {
				m.recoverRow(sink)
				continue
			}
			return err
		}
		if m.stopped {
			return nil
		}
	}
}

func recoverable(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	switch e.Kind {
	case ErrInvalidCharAfterQuoteKind, ErrUnterminatedQuoteKind:
		return true
	default:
		return false
	}
}

// recoverRow implements skip_lines_with_error recovery: the in-progress
// row and field are dropped, and the remainder of the malformed line is
// discarded by routing through the same byte-skipping state a comment
// line uses, so bytes after the error point are never reinterpreted as
// the start of a new row.
func (m *StateMachine) recoverRow(sink rowSink) {
	m.field = m.field[:0]
	m.dropRow(sink)
	m.state = stLineComment
}

// step processes one byte, per the transition table in spec §4.3.
func (m *StateMachine) step(b byte, sink rowSink) error {
	wasRowEmptyBefore := !m.rowHasB
	m.rowLen++
	class := m.class(b)
	// A lone CR carries no content of its own (it's dropped, not stored,
	// in every state that handles it) — ignoring it here keeps a CRLF
	// empty line indistinguishable from a bare LF empty line.
	if class != classCR {
		m.rowHasB = true
	}

	var stepErr error
	switch m.state {
	case stFieldStart:
		stepErr = m.stepFieldStart(b, class, sink, wasRowEmptyBefore)
	case stInField:
		stepErr = m.stepInField(b, class, sink)
	case stInQuotedField:
		stepErr = m.stepInQuotedField(b, class)
	case stQuoteInQuote:
		stepErr = m.stepQuoteInQuote(b, class, sink)
	case stLineComment:
		stepErr = m.stepLineComment(b, class, sink)
	}
	m.advanceLineCol(b)
	if stepErr != nil {
		return stepErr
	}
	return m.checkRowLimit()
}

func (m *StateMachine) stepFieldStart(b byte, class byteClass, sink rowSink, rowWasEmpty bool) error {
	switch class {
	case classQuote:
		m.state = stInQuotedField
		return nil
	case classDelimiter:
		sink.pushEmptyField()
		m.rowFld++
		return nil
	case classNewline:
		if rowWasEmpty && m.rowFld == 0 && m.dialect.SkipEmptyLines {
			m.dropRow(sink)
			return nil
		}
		// Either the row already carries content (trailing delimiter,
		// e.g. "a,\n") or it's a genuinely blank line kept per
		// skip_empty_lines=false: both come out as a row with one
		// empty field, matching spec §4.3's "finish empty row".
		sink.pushEmptyField()
		m.rowFld++
		return m.finishOrDiscardRow(sink)
	case classCR:
		return nil
	case classComment:
		if rowWasEmpty {
			m.state = stLineComment
			return nil
		}
		m.state = stInField
		return m.appendByte(b)
	default:
		m.state = stInField
		return m.appendByte(b)
	}
}

func (m *StateMachine) stepInField(b byte, class byteClass, sink rowSink) error {
	switch class {
	case classDelimiter:
		m.commitField(sink, false)
		m.state = stFieldStart
		return nil
	case classNewline:
		m.commitField(sink, false)
		m.state = stFieldStart
		return m.finishOrDiscardRow(sink)
	case classCR:
		return nil
	default:
		return m.appendByte(b)
	}
}

func (m *StateMachine) stepInQuotedField(b byte, class byteClass) error {
	if class == classQuote {
		m.state = stQuoteInQuote
		return nil
	}
	return m.appendByte(b)
}

func (m *StateMachine) stepQuoteInQuote(b byte, class byteClass, sink rowSink) error {
	switch class {
	case classQuote:
		m.state = stInQuotedField
		return m.appendByte(b)
	case classDelimiter:
		m.commitField(sink, true)
		m.state = stFieldStart
		return nil
	case classNewline:
		m.commitField(sink, true)
		m.state = stFieldStart
		return m.finishOrDiscardRow(sink)
	case classCR:
		return nil
	default:
		if m.dialect.Relaxed {
			if err := m.appendByte('"'); err != nil {
				return err
			}
			if err := m.appendByte(b); err != nil {
				return err
			}
			// Lazy-quote recovery (spec §4.3, relaxed mode): once a
			// quoted field runs into trailing garbage instead of a
			// delimiter/newline, treat the rest of the field as
			// unquoted content — a further delimiter or newline ends
			// it immediately, rather than requiring another closing
			// quote. Matches encoding/csv's LazyQuotes behavior.
			m.state = stInField
			return nil
		}
		return m.err(ErrInvalidCharAfterQuoteKind, "unexpected byte after closing quote")
	}
}

func (m *StateMachine) stepLineComment(b byte, class byteClass, sink rowSink) error {
	if class == classNewline {
		m.field = m.field[:0]
		m.dropRow(sink)
		m.state = stFieldStart
		return nil
	}
	return nil
}

// Finish performs EOF finalisation (spec §4.3 "EOF finalisation").
func (m *StateMachine) Finish(sink rowSink) error {
	switch m.state {
	case stInField:
		m.commitField(sink, false)
		return m.finishOrDiscardRow(sink)
	case stQuoteInQuote:
		m.commitField(sink, true)
		return m.finishOrDiscardRow(sink)
	case stInQuotedField:
		if m.dialect.Relaxed {
			m.commitField(sink, true)
			return m.finishOrDiscardRow(sink)
		}
		return m.err(ErrUnterminatedQuoteKind, "unterminated quoted field at EOF")
	case stFieldStart:
		if m.rowFld > 0 {
			sink.pushEmptyField()
			m.rowFld++
			return m.finishOrDiscardRow(sink)
		}
		return nil
	case stLineComment:
		return nil
	}
	return nil
}
