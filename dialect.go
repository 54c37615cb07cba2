package ocsv

// Dialect is an immutable, value-copyable bundle of parse rules (spec §3,
// §4.1). The zero value is not valid; use DefaultDialect.
type Dialect struct {
	Delimiter byte
	Quote     byte
	Escape    byte
	Comment   byte // 0 disables comment handling

	Relaxed        bool
	SkipEmptyLines bool
	Trim           bool

	MaxFieldBytes uint64 // 0 means unbounded
	MaxRowBytes   uint64 // 0 means unbounded

	FromLine int // -1 means open
	ToLine   int // -1 means open

	SkipLinesWithError bool
}

// DefaultDialect returns the RFC 4180 default configuration: comma
// delimiter, double-quote quoting and escaping, '#' comments disabled by
// default (matching RFC 4180, which has no comment convention), and no
// row window.
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter: ',',
		Quote:     '"',
		Escape:    '"',
		Comment:   0,
		FromLine:  -1,
		ToLine:    -1,
	}
}

// Validate checks the delimiter/quote/escape/comment collision rules from
// spec §4.1. It is called once at parser construction (NewBatchParser,
// NewStreamParser, NewParallelDriver) and when a preset is loaded; a
// parser keeps its own copy of the Dialect, so it is not re-validated
// later.
func (d Dialect) Validate() error {
	if d.Delimiter == '\n' || d.Delimiter == '\r' {
		return newError(ErrInvalidDialectKind, 0, 0, "delimiter must not be a newline")
	}
	if d.Quote == '\n' || d.Quote == '\r' {
		return newError(ErrInvalidDialectKind, 0, 0, "quote must not be a newline")
	}
	if d.Escape == '\n' || d.Escape == '\r' {
		return newError(ErrInvalidDialectKind, 0, 0, "escape must not be a newline")
	}
	if d.Delimiter == d.Quote {
		return newError(ErrInvalidDialectKind, 0, 0, "delimiter and quote must differ")
	}
	if d.Comment != 0 {
		if d.Comment == d.Delimiter {
			return newError(ErrInvalidDialectKind, 0, 0, "comment and delimiter must differ")
		}
		if d.Comment == d.Quote {
			return newError(ErrInvalidDialectKind, 0, 0, "comment and quote must differ")
		}
		if d.Comment == '\n' || d.Comment == '\r' {
			return newError(ErrInvalidDialectKind, 0, 0, "comment must not be a newline")
		}
	}
	return nil
}

// inWindow reports whether the 0-based row index idx falls within
// [FromLine, ToLine] (an unset bound is -1, meaning open).
func (d Dialect) inWindow(idx int) bool {
	if d.FromLine >= 0 && idx < d.FromLine {
		return false
	}
	if d.ToLine >= 0 && idx > d.ToLine {
		return false
	}
	return true
}

// classTable is the 256-entry lookup table described in spec §4.3: rather
// than branching on delimiter/quote/comment/CR/LF on every byte, each byte
// value maps directly to its structural class for the active Dialect. The
// table is rebuilt whenever the Dialect changes.
type classTable [256]byteClass

type byteClass uint8

const (
	classOther byteClass = iota
	classDelimiter
	classQuote
	classNewline
	classCR
	classComment
)

func buildClassTable(d Dialect) *classTable {
	var t classTable
	t[d.Delimiter] = classDelimiter
	t[d.Quote] = classQuote
	t['\n'] = classNewline
	t['\r'] = classCR
	if d.Comment != 0 {
		t[d.Comment] = classComment
	}
	return &t
}
