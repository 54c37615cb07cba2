package ocsv

import (
	"bufio"
	"bytes"
	"io"
)

// Writer serialises rows back to delimited text, the inverse of
// BatchParser, per spec SUPPLEMENTED FEATURES. Quoting follows RFC 4180:
// a field is quoted if it contains the delimiter, the quote byte, a
// newline, or a carriage return, or if it starts/ends with ASCII space
// under a Trim-enabled Dialect (so the round trip through a trimming
// reader reproduces the original field).
type Writer struct {
	dialect Dialect
	w       *bufio.Writer

	// UseCRLF writes "\r\n" instead of "\n" between rows, matching
	// encoding/csv's option of the same name.
	UseCRLF bool
}

// NewWriter returns a Writer using d's delimiter, quote, and escape
// bytes. d.Relaxed/SkipEmptyLines/MaxFieldBytes/etc. have no effect on
// writing; only the byte configuration and d.Trim (which quotes fields
// with leading or trailing space) are used.
func NewWriter(w io.Writer, d Dialect) *Writer {
	return &Writer{dialect: d, w: bufio.NewWriter(w)}
}

// WriteRow writes one row and returns any write error.
func (wr *Writer) WriteRow(fields [][]byte) error {
	for i, f := range fields {
		if i > 0 {
			if err := wr.w.WriteByte(wr.dialect.Delimiter); err != nil {
				return err
			}
		}
		if err := wr.writeField(f); err != nil {
			return err
		}
	}
	if wr.UseCRLF {
		_, err := wr.w.WriteString("\r\n")
		return err
	}
	return wr.w.WriteByte('\n')
}

func (wr *Writer) writeField(f []byte) error {
	if !wr.needsQuoting(f) {
		_, err := wr.w.Write(f)
		return err
	}
	if err := wr.w.WriteByte(wr.dialect.Quote); err != nil {
		return err
	}
	start := 0
	for i, b := range f {
		if b == wr.dialect.Quote {
			if _, err := wr.w.Write(f[start:i]); err != nil {
				return err
			}
			if err := wr.w.WriteByte(wr.dialect.Escape); err != nil {
				return err
			}
			start = i
		}
	}
	if _, err := wr.w.Write(f[start:]); err != nil {
		return err
	}
	return wr.w.WriteByte(wr.dialect.Quote)
}

func (wr *Writer) needsQuoting(f []byte) bool {
	if len(f) == 0 {
		return false
	}
	if bytes.IndexByte(f, wr.dialect.Delimiter) >= 0 ||
		bytes.IndexByte(f, wr.dialect.Quote) >= 0 ||
		bytes.IndexByte(f, '\n') >= 0 ||
		bytes.IndexByte(f, '\r') >= 0 {
		return true
	}
	if wr.dialect.Trim && (isASCIISpace(f[0]) || isASCIISpace(f[len(f)-1])) {
		return true
	}
	return false
}

// Flush flushes any buffered output to the underlying io.Writer.
func (wr *Writer) Flush() error {
	return wr.w.Flush()
}
