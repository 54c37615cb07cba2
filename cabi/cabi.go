// Command cabi builds the C ABI surface of ocsv (spec §4.10) as a shared
// library (`go build -buildmode=c-shared`): a flat set of cgo-exported
// functions operating on opaque handles, so the engine can be linked
// into a non-Go host process. Every function here is a thin adapter —
// argument marshalling, handle lookups, and error-to-sentinel
// translation — over the pure-Go ocsv package; no parsing logic lives in
// this package.
package main

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"encoding/json"
	"errors"
	"unsafe"

	"github.com/ocsv/ocsvcore"
	"github.com/ocsv/ocsvcore/internal/handle"
)

var registry = handle.New()

// statusCode mirrors ocsv.ErrorKind plus a couple of ABI-only codes, as a
// plain integer a C caller can switch on without binding Go types.
type statusCode C.int32_t

const (
	statusOK                 statusCode = 0
	statusInvalidHandle      statusCode = 1
	statusInvalidDialect     statusCode = 2
	statusUnterminatedQuote  statusCode = 3
	statusInvalidCharAfterQ  statusCode = 4
	statusFieldTooLarge      statusCode = 5
	statusRowTooLarge        statusCode = 6
	statusOutOfRange         statusCode = 7
	statusUseAfterDestroy    statusCode = 8
	statusAllocationFailed   statusCode = 9
	statusStorePinned        statusCode = 10
	statusUnknownError       statusCode = 99
)

// statusFromError classifies err for a C caller. Most of the package
// returns a structured *ocsv.Error with a Kind to switch on directly;
// LazyView instead returns its bare package sentinels (ErrOutOfRange,
// ErrUseAfterDestroy) since it has no line/column to attach to them, so
// those are matched with errors.Is before falling back to unknown.
func statusFromError(err error) statusCode {
	if err == nil {
		return statusOK
	}
	if e, ok := err.(*ocsv.Error); ok {
		switch e.Kind {
		case ocsv.ErrInvalidDialectKind:
			return statusInvalidDialect
		case ocsv.ErrUnterminatedQuoteKind:
			return statusUnterminatedQuote
		case ocsv.ErrInvalidCharAfterQuoteKind:
			return statusInvalidCharAfterQ
		case ocsv.ErrFieldTooLargeKind:
			return statusFieldTooLarge
		case ocsv.ErrRowTooLargeKind:
			return statusRowTooLarge
		case ocsv.ErrOutOfRangeKind:
			return statusOutOfRange
		case ocsv.ErrUseAfterDestroyKind:
			return statusUseAfterDestroy
		case ocsv.ErrAllocationFailedKind:
			return statusAllocationFailed
		case ocsv.ErrStorePinnedKind:
			return statusStorePinned
		default:
			return statusUnknownError
		}
	}
	switch {
	case errors.Is(err, ocsv.ErrOutOfRange):
		return statusOutOfRange
	case errors.Is(err, ocsv.ErrUseAfterDestroy):
		return statusUseAfterDestroy
	default:
		return statusUnknownError
	}
}

// ocsv_parser_create allocates a BatchParser for the given single-byte
// dialect fields and returns its handle, or 0 on invalid dialect (check
// outStatus).
//
//export ocsv_parser_create
func ocsv_parser_create(delimiter, quote, escape, comment C.uint8_t, relaxed, trim, skipEmptyLines C.int32_t, maxFieldBytes, maxRowBytes C.uint64_t, outStatus *C.int32_t) C.uint64_t {
	d := ocsv.DefaultDialect()
	d.Delimiter = byte(delimiter)
	d.Quote = byte(quote)
	d.Escape = byte(escape)
	d.Comment = byte(comment)
	d.Relaxed = relaxed != 0
	d.Trim = trim != 0
	d.SkipEmptyLines = skipEmptyLines != 0
	d.MaxFieldBytes = uint64(maxFieldBytes)
	d.MaxRowBytes = uint64(maxRowBytes)

	bp, err := ocsv.NewBatchParser(d)
	if err != nil {
		*outStatus = C.int32_t(statusFromError(err))
		return 0
	}
	id := registry.Put(bp)
	*outStatus = C.int32_t(statusOK)
	return C.uint64_t(id)
}

// ocsv_parser_destroy releases a parser handle. Safe to call with an
// already-invalid handle.
//
//export ocsv_parser_destroy
func ocsv_parser_destroy(parserHandle C.uint64_t) {
	registry.Delete(handle.ID(parserHandle))
}

func lookupParser(h C.uint64_t) (*ocsv.BatchParser, bool) {
	v, ok := registry.Get(handle.ID(h))
	if !ok {
		return nil, false
	}
	bp, ok := v.(*ocsv.BatchParser)
	return bp, ok
}

func lookupStore(h C.uint64_t) (*ocsv.Store, bool) {
	v, ok := registry.Get(handle.ID(h))
	if !ok {
		return nil, false
	}
	st, ok := v.(*ocsv.Store)
	return st, ok
}

func lookupView(h C.uint64_t) (*ocsv.LazyView, bool) {
	v, ok := registry.Get(handle.ID(h))
	if !ok {
		return nil, false
	}
	view, ok := v.(*ocsv.LazyView)
	return view, ok
}

// ocsv_parse_string parses data (length-delimited, not null-terminated,
// since field content may itself contain NUL bytes) using parserHandle
// and returns a handle to the resulting Store with outStatus set. On a
// parse error the partially filled Store is still returned as a handle,
// with outStatus holding the error; 0 is returned only when no Store is
// produced (an invalid parser handle, or a parser whose Store is pinned).
//
//export ocsv_parse_string
func ocsv_parse_string(parserHandle C.uint64_t, data *C.char, dataLen C.int64_t, outStatus *C.int32_t) C.uint64_t {
	bp, ok := lookupParser(parserHandle)
	if !ok {
		*outStatus = C.int32_t(statusInvalidHandle)
		return 0
	}
	input := C.GoBytes(unsafe.Pointer(data), C.int(dataLen))
	store, err := bp.Parse(input)
	if err != nil && store == nil {
		*outStatus = C.int32_t(statusFromError(err))
		return 0
	}
	id := registry.Put(store)
	*outStatus = C.int32_t(statusFromError(err))
	return C.uint64_t(id)
}

// ocsv_store_destroy releases a Store handle.
//
//export ocsv_store_destroy
func ocsv_store_destroy(storeHandle C.uint64_t) {
	registry.Delete(handle.ID(storeHandle))
}

// ocsv_get_row_count returns the number of rows in storeHandle's Store,
// or -1 if the handle is invalid.
//
//export ocsv_get_row_count
func ocsv_get_row_count(storeHandle C.uint64_t) C.int64_t {
	st, ok := lookupStore(storeHandle)
	if !ok {
		return -1
	}
	return C.int64_t(st.RowCount())
}

// ocsv_get_field_count returns the number of fields in row, or -1 if the
// handle or row index is invalid.
//
//export ocsv_get_field_count
func ocsv_get_field_count(storeHandle C.uint64_t, row C.int64_t) C.int64_t {
	st, ok := lookupStore(storeHandle)
	if !ok {
		return -1
	}
	return C.int64_t(st.FieldCount(int(row)))
}

// ocsv_get_field writes the bytes of field (row, col) into a
// caller-supplied buffer and returns the field's true length (which may
// exceed bufLen; callers should retry with a larger buffer if so, the
// same contract snprintf uses). Returns -1 on an invalid handle or
// out-of-range row/col.
//
//export ocsv_get_field
func ocsv_get_field(storeHandle C.uint64_t, row, col C.int64_t, buf *C.char, bufLen C.int64_t) C.int64_t {
	st, ok := lookupStore(storeHandle)
	if !ok {
		return -1
	}
	field, ok := st.Field(int(row), int(col))
	if !ok {
		return -1
	}
	if bufLen > 0 && buf != nil {
		n := len(field)
		if C.int64_t(n) > bufLen {
			n = int(bufLen)
		}
		if n > 0 {
			C.memcpy(unsafe.Pointer(buf), unsafe.Pointer(&field[0]), C.size_t(n))
		}
	}
	return C.int64_t(len(field))
}

// ocsv_rows_to_json renders every row of storeHandle as a JSON array of
// string arrays, matching spec §4.10's JSON export surface, and returns
// a heap-allocated, NUL-terminated C string the caller must release with
// ocsv_free_json_string.
//
//export ocsv_rows_to_json
func ocsv_rows_to_json(storeHandle C.uint64_t) *C.char {
	st, ok := lookupStore(storeHandle)
	if !ok {
		return nil
	}
	rows := make([][]string, st.RowCount())
	for i := range rows {
		fields := st.Row(i)
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = string(f)
		}
		rows[i] = row
	}
	out, err := json.Marshal(rows)
	if err != nil {
		return nil
	}
	return C.CString(string(out))
}

// ocsv_free_json_string releases a string returned by
// ocsv_rows_to_json.
//
//export ocsv_free_json_string
func ocsv_free_json_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

// ocsv_rows_to_packed_buffer encodes every row of storeHandle with
// PackedCodec and writes it into a freshly C-malloc'd buffer, returning
// its pointer via outBuf and its length via the return value (-1 on an
// invalid handle or an encoding failure, e.g. a field too large for the
// format's 16-bit length prefix). The caller owns outBuf and must
// free() it.
//
//export ocsv_rows_to_packed_buffer
func ocsv_rows_to_packed_buffer(storeHandle C.uint64_t, outBuf **C.char) C.int64_t {
	st, ok := lookupStore(storeHandle)
	if !ok {
		return -1
	}
	packed, err := ocsv.PackedCodec{}.Encode(st)
	if err != nil {
		return -1
	}
	cbuf := C.malloc(C.size_t(len(packed)))
	if cbuf == nil {
		return -1
	}
	if len(packed) > 0 {
		C.memcpy(cbuf, unsafe.Pointer(&packed[0]), C.size_t(len(packed)))
	}
	*outBuf = (*C.char)(cbuf)
	return C.int64_t(len(packed))
}

// ocsv_view_create opens a LazyView over storeHandle starting at
// rowOffset and returns its handle, or 0 if storeHandle is invalid.
//
//export ocsv_view_create
func ocsv_view_create(storeHandle C.uint64_t, rowOffset C.int64_t) C.uint64_t {
	st, ok := lookupStore(storeHandle)
	if !ok {
		return 0
	}
	view := ocsv.NewLazyView(st, int(rowOffset))
	return C.uint64_t(registry.Put(view))
}

// ocsv_view_destroy destroys a LazyView, releasing its Store pin.
//
//export ocsv_view_destroy
func ocsv_view_destroy(viewHandle C.uint64_t) {
	if v, ok := lookupView(viewHandle); ok {
		v.Destroy()
	}
	registry.Delete(handle.ID(viewHandle))
}

// ocsv_view_get_field mirrors ocsv_get_field but goes through a
// LazyView's LRU cache instead of a raw Store lookup.
//
//export ocsv_view_get_field
func ocsv_view_get_field(viewHandle C.uint64_t, row, col C.int64_t, buf *C.char, bufLen C.int64_t) C.int64_t {
	view, ok := lookupView(viewHandle)
	if !ok {
		return -1
	}
	field, err := view.Field(int(row), int(col))
	if err != nil {
		return -1
	}
	if bufLen > 0 && buf != nil {
		n := len(field)
		if C.int64_t(n) > bufLen {
			n = int(bufLen)
		}
		if n > 0 {
			C.memcpy(unsafe.Pointer(buf), unsafe.Pointer(&field[0]), C.size_t(n))
		}
	}
	return C.int64_t(len(field))
}

func main() {}
