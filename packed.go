package ocsv

import (
	"encoding/binary"
	"fmt"
)

// packedMagic identifies the PackedCodec binary format (spec §4.9):
// ASCII "OCSV" read as a big-endian uint32.
const packedMagic uint32 = 0x4F435356

const packedVersion uint32 = 1

// maxPackedFieldLen is the largest field length representable by the
// format's 16-bit per-field length prefix.
const maxPackedFieldLen = 0xFFFF

// PackedCodec encodes and decodes a Store to and from the compact binary
// layout used to hand parsed rows across the C ABI boundary without a
// JSON round trip (spec §4.9). Layout, all little-endian:
//
//	magic:       u32 = 0x4F435356 ("OCSV")
//	version:     u32 = 1
//	row_count:   u32
//	field_count: u32                 // maximum row arity; rectangular view
//	total_bytes: u64                 // size of the whole buffer, header included
//	row_offsets: u32 × row_count     // byte offset from buffer start to each row
//	row_data:    row_count × [field_count × (len:u16, data:byte × len)]
//
// Rows shorter than field_count are padded on encode with zero-length
// fields so every row occupies field_count field slots: the buffer is a
// rectangular view, and row_offsets lets a consumer locate any row
// without walking every row before it. total_bytes makes the buffer
// self-describing per spec, in addition to the length the C ABI's
// ocsv_rows_to_packed_buffer also returns for convenience.
type PackedCodec struct{}

// packedHeaderSize is the fixed portion of the header, before the
// row_offsets table.
const packedHeaderSize = 4 + 4 + 4 + 4 + 8

// Encode serialises every row of s into the packed format. It fails if
// any field exceeds the format's 65535-byte per-field length limit.
func (PackedCodec) Encode(s *Store) ([]byte, error) {
	rowCount := s.RowCount()
	rows := make([][][]byte, rowCount)
	fieldCount := 0
	for i := 0; i < rowCount; i++ {
		fields := s.Row(i)
		rows[i] = fields
		if len(fields) > fieldCount {
			fieldCount = len(fields)
		}
	}

	rowDataSize := 0
	for i := 0; i < rowCount; i++ {
		for _, f := range rows[i] {
			if len(f) > maxPackedFieldLen {
				return nil, fmt.Errorf("ocsv: field in row %d exceeds packed format's %d-byte field length limit (%d bytes)", i, maxPackedFieldLen, len(f))
			}
			rowDataSize += 2 + len(f)
		}
		rowDataSize += 2 * (fieldCount - len(rows[i])) // zero-length padding fields
	}

	offsetsSize := 4 * rowCount
	totalBytes := packedHeaderSize + offsetsSize + rowDataSize

	buf := make([]byte, totalBytes)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], packedMagic)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], packedVersion)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(rowCount))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(fieldCount))
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(totalBytes))
	off += 8

	offsetsStart := off
	off += offsetsSize

	for i := 0; i < rowCount; i++ {
		binary.LittleEndian.PutUint32(buf[offsetsStart+4*i:], uint32(off))
		fields := rows[i]
		for j := 0; j < fieldCount; j++ {
			var f []byte
			if j < len(fields) {
				f = fields[j]
			}
			binary.LittleEndian.PutUint16(buf[off:], uint16(len(f)))
			off += 2
			off += copy(buf[off:], f)
		}
	}
	return buf, nil
}

// Decode parses a buffer produced by Encode back into a fresh Store. Rows
// are reconstructed with exactly field_count fields each, so a row that
// was shorter than field_count at encode time comes back padded with
// trailing empty fields (the wire format has no way to distinguish that
// padding from a field that was genuinely empty).
func (PackedCodec) Decode(buf []byte) (*Store, error) {
	if len(buf) < packedHeaderSize {
		return nil, fmt.Errorf("ocsv: packed buffer too short (%d bytes)", len(buf))
	}
	off := 0
	magic := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if magic != packedMagic {
		return nil, fmt.Errorf("ocsv: packed buffer has bad magic %#x", magic)
	}
	version := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if version != packedVersion {
		return nil, fmt.Errorf("ocsv: packed buffer has unsupported version %d", version)
	}
	rowCount := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	fieldCount := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	totalBytes := binary.LittleEndian.Uint64(buf[off:])
	off += 8
	if totalBytes > uint64(len(buf)) {
		return nil, fmt.Errorf("ocsv: packed buffer truncated: header declares %d bytes, have %d", totalBytes, len(buf))
	}

	offsetsStart := off
	offsetsSize := 4 * int(rowCount)
	if offsetsStart+offsetsSize > int(totalBytes) {
		return nil, fmt.Errorf("ocsv: packed buffer truncated at row_offsets table")
	}

	store := NewStore()
	for r := uint32(0); r < rowCount; r++ {
		pos := int(binary.LittleEndian.Uint32(buf[offsetsStart+4*int(r):]))
		firstField := len(store.fields)
		for f := uint32(0); f < fieldCount; f++ {
			if pos+2 > int(totalBytes) {
				return nil, fmt.Errorf("ocsv: packed buffer truncated at row %d field %d header", r, f)
			}
			flen := binary.LittleEndian.Uint16(buf[pos:])
			pos += 2
			if pos+int(flen) > int(totalBytes) {
				return nil, fmt.Errorf("ocsv: packed buffer truncated at row %d field %d body", r, f)
			}
			if flen == 0 {
				store.pushEmptyField()
			} else {
				store.pushField(buf[pos : pos+int(flen)])
			}
			pos += int(flen)
		}
		store.finishRowAt(firstField)
	}
	store.status = Status{OK: true}
	return store, nil
}
