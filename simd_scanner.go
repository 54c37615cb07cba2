package ocsv

import (
	"math/bits"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"
)

// wordScanner finds structural bytes (quote, CR, LF) eight at a
// time using SWAR (SIMD-within-a-register) bit tricks over uint64 words,
// in place of the teacher's goexperiment.simd/archsimd AVX-512 masks. The
// technique is the same — build a bitmask of hit positions per chunk, then
// walk it with trailing-zero counts — but it runs on the ordinary Go
// toolchain and degrades to a scalar byte loop when the input tail is
// shorter than a word, rather than requiring an experimental build tag
// (spec §6: "bitwise-identical to the scalar path").
type wordScanner struct {
	delimiter    uint64
	quote        uint64
	cr           uint64
	lf           uint64
	delimiterRaw byte
	quoteRaw     byte
}

func newWordScanner(d Dialect) wordScanner {
	return wordScanner{
		delimiter:    broadcastByte(d.Delimiter),
		quote:        broadcastByte(d.Quote),
		cr:           broadcastByte('\r'),
		lf:           broadcastByte('\n'),
		delimiterRaw: d.Delimiter,
		quoteRaw:     d.Quote,
	}
}

func broadcastByte(b byte) uint64 {
	return uint64(b) * 0x0101010101010101
}

// hasZeroByte reports, via the classic SWAR haszero trick, whether any byte
// lane of v is zero. Combined with an XOR against a broadcast target byte,
// this is how each mask below tests 8 bytes at once without branching.
func hasZeroByte(v uint64) uint64 {
	return (v - 0x0101010101010101) & ^v & 0x8080808080808080
}

func matchMask(word, target uint64) uint64 {
	return hasZeroByte(word ^ target)
}

// firstMatchOffset returns the byte offset (0-7) of the first set lane in a
// matchMask result, and ok=false if no lane matched.
func firstMatchOffset(mask uint64) (int, bool) {
	if mask == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(mask) / 8, true
}

// simdFeatures records which widened code paths are available on the
// running CPU. Probed once from two independent sources — x/sys/cpu and
// klauspost/cpuid — matching spec §6's requirement that the fast path be
// runtime-detected rather than compile-time-selected, and cross-checked so
// a single library's misdetection on an unusual host falls back safely.
type simdFeatures struct {
	sse2   bool
	avx2   bool
	forced *bool // non-nil when overridden by ForceScalarScan for tests
}

var detectedFeatures = detectSIMDFeatures()

func detectSIMDFeatures() simdFeatures {
	return simdFeatures{
		sse2: cpu.X86.HasSSE2 && cpuid.CPU.Has(cpuid.SSE2),
		avx2: cpu.X86.HasAVX2 && cpuid.CPU.Has(cpuid.AVX2),
	}
}

// widened reports whether the SWAR word-at-a-time path should run. It is
// always safe to say false (the scalar path is always correct); it exists
// purely as a throughput hint, so a probe disagreement between the two
// libraries conservatively resolves to false.
func (f simdFeatures) widened() bool {
	if f.forced != nil {
		return *f.forced
	}
	return f.sse2
}

// ForceScalarScan overrides feature detection for the remainder of the
// process, forcing findNextQuoteOrNewline onto its scalar fallback
// regardless of CPU probes. Intended for tests that need to assert the two
// paths stay bitwise-identical; call ResetScanDetection to restore
// auto-detection.
func ForceScalarScan(forceScalar bool) {
	v := !forceScalar
	detectedFeatures.forced = &v
}

// ResetScanDetection restores CPU-probed auto-detection after a call to
// ForceScalarScan.
func ResetScanDetection() {
	detectedFeatures.forced = nil
}

func nativeEndianWord(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// findNextQuoteOrNewline is the dialect-aware counterpart used by
// Splitter's quote-tracking scan: it needs to see quote bytes in addition
// to line breaks, to know when a quoted field is hiding a newline that
// must not be treated as a row boundary. Delimiters don't affect quote
// state and are skipped like any other ordinary byte.
func findNextQuoteOrNewline(buf []byte, start int, ws wordScanner) (offset int, class byteClass, found bool) {
	if detectedFeatures.widened() {
		i := start
		for ; i+8 <= len(buf); i += 8 {
			word := nativeEndianWord(buf[i : i+8])
			mask := matchMask(word, ws.quote) | matchMask(word, ws.cr) | matchMask(word, ws.lf)
			if mask != 0 {
				off := bits.TrailingZeros64(mask) / 8
				return i + off, classifyForSplitter(buf[i+off], ws), true
			}
		}
		return findNextDelimiterOrQuoteScalar(buf, i, ws)
	}
	return findNextDelimiterOrQuoteScalar(buf, start, ws)
}

func findNextDelimiterOrQuoteScalar(buf []byte, start int, ws wordScanner) (int, byteClass, bool) {
	for i := start; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
			return i, classNewline, true
		case '\r':
			return i, classCR, true
		case ws.quoteRaw:
			return i, classQuote, true
		}
	}
	return 0, 0, false
}

func classifyForSplitter(b byte, ws wordScanner) byteClass {
	switch {
	case b == '\n':
		return classNewline
	case b == '\r':
		return classCR
	case b == ws.quoteRaw:
		return classQuote
	default:
		return classOther
	}
}
