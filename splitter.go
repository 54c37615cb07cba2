package ocsv

// SplitRange is one worker's share of the input for ParallelDriver: a
// byte range [Start, End) that begins and ends on a safe row boundary
// (never inside a quoted field), per spec §4.7.
type SplitRange struct {
	Start int
	End   int
}

// Splitter locates safe row boundaries in a byte slice so ParallelDriver
// can hand independent ranges to separate BatchParsers without any one
// worker needing to see another's bytes. It tracks quote state across the
// whole input with a single forward scan (doubled quotes inside a quoted
// field toggle the state an even number of times and cancel out), which
// is the same discipline raceordie690/simdcsv's stage1 chunking uses
// before handing chunks to stage2 parsing workers.
type Splitter struct {
	dialect Dialect
	ws      wordScanner
}

// NewSplitter returns a Splitter for d.
func NewSplitter(d Dialect) *Splitter {
	return &Splitter{dialect: d, ws: newWordScanner(d)}
}

// minRangeBytes is the smallest input size worth splitting; inputs under
// this are returned as a single range so parallelism overhead never
// exceeds the work it parallelises (spec §4.8, "fallback discipline").
const minRangeBytes = 64 * 1024

// Split partitions buf into up to workerCount ranges, each starting and
// ending just after a newline that is not inside a quoted field. If buf
// is too small, or no safe interior boundary can be found (e.g. the
// entire input is one giant quoted field), Split returns a single range
// covering all of buf.
func (sp *Splitter) Split(buf []byte, workerCount int) []SplitRange {
	if workerCount < 1 {
		workerCount = 1
	}
	if len(buf) < minRangeBytes || workerCount == 1 {
		return []SplitRange{{Start: 0, End: len(buf)}}
	}

	targetSize := len(buf) / workerCount
	if targetSize < minRangeBytes {
		targetSize = minRangeBytes
	}

	ranges := make([]SplitRange, 0, workerCount)
	start := 0
	for start < len(buf) {
		want := start + targetSize
		if want >= len(buf) {
			ranges = append(ranges, SplitRange{Start: start, End: len(buf)})
			break
		}
		boundary, ok := sp.nextSafeBoundary(buf, start, want)
		if !ok {
			ranges = append(ranges, SplitRange{Start: start, End: len(buf)})
			break
		}
		ranges = append(ranges, SplitRange{Start: start, End: boundary})
		start = boundary
	}
	return ranges
}

// nextSafeBoundary scans forward from `want`, tracking quote state, until
// it finds a newline outside any quoted field, returning the offset just
// past that newline (so the next range starts at FieldStart), or
// ok=false if buf ends before one is found. safeStart is a position at or
// before want that is already known to sit outside any quoted field
// (Split always passes the previous range's own safe boundary, or 0 for
// the first range), so the quote-state walk only has to cover
// [safeStart, want) instead of rescanning from the top of buf every time.
func (sp *Splitter) nextSafeBoundary(buf []byte, safeStart, want int) (int, bool) {
	inQuotes := sp.quoteStateFrom(buf, safeStart, want)
	pos := want
	for pos < len(buf) {
		offset, class, found := findNextQuoteOrNewline(buf, pos, sp.ws)
		if !found {
			return 0, false
		}
		switch class {
		case classQuote:
			inQuotes = !inQuotes
			pos = offset + 1
		case classNewline:
			if !inQuotes {
				return offset + 1, true
			}
			pos = offset + 1
		case classCR:
			pos = offset + 1
		default:
			pos = offset + 1
		}
	}
	return 0, false
}

// quoteStateFrom reports whether position idx in buf falls inside a
// quoted field, given that quote state at `from` is known to be false
// (outside any quoted field). Each call from Split only has to re-walk
// the quote bytes between one range's start and its target boundary,
// not the whole buffer from the top.
func (sp *Splitter) quoteStateFrom(buf []byte, from, idx int) bool {
	inQuotes := false
	pos := from
	for pos < idx {
		offset, class, found := findNextQuoteOrNewline(buf, pos, sp.ws)
		if !found || offset >= idx {
			return inQuotes
		}
		if class == classQuote {
			inQuotes = !inQuotes
		}
		pos = offset + 1
	}
	return inQuotes
}
