package ocsv

import (
	"runtime"
	"sync"
)

// ParallelDriver parses a complete in-memory input by splitting it into
// independent ranges and running one BatchParser per range concurrently,
// then merging their Stores back together in range order (spec §4.8).
// Rows in the merged Store are in input order, and a worker's error is
// reported with its line number counted from the start of the whole
// input, as if the input had been parsed sequentially.
type ParallelDriver struct {
	dialect     Dialect
	splitter    *Splitter
	workerCount int
}

// NewParallelDriver validates d and returns a ParallelDriver. workerCount
// <= 0 selects runtime.GOMAXPROCS(0).
func NewParallelDriver(d Dialect, workerCount int) (*ParallelDriver, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	return &ParallelDriver{
		dialect:     d,
		splitter:    NewSplitter(d),
		workerCount: workerCount,
	}, nil
}

type workerResult struct {
	store *Store
	err   error
}

// Parse splits input, parses each range on its own goroutine into its own
// Store, and merges the results in row order. Dialect window filtering
// (FromLine/ToLine) is reapplied globally during the merge, counting
// rows across all ranges, since each worker only knows its own local row
// indices.
func (pd *ParallelDriver) Parse(input []byte) (*Store, error) {
	ranges := pd.splitter.Split(input, pd.workerCount)
	if len(ranges) == 1 {
		bp, err := NewBatchParser(pd.dialect)
		if err != nil {
			return nil, err
		}
		return bp.Parse(input)
	}

	// Row windowing must see the whole input's row numbering, not each
	// worker's local numbering, so workers run with window filtering
	// disabled and the driver re-applies it after merging.
	unwindowed := pd.dialect
	unwindowed.FromLine = -1
	unwindowed.ToLine = -1

	results := make([]workerResult, len(ranges))
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		go func(i int, r SplitRange) {
			defer wg.Done()
			bp, err := NewBatchParser(unwindowed)
			if err != nil {
				results[i] = workerResult{err: err}
				return
			}
			store, err := bp.Parse(input[r.Start:r.End])
			if err != nil {
				results[i] = workerResult{err: err}
				return
			}
			results[i] = workerResult{store: store}
		}(i, r)
	}
	wg.Wait()

	for i, res := range results {
		if res.err != nil {
			// A worker counts lines from the start of its own range;
			// shift by the newlines before that range to report the
			// line within the whole input.
			if e, ok := res.err.(*Error); ok {
				for _, c := range input[:ranges[i].Start] {
					if c == '\n' {
						e.Line++
					}
				}
			}
			return nil, res.err
		}
	}

	merged := NewStore()
	merged.Reset()
	globalRow := 0
	for _, res := range results {
		for i := 0; i < res.store.RowCount(); i++ {
			if pd.dialect.inWindow(globalRow) {
				fields := res.store.Row(i)
				for _, f := range fields {
					if len(f) == 0 {
						merged.pushEmptyField()
					} else {
						merged.pushField(f)
					}
				}
				merged.finishRowAt(merged.pendingFirstField)
			}
			globalRow++
		}
		merged.sourceByteCount += res.store.sourceByteCount
	}
	merged.status = Status{OK: true}
	return merged, nil
}
