package ocsv

import (
	"strings"
	"testing"
)

func TestParallelDriverFallsBackForSmallInput(t *testing.T) {
	pd, err := NewParallelDriver(DefaultDialect(), 4)
	if err != nil {
		t.Fatalf("NewParallelDriver: %v", err)
	}
	store, err := pd.Parse([]byte("a,b\nc,d\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if store.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", store.RowCount())
	}
}

func TestParallelDriverAppliesRowWindowGlobally(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20000; i++ {
		b.WriteString("row\n")
	}
	d := DefaultDialect()
	d.FromLine = 5
	d.ToLine = 5
	pd, err := NewParallelDriver(d, 4)
	if err != nil {
		t.Fatalf("NewParallelDriver: %v", err)
	}
	store, err := pd.Parse([]byte(b.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if store.RowCount() != 1 {
		t.Fatalf("RowCount = %d, want 1 (window should apply to the merged, globally-numbered rows)", store.RowCount())
	}
}

func TestParallelDriverDefaultWorkerCount(t *testing.T) {
	pd, err := NewParallelDriver(DefaultDialect(), 0)
	if err != nil {
		t.Fatalf("NewParallelDriver: %v", err)
	}
	if pd.workerCount < 1 {
		t.Fatalf("workerCount = %d, want >= 1", pd.workerCount)
	}
}
