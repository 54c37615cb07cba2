package ocsv

import "testing"

func TestStorePushAndRead(t *testing.T) {
	s := NewStore()
	s.pushField([]byte("a"))
	s.pushField([]byte("bb"))
	s.finishRowAt(0)
	s.pushEmptyField()
	s.pushField([]byte("c"))
	s.finishRowAt(2)

	if s.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", s.RowCount())
	}
	if s.FieldCount(0) != 2 || s.FieldCount(1) != 2 {
		t.Fatalf("unexpected field counts: %d, %d", s.FieldCount(0), s.FieldCount(1))
	}
	f, ok := s.Field(0, 1)
	if !ok || string(f) != "bb" {
		t.Fatalf("Field(0,1) = %q, %v", f, ok)
	}
	f, ok = s.Field(1, 0)
	if !ok || len(f) != 0 {
		t.Fatalf("Field(1,0) should be empty, got %q", f)
	}
	if _, ok := s.Field(5, 0); ok {
		t.Fatal("out-of-range row should report ok=false")
	}
}

func TestStoreDiscardRow(t *testing.T) {
	s := NewStore()
	s.pushField([]byte("keep"))
	s.finishRowAt(0)
	s.pushField([]byte("drop-me"))
	s.discardRowAt(1)
	s.pushField([]byte("next"))
	s.finishRowAt(1)

	if s.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", s.RowCount())
	}
	f, _ := s.Field(1, 0)
	if string(f) != "next" {
		t.Fatalf("discarded field leaked into row 1: %q", f)
	}
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	s.pushField([]byte("a"))
	s.finishRowAt(0)
	s.Reset()
	if s.RowCount() != 0 || len(s.arena) != 0 {
		t.Fatalf("Reset did not clear state: rows=%d arena=%d", s.RowCount(), len(s.arena))
	}
}
