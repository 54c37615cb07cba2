package ocsv

import (
	"reflect"
	"testing"
)

func parseRows(t *testing.T, d Dialect, input string) [][]string {
	t.Helper()
	bp, err := NewBatchParser(d)
	if err != nil {
		t.Fatalf("NewBatchParser: %v", err)
	}
	store, err := bp.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out := make([][]string, store.RowCount())
	for i := range out {
		fields := store.Row(i)
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = string(f)
		}
		out[i] = row
	}
	return out
}

func TestBatchParserBasicFields(t *testing.T) {
	got := parseRows(t, DefaultDialect(), "a,b,c\n1,2,3\n")
	want := [][]string{{"a", "b", "c"}, {"1", "2", "3"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserQuotedFieldWithDelimiterAndNewline(t *testing.T) {
	got := parseRows(t, DefaultDialect(), "\"a,b\",\"c\nd\"\n")
	want := [][]string{{"a,b", "c\nd"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserEscapedQuoteInsideQuotedField(t *testing.T) {
	got := parseRows(t, DefaultDialect(), `"he said ""hi"""` + "\n")
	want := [][]string{{`he said "hi"`}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserTrailingEmptyField(t *testing.T) {
	got := parseRows(t, DefaultDialect(), "a,b,\n")
	want := [][]string{{"a", "b", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserTrailingEmptyFieldNoNewline(t *testing.T) {
	got := parseRows(t, DefaultDialect(), "a,b,")
	want := [][]string{{"a", "b", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserCRLF(t *testing.T) {
	got := parseRows(t, DefaultDialect(), "a,b\r\nc,d\r\n")
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserEmptyLinesKeptByDefault(t *testing.T) {
	got := parseRows(t, DefaultDialect(), "a,b\n\nc,d\n")
	want := [][]string{{"a", "b"}, {""}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserSkipEmptyLines(t *testing.T) {
	d := DefaultDialect()
	d.SkipEmptyLines = true
	got := parseRows(t, d, "a,b\n\nc,d\n")
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserEmptyCRLFLineKeptByDefault(t *testing.T) {
	got := parseRows(t, DefaultDialect(), "a,b\r\n\r\nc,d\r\n")
	want := [][]string{{"a", "b"}, {""}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserSkipEmptyLinesCRLF(t *testing.T) {
	d := DefaultDialect()
	d.SkipEmptyLines = true
	got := parseRows(t, d, "a,b\r\n\r\nc,d\r\n")
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserComments(t *testing.T) {
	d := DefaultDialect()
	d.Comment = '#'
	got := parseRows(t, d, "a,b\n# a comment\nc,d\n")
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserTrim(t *testing.T) {
	d := DefaultDialect()
	d.Trim = true
	got := parseRows(t, d, " a , b ,\" c \"\n")
	want := [][]string{{"a", "b", " c "}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserUnterminatedQuoteStrictError(t *testing.T) {
	bp, err := NewBatchParser(DefaultDialect())
	if err != nil {
		t.Fatalf("NewBatchParser: %v", err)
	}
	_, err = bp.Parse([]byte(`"unterminated`))
	if err == nil {
		t.Fatal("expected unterminated quote error")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != ErrUnterminatedQuoteKind {
		t.Fatalf("expected ErrUnterminatedQuoteKind, got %v", err)
	}
}

func TestBatchParserUnterminatedQuoteRelaxedRecovers(t *testing.T) {
	d := DefaultDialect()
	d.Relaxed = true
	got := parseRows(t, d, `"unterminated`)
	want := [][]string{{"unterminated"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserInvalidCharAfterQuoteStrictError(t *testing.T) {
	bp, err := NewBatchParser(DefaultDialect())
	if err != nil {
		t.Fatalf("NewBatchParser: %v", err)
	}
	_, err = bp.Parse([]byte(`"ab"cd,e` + "\n"))
	if err == nil {
		t.Fatal("expected invalid char after quote error")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != ErrInvalidCharAfterQuoteKind {
		t.Fatalf("expected ErrInvalidCharAfterQuoteKind, got %v", err)
	}
}

func TestBatchParserInvalidCharAfterQuoteRelaxedAppends(t *testing.T) {
	d := DefaultDialect()
	d.Relaxed = true
	got := parseRows(t, d, `"ab"cd,e`+"\n")
	want := [][]string{{"ab\"cd", "e"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserMaxFieldBytes(t *testing.T) {
	d := DefaultDialect()
	d.MaxFieldBytes = 3
	bp, err := NewBatchParser(d)
	if err != nil {
		t.Fatalf("NewBatchParser: %v", err)
	}
	_, err = bp.Parse([]byte("abcd\n"))
	e, ok := err.(*Error)
	if !ok || e.Kind != ErrFieldTooLargeKind {
		t.Fatalf("expected ErrFieldTooLargeKind, got %v", err)
	}
}

func TestBatchParserRowWindow(t *testing.T) {
	d := DefaultDialect()
	d.FromLine = 1
	d.ToLine = 1
	got := parseRows(t, d, "a\nb\nc\n")
	want := [][]string{{"b"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserSkipLinesWithErrorRecovers(t *testing.T) {
	d := DefaultDialect()
	d.SkipLinesWithError = true
	got := parseRows(t, d, "a,b\n\"bad\"x,y\nc,d\n")
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBatchParserReuseAcrossCalls(t *testing.T) {
	bp, err := NewBatchParser(DefaultDialect())
	if err != nil {
		t.Fatalf("NewBatchParser: %v", err)
	}
	if _, err := bp.Parse([]byte("a,b\n")); err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	store, err := bp.Parse([]byte("c,d,e\n"))
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if store.RowCount() != 1 || store.FieldCount(0) != 3 {
		t.Fatalf("Parse did not reset state between calls: rows=%d fields=%d", store.RowCount(), store.FieldCount(0))
	}
}
