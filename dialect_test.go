package ocsv

import "testing"

func TestDefaultDialectValidates(t *testing.T) {
	if err := DefaultDialect().Validate(); err != nil {
		t.Fatalf("DefaultDialect should validate, got %v", err)
	}
}

func TestValidateRejectsCollisions(t *testing.T) {
	cases := []struct {
		name string
		d    Dialect
	}{
		{"delimiter is newline", Dialect{Delimiter: '\n', Quote: '"'}},
		{"quote is CR", Dialect{Delimiter: ',', Quote: '\r'}},
		{"delimiter equals quote", Dialect{Delimiter: '"', Quote: '"'}},
		{"comment equals delimiter", Dialect{Delimiter: ',', Quote: '"', Comment: ','}},
		{"comment equals quote", Dialect{Delimiter: ',', Quote: '"', Comment: '"'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.d.Validate(); err == nil {
				t.Fatalf("expected Validate to reject %+v", tc.d)
			}
		})
	}
}

func TestInWindow(t *testing.T) {
	d := DefaultDialect()
	d.FromLine = 2
	d.ToLine = 4
	cases := map[int]bool{0: false, 1: false, 2: true, 3: true, 4: true, 5: false}
	for idx, want := range cases {
		if got := d.inWindow(idx); got != want {
			t.Errorf("inWindow(%d) = %v, want %v", idx, got, want)
		}
	}
}

func TestBuildClassTable(t *testing.T) {
	d := DefaultDialect()
	d.Comment = '#'
	table := buildClassTable(d)
	if table[','] != classDelimiter {
		t.Errorf("comma should classify as delimiter")
	}
	if table['"'] != classQuote {
		t.Errorf("double-quote should classify as quote")
	}
	if table['\n'] != classNewline {
		t.Errorf("LF should classify as newline")
	}
	if table['\r'] != classCR {
		t.Errorf("CR should classify as CR")
	}
	if table['#'] != classComment {
		t.Errorf("# should classify as comment")
	}
	if table['a'] != classOther {
		t.Errorf("ordinary byte should classify as other")
	}
}
