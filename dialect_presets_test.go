package ocsv

import "testing"

func TestLoadDialectPresetsTOML(t *testing.T) {
	presets, err := LoadDialectPresetsTOML([]byte(`
[preset.semicolon]
delimiter = ";"
quote = "'"
trim = true
`))
	if err != nil {
		t.Fatalf("LoadDialectPresetsTOML: %v", err)
	}
	d, ok := presets.Get("semicolon")
	if !ok {
		t.Fatal("expected preset 'semicolon' to be present")
	}
	if d.Delimiter != ';' || d.Quote != '\'' || !d.Trim {
		t.Fatalf("unexpected dialect: %+v", d)
	}
	if d.Escape != '\'' {
		t.Fatalf("escape should default to quote byte, got %q", d.Escape)
	}
}

func TestLoadDialectPresetsTOMLRejectsInvalidDialect(t *testing.T) {
	_, err := LoadDialectPresetsTOML([]byte(`
[preset.bad]
delimiter = ","
quote = ","
`))
	if err == nil {
		t.Fatal("expected an error for delimiter == quote")
	}
}

func TestLoadDialectPresetsTOMLRejectsMultiByte(t *testing.T) {
	_, err := LoadDialectPresetsTOML([]byte(`
[preset.bad]
delimiter = "::"
`))
	if err == nil {
		t.Fatal("expected an error for a multi-byte delimiter")
	}
}

func TestBuiltinDialectPresets(t *testing.T) {
	presets := BuiltinDialectPresets()
	names := presets.Names()
	if len(names) == 0 {
		t.Fatal("expected at least one built-in preset")
	}
	tsv, ok := presets.Get("tsv")
	if !ok || tsv.Delimiter != '\t' {
		t.Fatalf("expected a tsv preset with tab delimiter, got %+v, ok=%v", tsv, ok)
	}
}
