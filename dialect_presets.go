package ocsv

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// presetFile is the on-disk TOML shape for a dialect preset file: a table
// of named presets, each overriding whichever fields it sets and
// inheriting DefaultDialect for the rest.
type presetFile struct {
	Preset map[string]presetEntry `toml:"preset"`
}

type presetEntry struct {
	Delimiter          string `toml:"delimiter"`
	Quote              string `toml:"quote"`
	Escape             string `toml:"escape"`
	Comment            string `toml:"comment"`
	Relaxed            bool   `toml:"relaxed"`
	SkipEmptyLines     bool   `toml:"skip_empty_lines"`
	Trim               bool   `toml:"trim"`
	MaxFieldBytes      uint64 `toml:"max_field_bytes"`
	MaxRowBytes        uint64 `toml:"max_row_bytes"`
	SkipLinesWithError bool   `toml:"skip_lines_with_error"`
}

// DialectPresets holds named Dialect configurations loaded from a TOML
// file, the way ocsvctl ships a handful of common presets (excel, unix,
// tsv) without requiring every caller to hand-build a Dialect.
type DialectPresets struct {
	byName map[string]Dialect
}

// LoadDialectPresetsTOML parses TOML data shaped like:
//
//	[preset.excel]
//	delimiter = ","
//	quote = "\""
//
//	[preset.tsv]
//	delimiter = "\t"
//	quote = "\""
func LoadDialectPresetsTOML(data []byte) (*DialectPresets, error) {
	var pf presetFile
	if _, err := toml.Decode(string(data), &pf); err != nil {
		return nil, fmt.Errorf("ocsv: decoding dialect presets: %w", err)
	}
	presets := &DialectPresets{byName: make(map[string]Dialect, len(pf.Preset))}
	for name, entry := range pf.Preset {
		d, err := entry.toDialect()
		if err != nil {
			return nil, fmt.Errorf("ocsv: preset %q: %w", name, err)
		}
		presets.byName[name] = d
	}
	return presets, nil
}

func (e presetEntry) toDialect() (Dialect, error) {
	d := DefaultDialect()
	if e.Delimiter != "" {
		b, err := singleByte(e.Delimiter)
		if err != nil {
			return Dialect{}, fmt.Errorf("delimiter: %w", err)
		}
		d.Delimiter = b
	}
	if e.Quote != "" {
		b, err := singleByte(e.Quote)
		if err != nil {
			return Dialect{}, fmt.Errorf("quote: %w", err)
		}
		d.Quote = b
	}
	if e.Escape != "" {
		b, err := singleByte(e.Escape)
		if err != nil {
			return Dialect{}, fmt.Errorf("escape: %w", err)
		}
		d.Escape = b
	} else {
		d.Escape = d.Quote
	}
	if e.Comment != "" {
		b, err := singleByte(e.Comment)
		if err != nil {
			return Dialect{}, fmt.Errorf("comment: %w", err)
		}
		d.Comment = b
	}
	d.Relaxed = e.Relaxed
	d.SkipEmptyLines = e.SkipEmptyLines
	d.Trim = e.Trim
	d.MaxFieldBytes = e.MaxFieldBytes
	d.MaxRowBytes = e.MaxRowBytes
	d.SkipLinesWithError = e.SkipLinesWithError
	if err := d.Validate(); err != nil {
		return Dialect{}, err
	}
	return d, nil
}

func singleByte(s string) (byte, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("must be exactly one byte, got %q", s)
	}
	return s[0], nil
}

// Get returns the named preset and whether it exists.
func (p *DialectPresets) Get(name string) (Dialect, bool) {
	d, ok := p.byName[name]
	return d, ok
}

// Names returns every preset name known to p, unordered.
func (p *DialectPresets) Names() []string {
	names := make([]string, 0, len(p.byName))
	for n := range p.byName {
		names = append(names, n)
	}
	return names
}

// builtinPresetsTOML ships with ocsvctl so `ocsvctl parse --preset tsv`
// works without a config file on disk.
const builtinPresetsTOML = `
[preset.excel]
delimiter = ","
quote = "\""

[preset.tsv]
delimiter = "\t"
quote = "\""

[preset.unix]
delimiter = ","
quote = "\""
skip_empty_lines = true
trim = true

[preset.pipe]
delimiter = "|"
quote = "\""
`

// BuiltinDialectPresets returns the presets compiled into the ocsv
// package itself.
func BuiltinDialectPresets() *DialectPresets {
	p, err := LoadDialectPresetsTOML([]byte(builtinPresetsTOML))
	if err != nil {
		// The built-in TOML is a compile-time constant; a decode failure
		// here means the source was edited incorrectly, not a runtime
		// condition callers can recover from.
		panic(err)
	}
	return p
}
