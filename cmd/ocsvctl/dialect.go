package main

import (
	"fmt"

	"github.com/ocsv/ocsvcore"
)

// dialectFromFlags builds a Dialect from the persistent flags, applying a
// named preset first (if given) so --delimiter/--quote can still override
// individual fields on top of it.
func dialectFromFlags() (ocsv.Dialect, error) {
	d := ocsv.DefaultDialect()

	if flagPreset != "" {
		presets := ocsv.BuiltinDialectPresets()
		preset, ok := presets.Get(flagPreset)
		if !ok {
			return ocsv.Dialect{}, fmt.Errorf("unknown preset %q (known: %v)", flagPreset, presets.Names())
		}
		d = preset
	}

	// Only apply --delimiter/--quote over a preset when the user actually
	// passed them: both flags carry non-empty defaults, so a plain
	// presence check would always clobber the preset's values.
	if rootCmd.PersistentFlags().Changed("delimiter") || flagPreset == "" {
		if len(flagDelimiter) != 1 {
			return ocsv.Dialect{}, fmt.Errorf("--delimiter must be exactly one byte")
		}
		d.Delimiter = flagDelimiter[0]
	}
	if rootCmd.PersistentFlags().Changed("quote") || flagPreset == "" {
		if len(flagQuote) != 1 {
			return ocsv.Dialect{}, fmt.Errorf("--quote must be exactly one byte")
		}
		d.Quote = flagQuote[0]
		d.Escape = flagQuote[0]
	}
	d.Relaxed = flagRelaxed || d.Relaxed
	d.Trim = flagTrim || d.Trim

	if err := d.Validate(); err != nil {
		return ocsv.Dialect{}, err
	}
	return d, nil
}
