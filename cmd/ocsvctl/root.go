// Command ocsvctl is a developer CLI over the ocsv package: parse a file
// and print its rows, validate structure, or export to JSON/packed form.
// It exists for manual testing and scripting against the engine, not as
// part of the embeddable library surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDelimiter string
	flagQuote     string
	flagRelaxed   bool
	flagTrim      bool
	flagPreset    string
)

// rootCmd represents the base ocsvctl command.
var rootCmd = &cobra.Command{
	Use:   "ocsvctl",
	Short: "Inspect and validate delimited text with the ocsv engine",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDelimiter, "delimiter", "d", ",", "field delimiter character")
	rootCmd.PersistentFlags().StringVarP(&flagQuote, "quote", "q", "\"", "quote character")
	rootCmd.PersistentFlags().BoolVarP(&flagRelaxed, "relaxed", "r", false, "tolerate malformed quoting instead of erroring")
	rootCmd.PersistentFlags().BoolVarP(&flagTrim, "trim", "t", false, "trim ASCII whitespace from unquoted fields")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "named dialect preset (an explicit --delimiter/--quote overrides its values)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
