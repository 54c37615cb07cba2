package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ocsv/ocsvcore"
	"github.com/spf13/cobra"
)

// parseCmd represents the parse command.
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a file and print its rows",
	Long: `Parse a delimited text file and print each row, tab-separated,
to stdout.

Example:
  ocsvctl parse data.csv
  ocsvctl parse --delimiter=";" data.csv
  ocsvctl parse --preset tsv data.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dialectFromFlags()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}

		bp, err := ocsv.NewBatchParser(d)
		if err != nil {
			return fmt.Errorf("error creating parser: %w", err)
		}

		store, err := bp.Parse(data)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", args[0], err)
		}

		for i := 0; i < store.RowCount(); i++ {
			fields := store.Row(i)
			strs := make([]string, len(fields))
			for j, f := range fields {
				strs[j] = string(f)
			}
			fmt.Println(strings.Join(strs, "\t"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
