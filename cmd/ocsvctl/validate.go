package main

import (
	"fmt"
	"os"

	"github.com/ocsv/ocsvcore"
	"github.com/spf13/cobra"
)

var validateStrict bool

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate delimited text structure",
	Long: `Validate a file's row structure: every row must have the same
field count as the first row. With --strict, also fail on any empty
field.

Example:
  ocsvctl validate data.csv
  ocsvctl validate --strict data.csv`,
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

		var problems []string
		columnCount := -1
		for i := 0; i < store.RowCount(); i++ {
			fields := store.Row(i)
			if columnCount == -1 {
				columnCount = len(fields)
			} else if len(fields) != columnCount {
				problems = append(problems, fmt.Sprintf("row %d: expected %d columns, got %d", i+1, columnCount, len(fields)))
			}
			if validateStrict {
				for j, f := range fields {
					if len(f) == 0 {
						problems = append(problems, fmt.Sprintf("row %d, column %d: empty field", i+1, j+1))
					}
				}
			}
		}

		fmt.Printf("File: %s\n", args[0])
		fmt.Printf("Rows: %d\n", store.RowCount())
		fmt.Printf("Columns per row: %d\n", columnCount)

		if len(problems) > 0 {
			fmt.Println("\nValidation problems:")
			for _, p := range problems {
				fmt.Printf("- %s\n", p)
			}
			return fmt.Errorf("validation failed with %d problems", len(problems))
		}
		fmt.Println("\nValidation successful! No problems found.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVarP(&validateStrict, "strict", "s", false, "also fail on any empty field")
}
