package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ocsv/ocsvcore"
	"github.com/spf13/cobra"
)

var exportFormat string

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export [input] [output]",
	Short: "Export parsed rows to JSON or the packed binary format",
	Long: `Parse input and write its rows to output, in JSON or ocsv's
packed binary format. Format is guessed from the output file's
extension unless --format is given.

Example:
  ocsvctl export data.csv rows.json
  ocsvctl export data.csv rows.bin --format=packed`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if format == "" {
			switch strings.ToLower(filepath.Ext(args[1])) {
			case ".json":
				format = "json"
			case ".bin", ".packed":
				format = "packed"
			default:
				return fmt.Errorf("cannot guess export format from %q; pass --format", args[1])
			}
		}

		d, err := dialectFromFlags()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error opening input file: %w", err)
		}

		bp, err := ocsv.NewBatchParser(d)
		if err != nil {
			return fmt.Errorf("error creating parser: %w", err)
		}
		store, err := bp.Parse(data)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", args[0], err)
		}

		var out []byte
		switch format {
		case "json":
			rows := make([][]string, store.RowCount())
			for i := range rows {
				fields := store.Row(i)
				row := make([]string, len(fields))
				for j, f := range fields {
					row[j] = string(f)
				}
				rows[i] = row
			}
			out, err = json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return fmt.Errorf("error encoding JSON: %w", err)
			}
		case "packed":
			out, err = ocsv.PackedCodec{}.Encode(store)
			if err != nil {
				return fmt.Errorf("error encoding packed buffer: %w", err)
			}
		default:
			return fmt.Errorf("unsupported format: %s", format)
		}

		if err := os.WriteFile(args[1], out, 0o644); err != nil {
			return fmt.Errorf("error writing output file: %w", err)
		}
		fmt.Printf("Successfully exported to %s\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "export format (json, packed)")
}
