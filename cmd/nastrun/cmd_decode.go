package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nastrun/internal/export"
	"nastrun/internal/report"
)

var (
	decodeJSON bool
	decodeXLSX string
)

// decodeCmd re-decodes a report file without running the Engine.
var decodeCmd = &cobra.Command{
	Use:   "decode [report-file]",
	Short: "Decode an existing printed report into typed tables",
	Long: `Decodes a report file captured from an earlier run. Decoding is pure
over the report text, so reports saved years ago decode identically.

Example:
  nastrun decode cantilever.f06 --json`,
	Args: cobra.ExactArgs(1),
	RunE: decodeReport,
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", true, "Print decoded results as JSON")
	decodeCmd.Flags().StringVar(&decodeXLSX, "xlsx", "", "Also write a results workbook to this path")
}

func decodeReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	results := report.Decode(string(data))

	if decodeXLSX != "" {
		if err := export.WriteXLSX(decodeXLSX, results); err != nil {
			return err
		}
	}
	if decodeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return nil
}
