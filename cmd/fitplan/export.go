// ABOUTME: CLI command for exporting the exercise catalog.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/fitplan/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportBodyPart string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export the exercise catalog",
	Long: `Export the exercise catalog in various formats.

FORMATS:

  json       ExerciseDB JSON (re-importable with 'fitplan import')
  yaml       the same entries as YAML (also re-importable)
  markdown   one table per body part (for documentation/sharing)

OPTIONS:

  --output, -o      Write to file instead of stdout
  --body-part, -b   Only export exercises for this body part

EXAMPLES:

  fitplan export json -o exercises.json     # Back up the catalog
  fitplan export yaml -b waist              # Core exercises as YAML
  fitplan export markdown                   # Catalog overview`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		switch format {
		case "json", "yaml", "markdown":
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		entries, err := db.ExportCatalog(cmd.Context(), exportBodyPart)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var data []byte
		switch format {
		case "json":
			data, err = storage.ExportJSON(entries)
		case "yaml":
			data, err = storage.ExportYAML(entries)
		case "markdown":
			data = []byte(storage.ExportMarkdown(entries))
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Exported %d exercise(s) to %s\n", len(entries), exportOutput)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportBodyPart, "body-part", "b", "", "only export this body part")
	rootCmd.AddCommand(exportCmd)
}
