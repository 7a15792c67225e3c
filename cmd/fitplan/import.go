// ABOUTME: CLI command for importing an exercise catalog.
// ABOUTME: Fills body parts, equipment, targets, exercises, and secondary targets from ExerciseDB data.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitplan/internal/storage"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.json|catalog.yaml>",
	Short: "Import an exercise catalog",
	Long: `Import exercises in ExerciseDB format into the catalog tables.

The schema is migrated first. Body parts, equipment, and targets are
matched by name and created when missing. Every entry in secondaryMuscles
becomes a secondary target link. Exercises whose name already exists are
skipped, so the same file can be imported again safely.

The whole import runs in one transaction: if any row violates a
constraint (for example a name longer than 256 characters) nothing is
written.

FILE FORMAT:

  [
    {
      "name": "3/4 sit-up",
      "bodyPart": "waist",
      "equipment": "body weight",
      "target": "abs",
      "secondaryMuscles": ["hip flexors", "lower back"],
      "gifUrl": "https://example.com/0001.gif",
      "instructions": ["Lie flat on your back.", "Curl up."]
    }
  ]

  Files ending in .yaml or .yml are read as YAML with the same keys.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		entries, err := storage.LoadCatalog(args[0])
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}

		summary, err := db.ImportCatalog(ctx, entries)
		if err != nil {
			if kind := storage.ClassifyConstraint(err); kind != storage.ConstraintNone {
				return fmt.Errorf("import rejected by %s constraint: %w", kind, err)
			}
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "Imported %d exercise(s)", summary.Exercises)
		fmt.Fprintf(out, " (%d skipped)\n", summary.Skipped)
		faint := color.New(color.Faint)
		faint.Fprintf(out, "  body parts +%d, equipment +%d, targets +%d, secondary targets +%d\n",
			summary.BodyParts, summary.Equipment, summary.Targets, summary.SecondaryTargets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
