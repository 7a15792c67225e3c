// ABOUTME: CLI command for applying the declared schema.
// ABOUTME: Creates missing tables, columns, indexes, and constraints; safe to re-run.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the fitplan tables",
	Long: `Apply the declared schema to the configured database.

Missing tables, columns, indexes, check constraints, and foreign keys are
created, and columns whose type, size, or nullability drifted are rebuilt.
Existing data is kept. Running it twice is
harmless: the second run has nothing to do.

USAGE:

  fitplan migrate --dry-run   # Print the DDL without running it
  fitplan migrate             # Apply it

The SQLite database is created at ~/.local/share/fitplan/fitplan.db unless
data_dir is set in the config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if migrateDryRun {
			color.New(color.FgYellow).Fprintln(out, "Dry run mode - no changes will be made")
			stmts, err := db.DDL(ctx)
			if err != nil {
				return fmt.Errorf("failed to render ddl: %w", err)
			}
			printDDL(out, stmts)
			return nil
		}

		pending, err := db.Pending(ctx)
		if err != nil {
			return fmt.Errorf("failed to diff schema: %w", err)
		}

		stmts, err := db.Apply(ctx)
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		if len(stmts) == 0 {
			color.New(color.FgGreen).Fprintln(out, "Schema is up to date.")
			return nil
		}

		applied := len(pending)
		if applied == 0 {
			for _, s := range stmts {
				fmt.Fprintf(out, "  %s\n", s)
			}
			applied = len(stmts)
		}
		for _, c := range pending {
			fmt.Fprintf(out, "  %s\n", c.String())
		}
		color.New(color.FgGreen).Fprintf(out, "Applied %d change(s).\n", applied)
		if path := db.Path(); path != "" {
			color.New(color.Faint).Fprintf(out, "Database: %s\n", path)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "print the DDL without running it")
	rootCmd.AddCommand(migrateCmd)
}
