// ABOUTME: CLI commands for inspecting the schema against a database.
// ABOUTME: Renders DDL and reports drift between the models and the live tables.
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/fitplan/internal/storage"
	"github.com/spf13/cobra"
)

var (
	ddlFresh     bool
	diffExitCode bool
)

// errSchemaDrift is returned by `schema diff --exit-code` when changes are pending.
var errSchemaDrift = errors.New("schema has pending changes")

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the schema against a database",
	Long: `Inspect how the declared schema maps onto a database.

SUBCOMMANDS:

  ddl    print the SQL that 'fitplan migrate' would run
  diff   list tables, columns, indexes, and constraints that are missing

Neither subcommand changes the database.`,
	Annotations: map[string]string{skipStorage: "true"},
}

var schemaDDLCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Print the DDL migrate would run",
	Long: `Print the statements 'fitplan migrate' would run against the configured
database. They are captured inside a transaction that is rolled back.

Against an up-to-date database the output is empty. Use --fresh to render
the full CREATE script for an empty SQLite database instead, without
touching the configured one.

EXAMPLES:

  fitplan schema ddl                 # Pending DDL for the configured DB
  fitplan schema ddl --fresh         # Full schema script
  fitplan --backend postgres --database-url $URL schema ddl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := db
		if ddlFresh {
			opt, err := sqlLogger(cfg)
			if err != nil {
				return err
			}
			mem, err := storage.OpenMemory(opt)
			if err != nil {
				return fmt.Errorf("failed to open scratch database: %w", err)
			}
			defer mem.Close()
			target = mem
		}

		stmts, err := target.DDL(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to render ddl: %w", err)
		}
		printDDL(cmd.OutOrStdout(), stmts)
		return nil
	},
}

var schemaDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "List pending schema changes",
	Long: `List everything the configured database is missing compared to the
declared models: tables, columns, indexes, check constraints, and foreign
keys. Columns that lost NOT NULL or changed size are reported as "alter
column"; any other rewrite migrate would do is reported as "alter table".
Extra objects in the database are not reported.

Use --exit-code in scripts: the command then fails when anything is pending.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := db.Pending(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to diff schema: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(changes) == 0 {
			color.New(color.FgGreen).Fprintln(out, "Schema is up to date.")
			return nil
		}

		yellow := color.New(color.FgYellow)
		for _, c := range changes {
			yellow.Fprint(out, "+ ")
			fmt.Fprintln(out, c.String())
		}
		fmt.Fprintf(out, "\n%d pending change(s). Run 'fitplan migrate' to apply.\n", len(changes))

		if diffExitCode {
			return errSchemaDrift
		}
		return nil
	},
}

func printDDL(w io.Writer, stmts []string) {
	for _, s := range stmts {
		fmt.Fprintf(w, "%s;\n", s)
	}
}

func init() {
	schemaDDLCmd.Flags().BoolVar(&ddlFresh, "fresh", false, "render the full schema for an empty SQLite database")
	schemaDiffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "fail when changes are pending")
	schemaCmd.AddCommand(schemaDDLCmd, schemaDiffCmd)
	rootCmd.AddCommand(schemaCmd)
}
