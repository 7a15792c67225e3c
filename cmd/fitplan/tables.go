// ABOUTME: CLI command for describing the declared tables.
// ABOUTME: Works without a database; output as text, JSON, or YAML.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitplan/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	tablesFormat string
)

var tablesCmd = &cobra.Command{
	Use:         "tables [table]",
	Aliases:     []string{"t"},
	Short:       "Describe the declared tables",
	Annotations: map[string]string{skipStorage: "true"},
	Long: `Describe the tables fitplan declares, straight from the Go models.

No database is opened. With no argument every table is listed with its
column count and foreign keys. With a table name (the mvfp_ prefix is
optional) every column is shown with its type, length limit, nullability,
default, and key membership.

FORMATS:

  text   aligned human-readable output (default)
  json   TableInfo objects, for scripting
  yaml   same as json, as YAML

EXAMPLES:

  fitplan tables                     # Overview of all tables
  fitplan tables exercise            # Columns of mvfp_exercise
  fitplan tables --format json       # Everything, machine readable`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tables []models.TableInfo
		if len(args) == 1 {
			info, err := models.DescribeTable(args[0])
			if err != nil {
				return err
			}
			tables = []models.TableInfo{info}
		} else {
			var err error
			tables, err = models.Describe()
			if err != nil {
				return fmt.Errorf("failed to describe tables: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		switch tablesFormat {
		case "text":
			if len(args) == 1 {
				printTable(out, tables[0])
			} else {
				printOverview(out, tables)
			}
			return nil
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tables)
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(tables); err != nil {
				return err
			}
			return enc.Close()
		default:
			return fmt.Errorf("unknown format: %s", tablesFormat)
		}
	},
}

func printOverview(w io.Writer, tables []models.TableInfo) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, t := range tables {
		bold.Fprint(w, padRight(t.Name, 24))
		fmt.Fprintf(w, "%2d columns", len(t.Columns))
		var refs []string
		for _, fk := range t.ForeignKeys {
			refs = append(refs, fk.ReferencedTable)
		}
		if len(refs) > 0 {
			faint.Fprintf(w, "  -> %s", strings.Join(refs, ", "))
		}
		fmt.Fprintln(w)
	}
}

func printTable(w io.Writer, t models.TableInfo) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Fprintln(w, t.Name)
	for _, c := range t.Columns {
		typ := c.Type
		if c.Size > 0 && c.Type == "string" {
			typ = fmt.Sprintf("string(%d)", c.Size)
		}
		var flags []string
		if c.PrimaryKey {
			flags = append(flags, "pk")
		}
		if c.AutoIncrement {
			flags = append(flags, "serial")
		}
		if c.NotNull {
			flags = append(flags, "not null")
		} else {
			flags = append(flags, "null")
		}
		if c.Default != "" {
			flags = append(flags, "default "+c.Default)
		}
		fmt.Fprintf(w, "  %s %s %s\n", padRight(c.Name, 20), padRight(typ, 12), faint.Sprint(strings.Join(flags, ", ")))
	}

	fmt.Fprintf(w, "  primary key (%s)\n", strings.Join(t.PrimaryKey, ", "))
	for _, idx := range t.Indexes {
		fmt.Fprintf(w, "  index %s (%s)\n", idx.Name, strings.Join(idx.Columns, ", "))
	}
	for _, fk := range t.ForeignKeys {
		fmt.Fprintf(w, "  foreign key (%s) -> %s(%s) on delete %s\n",
			strings.Join(fk.Columns, ", "), fk.ReferencedTable,
			strings.Join(fk.ReferencedColumns, ", "), strings.ToLower(onAction(fk.OnDelete)))
	}
	for _, chk := range t.Checks {
		faint.Fprintf(w, "  check %s: %s\n", chk.Name, chk.Expression)
	}
}

func onAction(a string) string {
	if a == "" {
		return "no action"
	}
	return a
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesFormat, "format", "f", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(tablesCmd)
}
