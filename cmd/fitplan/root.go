// ABOUTME: Root Cobra command for fitplan CLI.
// ABOUTME: Loads config and manages the database lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/fitplan/internal/config"
	"github.com/harperreed/fitplan/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	db  *storage.DB

	flagBackend     string
	flagDatabaseURL string
	flagLogLevel    string
)

// skipStorage marks commands that never touch a database.
const skipStorage = "skip-storage"

var rootCmd = &cobra.Command{
	Use:   "fitplan",
	Short: "Fitness training plan schema tool",
	Long: `fitplan declares the relational schema for a fitness training app and
applies it to SQLite or PostgreSQL.

TABLES:

  mvfp_training_plan     a user's named plan with estimated duration
  mvfp_planned_exercise  one exercise inside a plan (series, reps, rest)
  mvfp_exercise          catalog exercise with body part, target, equipment
  mvfp_body_part         lookup: waist, upper legs, ...
  mvfp_equipment         lookup: barbell, body weight, ...
  mvfp_target            lookup: abs, glutes, ...
  mvfp_secondary_target  exercise <-> target links

QUICK START:

  $ fitplan tables                      # Show every declared table
  $ fitplan tables exercise             # Columns, keys, and indexes of one table
  $ fitplan schema diff                 # What is missing from the database
  $ fitplan migrate                     # Create or update the tables
  $ fitplan import exercises.json       # Fill the catalog from ExerciseDB data

BACKENDS:

  SQLite (default) lives at ~/.local/share/fitplan/fitplan.db.
  PostgreSQL is selected with --backend postgres and a --database-url,
  or FITPLAN_BACKEND / FITPLAN_DATABASE_URL.

CONFIGURATION:

  ~/.config/fitplan/config.json

  {
    "backend": "postgres",
    "database_url": "postgres://fitplan@localhost:5432/fitplan",
    "log_level": "warn"
  }

  Flags override environment variables, which override the file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cmd, cfg)

		if !needsStorage(cmd) {
			return nil
		}

		db, err = openStorage(cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db == nil {
			return nil
		}
		err := db.Close()
		db = nil
		return err
	},
}

// applyFlags lets explicitly set persistent flags win over config and env.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		c.Backend = flagBackend
	}
	if flags.Changed("database-url") {
		c.DatabaseURL = flagDatabaseURL
	}
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
}

func needsStorage(cmd *cobra.Command) bool {
	if cmd.Annotations[skipStorage] == "true" {
		return false
	}
	switch cmd.Name() {
	case "help", "version", "completion":
		return false
	}
	if fresh, err := cmd.Flags().GetBool("fresh"); err == nil && fresh {
		return false
	}
	return true
}

// sqlLogger builds the gorm logger for the configured level on stderr.
func sqlLogger(c *config.Config) (storage.Option, error) {
	l, err := storage.NewLogger(os.Stderr, c.GetLogLevel())
	if err != nil {
		return nil, err
	}
	return storage.WithLogger(l), nil
}

func openStorage(c *config.Config) (*storage.DB, error) {
	opt, err := sqlLogger(c)
	if err != nil {
		return nil, err
	}
	d, err := c.OpenStorage(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return d, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBackend, "backend", "", "database backend: sqlite or postgres")
	pf.StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL connection string")
	pf.StringVar(&flagLogLevel, "log-level", "", "SQL log level: silent, error, warn, info")
}
