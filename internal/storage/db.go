// ABOUTME: Database connection and lifecycle management through gorm.
// ABOUTME: SQLite uses modernc.org/sqlite (pure Go); PostgreSQL goes through pgx.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Dialect names as reported by gorm.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// sqlitePragmas are applied per connection through the DSN.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DB wraps a gorm connection to a database holding the fitplan schema.
type DB struct {
	db     *gorm.DB
	dbPath string
}

type options struct {
	logger logger.Interface
}

// Option configures Open, OpenMemory, and OpenPostgres.
type Option func(*options)

// WithLogger sets the gorm logger. The default discards everything.
func WithLogger(l logger.Interface) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logger.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Driver errors are left untranslated so ClassifyConstraint sees the
// SQLSTATE or SQLite result code along with the constraint name.
func openGorm(dialector gorm.Dialector, o options) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{Logger: o.logger})
}

// Open opens or creates a SQLite database at the given path.
// It does not create any tables; call Migrate for that.
func Open(dbPath string, opts ...Option) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := dbPath + "?" + sqlitePragmas + "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	gdb, err := openGorm(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), buildOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &DB{db: gdb, dbPath: dbPath}

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = d.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	return d, nil
}

// OpenMemory opens a private in-memory SQLite database. The pool is pinned
// to one connection because the database lives only as long as it does.
func OpenMemory(opts ...Option) (*DB, error) {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&" + sqlitePragmas
	gdb, err := openGorm(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), buildOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("open memory database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("open memory database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &DB{db: gdb}, nil
}

// OpenPostgres connects to PostgreSQL. The DSN is checked with pgx first so
// a malformed URL fails before any network traffic.
func OpenPostgres(dsn string, opts ...Option) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open postgres: database url is empty")
	}
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	gdb, err := openGorm(postgres.New(postgres.Config{DSN: dsn}), buildOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &DB{db: gdb}, nil
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "fitplan")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "fitplan.db")
}

// Gorm exposes the underlying connection for building queries against the
// declared models.
func (d *DB) Gorm() *gorm.DB {
	return d.db
}

// Dialect returns the gorm dialect name ("sqlite" or "postgres").
func (d *DB) Dialect() string {
	return d.db.Dialector.Name()
}

// Path returns the SQLite file path, or "" for in-memory and PostgreSQL databases.
func (d *DB) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
