// ABOUTME: Schema application, DDL rendering, and drift detection.
// ABOUTME: Migrate applies the declared models; Pending reports what is missing from the live database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/fitplan/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// ChangeKind names a kind of pending schema change.
type ChangeKind string

const (
	ChangeCreateTable   ChangeKind = "create table"
	ChangeAddColumn     ChangeKind = "add column"
	ChangeCreateIndex   ChangeKind = "create index"
	ChangeAddCheck      ChangeKind = "add check"
	ChangeAddForeignKey ChangeKind = "add foreign key"
	ChangeAlterColumn   ChangeKind = "alter column"
	ChangeAlterTable    ChangeKind = "alter table"
)

// Change is one structural difference between the models and the database.
type Change struct {
	Kind  ChangeKind `json:"kind"`
	Table string     `json:"table"`
	Name  string     `json:"name,omitempty"`
}

func (c Change) String() string {
	if c.Name == "" {
		return fmt.Sprintf("%s %s", c.Kind, c.Table)
	}
	return fmt.Sprintf("%s %s on %s", c.Kind, c.Name, c.Table)
}

// Migrate creates or updates every declared table. Running it against an
// up-to-date database changes nothing.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Apply(ctx)
	return err
}

// Apply is Migrate that also returns the statements it executed.
func (d *DB) Apply(ctx context.Context) ([]string, error) {
	db := d.db.WithContext(ctx)
	rec := &ddlRecorder{next: db.Logger}
	if err := db.Session(&gorm.Session{Logger: rec}).AutoMigrate(models.All()...); err != nil {
		return rec.statements, fmt.Errorf("migrate schema: %w", err)
	}
	return rec.statements, nil
}

// Pending lists the tables, columns, indexes, and constraints the database
// is missing, and the columns whose type, size, or nullability differ from
// the models. It is empty once Migrate has run.
func (d *DB) Pending(ctx context.Context) ([]Change, error) {
	db := d.db.WithContext(ctx)
	migrator := db.Migrator()

	// Parse everything before inspecting anything; see models.Parse.
	values := models.All()
	schemas := make([]*schema.Schema, len(values))
	for i, value := range values {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(value); err != nil {
			return nil, fmt.Errorf("parse %T: %w", value, err)
		}
		schemas[i] = stmt.Schema
	}

	var changes []Change
	for i, value := range values {
		s := schemas[i]
		if !migrator.HasTable(value) {
			changes = append(changes, Change{Kind: ChangeCreateTable, Table: s.Table})
			continue
		}
		before := len(changes)

		for _, dbName := range s.DBNames {
			if !migrator.HasColumn(value, dbName) {
				changes = append(changes, Change{Kind: ChangeAddColumn, Table: s.Table, Name: dbName})
			}
		}

		var indexes []string
		for _, idx := range s.ParseIndexes() {
			indexes = append(indexes, idx.Name)
		}
		sort.Strings(indexes)
		for _, name := range indexes {
			if !migrator.HasIndex(value, name) {
				changes = append(changes, Change{Kind: ChangeCreateIndex, Table: s.Table, Name: name})
			}
		}

		var checks []string
		for _, chk := range s.ParseCheckConstraints() {
			checks = append(checks, chk.Name)
		}
		sort.Strings(checks)
		for _, name := range checks {
			if !migrator.HasConstraint(value, name) {
				changes = append(changes, Change{Kind: ChangeAddCheck, Table: s.Table, Name: name})
			}
		}

		for _, c := range models.OwnedConstraints(s) {
			if !migrator.HasConstraint(value, c.Name) {
				changes = append(changes, Change{Kind: ChangeAddForeignKey, Table: s.Table, Name: c.Name})
			}
		}

		drift, err := columnDrift(migrator, value, s)
		if err != nil {
			return nil, err
		}
		changes = append(changes, drift...)

		// Anything else AutoMigrate would still rewrite, such as a changed
		// type or default, is reported against the whole table.
		if len(changes) == before {
			stmts, err := d.render(ctx, value)
			if err != nil {
				return nil, err
			}
			if len(stmts) > 0 {
				changes = append(changes, Change{Kind: ChangeAlterTable, Table: s.Table})
			}
		}
	}

	return changes, nil
}

// columnDrift reports existing columns that accept NULL where the model
// requires a value, or whose declared string size differs.
func columnDrift(migrator gorm.Migrator, value interface{}, s *schema.Schema) ([]Change, error) {
	columnTypes, err := migrator.ColumnTypes(value)
	if err != nil {
		return nil, fmt.Errorf("inspect %s columns: %w", s.Table, err)
	}
	byName := make(map[string]gorm.ColumnType, len(columnTypes))
	for _, ct := range columnTypes {
		byName[ct.Name()] = ct
	}

	var changes []Change
	for _, dbName := range s.DBNames {
		field := s.FieldsByDBName[dbName]
		ct, ok := byName[dbName]
		if !ok || field.IgnoreMigration || field.PrimaryKey {
			continue
		}
		drifted := false
		if nullable, ok := ct.Nullable(); ok && nullable && field.NotNull {
			drifted = true
		}
		if field.DataType == schema.String && field.Size > 0 {
			if length, ok := ct.Length(); ok && length > 0 && length != int64(field.Size) {
				drifted = true
			}
		}
		if drifted {
			changes = append(changes, Change{Kind: ChangeAlterColumn, Table: s.Table, Name: dbName})
		}
	}
	return changes, nil
}

var errDryRun = errors.New("dry run")

// DDL returns the statements Migrate would execute right now, in order.
// They are captured inside a transaction that is always rolled back.
func (d *DB) DDL(ctx context.Context) ([]string, error) {
	return d.render(ctx, models.All()...)
}

func (d *DB) render(ctx context.Context, values ...interface{}) ([]string, error) {
	rec := &ddlRecorder{}
	err := d.db.WithContext(ctx).Session(&gorm.Session{Logger: rec}).Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(values...); err != nil {
			return err
		}
		return errDryRun
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, fmt.Errorf("render ddl: %w", err)
	}
	return rec.statements, nil
}

// ddlRecorder is a gorm logger that keeps schema-changing statements.
// When next is set every call is passed on to it as well.
type ddlRecorder struct {
	next       logger.Interface
	statements []string
}

var ddlVerbs = []string{"CREATE ", "ALTER ", "DROP "}

func (r *ddlRecorder) LogMode(level logger.LogLevel) logger.Interface {
	if r.next != nil {
		r.next = r.next.LogMode(level)
	}
	return r
}

func (r *ddlRecorder) Info(ctx context.Context, msg string, args ...interface{}) {
	if r.next != nil {
		r.next.Info(ctx, msg, args...)
	}
}

func (r *ddlRecorder) Warn(ctx context.Context, msg string, args ...interface{}) {
	if r.next != nil {
		r.next.Warn(ctx, msg, args...)
	}
}

func (r *ddlRecorder) Error(ctx context.Context, msg string, args ...interface{}) {
	if r.next != nil {
		r.next.Error(ctx, msg, args...)
	}
}

func (r *ddlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if r.next != nil {
		r.next.Trace(ctx, begin, fc, err)
	}
	if err != nil {
		return
	}
	sql, _ := fc()
	sql = strings.TrimSpace(sql)
	upper := strings.ToUpper(sql)
	for _, verb := range ddlVerbs {
		if strings.HasPrefix(upper, verb) {
			r.statements = append(r.statements, sql)
			return
		}
	}
}
