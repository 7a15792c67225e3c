// ABOUTME: Structural description of the declared tables.
// ABOUTME: Derived from gorm's parse of the struct tags, so it cannot drift from the models.
package models

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

// TableInfo describes one declared table.
type TableInfo struct {
	Name        string           `json:"name" yaml:"name"`
	Columns     []ColumnInfo     `json:"columns" yaml:"columns"`
	PrimaryKey  []string         `json:"primary_key" yaml:"primary_key"`
	Indexes     []IndexInfo      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Checks      []CheckInfo      `json:"checks,omitempty" yaml:"checks,omitempty"`
	ForeignKeys []ForeignKeyInfo `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type" yaml:"type"`
	Size          int    `json:"size,omitempty" yaml:"size,omitempty"`
	NotNull       bool   `json:"not_null" yaml:"not_null"`
	PrimaryKey    bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	AutoIncrement bool   `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
	Default       string `json:"default,omitempty" yaml:"default,omitempty"`
}

// IndexInfo describes a secondary index.
type IndexInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// CheckInfo describes a named CHECK constraint.
type CheckInfo struct {
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`
}

// ForeignKeyInfo describes a foreign key owned by the table.
type ForeignKeyInfo struct {
	Name              string   `json:"name" yaml:"name"`
	Columns           []string `json:"columns" yaml:"columns"`
	ReferencedTable   string   `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns" yaml:"referenced_columns"`
	OnUpdate          string   `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	OnDelete          string   `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
}

// Column returns the named column, or false.
func (t TableInfo) Column(name string) (ColumnInfo, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// Parse parses every model into a shared cache. Has-many foreign keys are
// registered on the child schema during the parent's parse, so all models
// must go through the same cache before any of them is inspected.
func Parse(cache *sync.Map, namer schema.Namer) ([]*schema.Schema, error) {
	var out []*schema.Schema
	for _, m := range All() {
		s, err := schema.Parse(m, cache, namer)
		if err != nil {
			return nil, fmt.Errorf("parse %T: %w", m, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Describe returns every declared table, in All order.
func Describe() ([]TableInfo, error) {
	schemas, err := Parse(&sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		return nil, err
	}

	tables := make([]TableInfo, 0, len(schemas))
	for _, s := range schemas {
		tables = append(tables, describe(s))
	}
	return tables, nil
}

// DescribeTable returns one table by name, with or without the prefix.
func DescribeTable(name string) (TableInfo, error) {
	tables, err := Describe()
	if err != nil {
		return TableInfo{}, err
	}
	if !strings.HasPrefix(name, TablePrefix) {
		name = Table(name)
	}
	for _, t := range tables {
		if t.Name == name {
			return t, nil
		}
	}
	return TableInfo{}, fmt.Errorf("unknown table: %s", name)
}

func describe(s *schema.Schema) TableInfo {
	info := TableInfo{Name: s.Table}

	for _, dbName := range s.DBNames {
		f := s.FieldsByDBName[dbName]
		info.Columns = append(info.Columns, ColumnInfo{
			Name:          f.DBName,
			Type:          string(f.DataType),
			Size:          f.Size,
			NotNull:       f.NotNull || f.PrimaryKey,
			PrimaryKey:    f.PrimaryKey,
			AutoIncrement: f.AutoIncrement,
			Default:       f.DefaultValue,
		})
	}

	for _, f := range s.PrimaryFields {
		info.PrimaryKey = append(info.PrimaryKey, f.DBName)
	}

	for _, idx := range s.ParseIndexes() {
		ii := IndexInfo{Name: idx.Name, Unique: idx.Class == "UNIQUE"}
		for _, opt := range idx.Fields {
			ii.Columns = append(ii.Columns, opt.DBName)
		}
		info.Indexes = append(info.Indexes, ii)
	}
	sort.Slice(info.Indexes, func(i, j int) bool { return info.Indexes[i].Name < info.Indexes[j].Name })

	for _, chk := range s.ParseCheckConstraints() {
		info.Checks = append(info.Checks, CheckInfo{Name: chk.Name, Expression: chk.Constraint})
	}
	sort.Slice(info.Checks, func(i, j int) bool { return info.Checks[i].Name < info.Checks[j].Name })

	for _, c := range OwnedConstraints(s) {
		fk := ForeignKeyInfo{
			Name:            c.Name,
			ReferencedTable: c.ReferenceSchema.Table,
			OnUpdate:        c.OnUpdate,
			OnDelete:        c.OnDelete,
		}
		for _, f := range c.ForeignKeys {
			fk.Columns = append(fk.Columns, f.DBName)
		}
		for _, f := range c.References {
			fk.ReferencedColumns = append(fk.ReferencedColumns, f.DBName)
		}
		info.ForeignKeys = append(info.ForeignKeys, fk)
	}

	return info
}

// OwnedConstraints returns the foreign keys that live on s's table,
// including those declared from the parent side of a has-many.
func OwnedConstraints(s *schema.Schema) []*schema.Constraint {
	var out []*schema.Constraint
	for _, rel := range s.Relationships.Relations {
		if rel.Field.IgnoreMigration {
			continue
		}
		c := rel.ParseConstraint()
		if c == nil || c.Schema != s {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
