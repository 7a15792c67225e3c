// ABOUTME: Exercise catalog import for populating the lookup and exercise tables.
// ABOUTME: Reads ExerciseDB-style JSON or YAML and links every secondary muscle as a secondary target.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/fitplan/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogEntry is one exercise as published by ExerciseDB.
type CatalogEntry struct {
	ID               string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string   `json:"name" yaml:"name"`
	BodyPart         string   `json:"bodyPart" yaml:"bodyPart"`
	Equipment        string   `json:"equipment" yaml:"equipment"`
	Target           string   `json:"target" yaml:"target"`
	SecondaryMuscles []string `json:"secondaryMuscles,omitempty" yaml:"secondaryMuscles,omitempty"`
	GifURL           string   `json:"gifUrl" yaml:"gifUrl"`
	Instructions     []string `json:"instructions" yaml:"instructions"`
}

// ImportSummary holds counts of rows created by ImportCatalog.
type ImportSummary struct {
	Exercises        int `json:"exercises"`
	Skipped          int `json:"skipped"`
	BodyParts        int `json:"body_parts"`
	Equipment        int `json:"equipment"`
	Targets          int `json:"targets"`
	SecondaryTargets int `json:"secondary_targets"`
}

// LoadCatalog reads a catalog file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	return ParseCatalog(data, format)
}

// ParseCatalog decodes a catalog in the given format ("json" or "yaml").
func ParseCatalog(data []byte, format string) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	switch format {
	case "json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog format: %q", format)
	}
	return entries, nil
}

// ImportCatalog creates missing body parts, equipment, and targets, every
// exercise whose name is not already present, and the secondary-target
// links for the exercises it creates. It runs in one transaction, so a
// constraint violation leaves the database untouched.
func (d *DB) ImportCatalog(ctx context.Context, entries []CatalogEntry) (*ImportSummary, error) {
	summary := &ImportSummary{}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lk := newLookups(tx)

		for i, e := range entries {
			name := strings.TrimSpace(e.Name)
			if name == "" {
				return fmt.Errorf("entry %d: missing name", i)
			}

			var existing int64
			if err := tx.Model(&models.Exercise{}).Where("name = ?", name).Count(&existing).Error; err != nil {
				return fmt.Errorf("look up exercise %q: %w", name, err)
			}
			if existing > 0 {
				summary.Skipped++
				continue
			}

			bodyPartID, err := lk.resolve(lookupBodyPart, e.BodyPart)
			if err != nil {
				return fmt.Errorf("entry %q: %w", name, err)
			}
			equipmentID, err := lk.resolve(lookupEquipment, e.Equipment)
			if err != nil {
				return fmt.Errorf("entry %q: %w", name, err)
			}
			targetID, err := lk.resolve(lookupTarget, e.Target)
			if err != nil {
				return fmt.Errorf("entry %q: %w", name, err)
			}

			ex := models.Exercise{
				Name:         name,
				BodyPartID:   bodyPartID,
				TargetID:     targetID,
				EquipmentID:  equipmentID,
				GifURL:       strings.TrimSpace(e.GifURL),
				Instructions: strings.Join(e.Instructions, "\n"),
			}
			if err := tx.Omit(clause.Associations).Create(&ex).Error; err != nil {
				return fmt.Errorf("create exercise %q: %w", name, err)
			}
			summary.Exercises++

			linked := make(map[int32]bool)
			for _, muscle := range e.SecondaryMuscles {
				id, err := lk.resolve(lookupTarget, muscle)
				if err != nil {
					return fmt.Errorf("entry %q: %w", name, err)
				}
				if linked[id] {
					continue
				}
				linked[id] = true

				st := models.SecondaryTarget{ExerciseID: ex.ID, TargetID: id}
				if err := tx.Omit(clause.Associations).Create(&st).Error; err != nil {
					return fmt.Errorf("link secondary target %q to %q: %w", muscle, name, err)
				}
				summary.SecondaryTargets++
			}
		}

		summary.BodyParts = lk.created[lookupBodyPart]
		summary.Equipment = lk.created[lookupEquipment]
		summary.Targets = lk.created[lookupTarget]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import catalog: %w", err)
	}
	return summary, nil
}

type lookupKind string

const (
	lookupBodyPart  lookupKind = "body part"
	lookupEquipment lookupKind = "equipment"
	lookupTarget    lookupKind = "target"
)

var lookupTables = map[lookupKind]string{
	lookupBodyPart:  models.BodyPart{}.TableName(),
	lookupEquipment: models.Equipment{}.TableName(),
	lookupTarget:    models.Target{}.TableName(),
}

// lookupRow has the shape shared by every lookup table.
type lookupRow struct {
	ID   int32 `gorm:"primaryKey;autoIncrement"`
	Name string
}

// lookups resolves lookup names to ids within one transaction, creating
// rows on first sight.
type lookups struct {
	tx      *gorm.DB
	ids     map[lookupKind]map[string]int32
	created map[lookupKind]int
}

func newLookups(tx *gorm.DB) *lookups {
	return &lookups{
		tx:      tx,
		ids:     make(map[lookupKind]map[string]int32),
		created: make(map[lookupKind]int),
	}
}

func (l *lookups) resolve(kind lookupKind, name string) (int32, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("missing %s", kind)
	}

	cache := l.ids[kind]
	if cache == nil {
		cache = make(map[string]int32)
		l.ids[kind] = cache
	}
	if id, ok := cache[name]; ok {
		return id, nil
	}

	table := lookupTables[kind]
	var row lookupRow
	err := l.tx.Table(table).Where("name = ?", name).Take(&row).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = lookupRow{Name: name}
		if err := l.tx.Table(table).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("create %s %q: %w", kind, name, err)
		}
		l.created[kind]++
	default:
		return 0, fmt.Errorf("look up %s %q: %w", kind, name, err)
	}

	cache[name] = row.ID
	return row.ID, nil
}
