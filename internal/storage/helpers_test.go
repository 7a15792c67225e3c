// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides isolated SQLite databases and seeded lookup rows.
package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harperreed/fitplan/internal/models"
	"gorm.io/gorm/clause"
)

// setupTestDB opens an empty SQLite database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "fitplan.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// setupMigratedDB opens a SQLite database with every table created.
func setupMigratedDB(t *testing.T) *DB {
	t.Helper()
	db := setupTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return db
}

type fixture struct {
	bodyPart  models.BodyPart
	equipment models.Equipment
	target    models.Target
	secondary models.Target
	exercise  models.Exercise
}

// seedFixture inserts one row in each lookup table plus one exercise.
func seedFixture(t *testing.T, db *DB) *fixture {
	t.Helper()
	g := db.Gorm()

	f := &fixture{
		bodyPart:  models.BodyPart{Name: "waist"},
		equipment: models.Equipment{Name: "body weight"},
		target:    models.Target{Name: "abs"},
		secondary: models.Target{Name: "hip flexors"},
	}
	for _, row := range []any{&f.bodyPart, &f.equipment, &f.target, &f.secondary} {
		if err := g.Create(row).Error; err != nil {
			t.Fatalf("seed %T failed: %v", row, err)
		}
	}

	f.exercise = models.Exercise{
		Name:         "3/4 sit-up",
		BodyPartID:   f.bodyPart.ID,
		TargetID:     f.target.ID,
		EquipmentID:  f.equipment.ID,
		GifURL:       "https://example.com/0001.gif",
		Instructions: "Lie flat on your back.",
	}
	if err := g.Omit(clause.Associations).Create(&f.exercise).Error; err != nil {
		t.Fatalf("seed exercise failed: %v", err)
	}
	return f
}
