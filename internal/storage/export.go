// ABOUTME: Export of the exercise catalog back to ExerciseDB form.
// ABOUTME: Supports JSON and YAML (re-importable) and Markdown tables grouped by body part.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/fitplan/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportCatalog reads exercises back as catalog entries, ordered by name.
// A non-empty bodyPart limits the export to that body part.
func (d *DB) ExportCatalog(ctx context.Context, bodyPart string) ([]CatalogEntry, error) {
	db := d.db.WithContext(ctx)
	q := db.
		Preload("BodyPart").Preload("Equipment").Preload("Target").
		Order("name").Order("id")
	if bodyPart != "" {
		sub := db.Table(models.Table("body_part")).Select("id").Where("name = ?", bodyPart)
		q = q.Where("body_part_id IN (?)", sub)
	}

	var exercises []models.Exercise
	if err := q.Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if len(exercises) == 0 {
		return []CatalogEntry{}, nil
	}

	ids := make([]int32, len(exercises))
	for i, ex := range exercises {
		ids[i] = ex.ID
	}
	var links []models.SecondaryTarget
	if err := db.Preload("Target").Where("exercise_id IN ?", ids).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list secondary targets: %w", err)
	}
	secondary := make(map[int32][]string)
	for _, l := range links {
		if l.Target != nil {
			secondary[l.ExerciseID] = append(secondary[l.ExerciseID], l.Target.Name)
		}
	}

	entries := make([]CatalogEntry, 0, len(exercises))
	for _, ex := range exercises {
		muscles := secondary[ex.ID]
		sort.Strings(muscles)
		e := CatalogEntry{
			ID:               fmt.Sprintf("%04d", ex.ID),
			Name:             ex.Name,
			SecondaryMuscles: muscles,
			GifURL:           ex.GifURL,
			Instructions:     splitInstructions(ex.Instructions),
		}
		if ex.BodyPart != nil {
			e.BodyPart = ex.BodyPart.Name
		}
		if ex.Equipment != nil {
			e.Equipment = ex.Equipment.Name
		}
		if ex.Target != nil {
			e.Target = ex.Target.Name
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func splitInstructions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ExportJSON encodes entries in the format LoadCatalog reads back.
func ExportJSON(entries []CatalogEntry) ([]byte, error) {
	return json.MarshalIndent(entries, "", "  ")
}

// ExportYAML encodes entries in the format LoadCatalog reads back.
func ExportYAML(entries []CatalogEntry) ([]byte, error) {
	return yaml.Marshal(entries)
}

// ExportMarkdown renders entries as one table per body part.
func ExportMarkdown(entries []CatalogEntry) string {
	grouped := make(map[string][]CatalogEntry)
	for _, e := range entries {
		grouped[e.BodyPart] = append(grouped[e.BodyPart], e)
	}

	var parts []string
	for p := range grouped {
		parts = append(parts, p)
	}
	sort.Strings(parts)

	var sb strings.Builder
	now := time.Now()
	sb.WriteString(fmt.Sprintf("# Exercise Catalog - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, p := range parts {
		sb.WriteString(fmt.Sprintf("## %s\n\n", p))
		sb.WriteString("| Exercise | Target | Equipment | Secondary |\n")
		sb.WriteString("|----------|--------|-----------|-----------|\n")
		for _, e := range grouped[p] {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				escapeCell(e.Name), escapeCell(e.Target), escapeCell(e.Equipment),
				escapeCell(strings.Join(e.SecondaryMuscles, ", "))))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
