// ABOUTME: Tests for schema application, drift detection, and DDL rendering.
// ABOUTME: Covers idempotent migration and recovery of dropped columns and indexes.
package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/harperreed/fitplan/internal/models"
)

func TestPendingOnEmptyDatabase(t *testing.T) {
	db := setupTestDB(t)

	pending, err := db.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}

	tables := models.TableNames()
	if len(pending) != len(tables) {
		t.Fatalf("expected %d pending changes, got %d: %v", len(tables), len(pending), pending)
	}
	for i, c := range pending {
		if c.Kind != ChangeCreateTable {
			t.Errorf("pending[%d].Kind = %q, want %q", i, c.Kind, ChangeCreateTable)
		}
		if c.Table != tables[i] {
			t.Errorf("pending[%d].Table = %q, want %q", i, c.Table, tables[i])
		}
	}
}

func TestMigrateCreatesEveryTable(t *testing.T) {
	db := setupMigratedDB(t)

	migrator := db.Gorm().Migrator()
	for _, name := range models.TableNames() {
		if !migrator.HasTable(name) {
			t.Errorf("expected table %s", name)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)

	pending, err := db.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending changes after Migrate, got %v", pending)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	pending, err = db.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending changes after second Migrate, got %v", pending)
	}
}

func TestMigrateKeepsData(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)
	f := seedFixture(t, db)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	var got models.Exercise
	if err := db.Gorm().Take(&got, f.exercise.ID).Error; err != nil {
		t.Fatalf("exercise lost after Migrate: %v", err)
	}
	if got.Name != f.exercise.Name {
		t.Errorf("Name = %q, want %q", got.Name, f.exercise.Name)
	}
}

func TestPendingDetectsDroppedIndex(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)

	if err := db.Gorm().Exec("DROP INDEX name_idx").Error; err != nil {
		t.Fatalf("DROP INDEX failed: %v", err)
	}

	pending, err := db.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	want := Change{Kind: ChangeCreateIndex, Table: models.Table("exercise"), Name: "name_idx"}
	if len(pending) != 1 || pending[0] != want {
		t.Fatalf("Pending = %v, want [%v]", pending, want)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	pending, err = db.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected index to be restored, still pending: %v", pending)
	}
}

func TestPendingDetectsDroppedColumn(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)

	if err := db.Gorm().Exec("ALTER TABLE mvfp_training_plan DROP COLUMN last_training_time").Error; err != nil {
		t.Fatalf("DROP COLUMN failed: %v", err)
	}

	pending, err := db.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	want := Change{Kind: ChangeAddColumn, Table: models.Table("training_plan"), Name: "last_training_time"}
	if len(pending) != 1 || pending[0] != want {
		t.Fatalf("Pending = %v, want [%v]", pending, want)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	pending, err = db.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected column to be restored, still pending: %v", pending)
	}
}

func TestChangeString(t *testing.T) {
	tests := []struct {
		change Change
		want   string
	}{
		{Change{Kind: ChangeCreateTable, Table: "mvfp_target"}, "create table mvfp_target"},
		{Change{Kind: ChangeCreateIndex, Table: "mvfp_exercise", Name: "name_idx"}, "create index name_idx on mvfp_exercise"},
		{Change{Kind: ChangeAlterColumn, Table: "mvfp_body_part", Name: "name"}, "alter column name on mvfp_body_part"},
		{Change{Kind: ChangeAlterTable, Table: "mvfp_body_part"}, "alter table mvfp_body_part"},
	}
	for _, tt := range tests {
		if got := tt.change.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// createStatement returns the CREATE TABLE statement for table, or "".
func createStatement(stmts []string, table string) (string, int) {
	for i, s := range stmts {
		if strings.HasPrefix(s, "CREATE TABLE") && strings.Contains(s, "`"+table+"`") &&
			strings.Index(s, "`"+table+"`") < strings.Index(s, "(") {
			return s, i
		}
	}
	return "", -1
}

func TestDDLOnFreshDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer db.Close()

	stmts, err := db.DDL(ctx)
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}

	for _, table := range models.TableNames() {
		if s, _ := createStatement(stmts, table); s == "" {
			t.Errorf("no CREATE TABLE for %s in %v", table, stmts)
		}
	}

	var sawIndex bool
	for _, s := range stmts {
		if strings.HasPrefix(s, "CREATE INDEX") && strings.Contains(s, "name_idx") {
			sawIndex = true
		}
	}
	if !sawIndex {
		t.Error("expected CREATE INDEX name_idx")
	}

	// Rendering must not apply anything.
	pending, err := db.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != len(models.TableNames()) {
		t.Errorf("DDL changed the database: pending = %v", pending)
	}
}

func TestDDLCreatesReferencedTablesFirst(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer db.Close()

	stmts, err := db.DDL(context.Background())
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}

	position := func(name string) int {
		_, i := createStatement(stmts, models.Table(name))
		return i
	}
	deps := map[string][]string{
		"exercise":         {"body_part", "target", "equipment"},
		"secondary_target": {"exercise", "target"},
		"planned_exercise": {"exercise", "training_plan"},
	}
	for table, refs := range deps {
		for _, ref := range refs {
			if position(ref) > position(table) {
				t.Errorf("%s created before %s", table, ref)
			}
		}
	}
}

func TestDDLDeclaresConstraints(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer db.Close()

	stmts, err := db.DDL(context.Background())
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}

	tests := []struct {
		table string
		want  []string
	}{
		{"exercise", []string{"chk_exercise_name_len", "chk_exercise_instructions_len", "fk_mvfp_exercise_body_part", "REFERENCES `mvfp_body_part`", "NOT NULL"}},
		{"secondary_target", []string{"PRIMARY KEY", "`exercise_id`", "`target_id`", "REFERENCES `mvfp_exercise`", "ON DELETE CASCADE"}},
		{"planned_exercise", []string{"fk_mvfp_training_plan_exercises", "REFERENCES `mvfp_training_plan`", "REFERENCES `mvfp_exercise`"}},
		{"training_plan", []string{"DEFAULT CURRENT_TIMESTAMP", "chk_training_plan_user_email_len"}},
	}
	for _, tt := range tests {
		s, _ := createStatement(stmts, models.Table(tt.table))
		for _, want := range tt.want {
			if !strings.Contains(s, want) {
				t.Errorf("CREATE TABLE %s missing %q:\n%s", tt.table, want, s)
			}
		}
	}

	// Reference columns are plain integers, not independent sequences.
	s, _ := createStatement(stmts, models.Table("planned_exercise"))
	if strings.Count(s, "AUTOINCREMENT") != 1 {
		t.Errorf("expected only the id column to autoincrement:\n%s", s)
	}
}

func TestDDLEmptyAfterMigrate(t *testing.T) {
	db := setupMigratedDB(t)

	stmts, err := db.DDL(context.Background())
	if err != nil {
		t.Fatalf("DDL failed: %v", err)
	}
	if len(stmts) != 0 {
		t.Errorf("expected no DDL on a migrated database, got %d statement(s): %v", len(stmts), stmts)
	}
}

// rebuildBodyPart replaces mvfp_body_part with a table whose name column is
// declared as nameDecl. Everything else matches what Migrate creates.
func rebuildBodyPart(t *testing.T, db *DB, nameDecl string) {
	t.Helper()
	for _, stmt := range []string{
		"DROP TABLE mvfp_body_part",
		"CREATE TABLE `mvfp_body_part` (`id` integer PRIMARY KEY AUTOINCREMENT,`name` " + nameDecl +
			",CONSTRAINT `chk_body_part_name_len` CHECK (length(name) <= 256))",
	} {
		if err := db.Gorm().Exec(stmt).Error; err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
}

func TestPendingDetectsColumnDrift(t *testing.T) {
	table := models.Table("body_part")
	tests := []struct {
		name     string
		nameDecl string
		want     Change
	}{
		{"nullable", "text", Change{Kind: ChangeAlterColumn, Table: table, Name: "name"}},
		{"resized", "varchar(10) NOT NULL", Change{Kind: ChangeAlterColumn, Table: table, Name: "name"}},
		{"retyped", "integer NOT NULL", Change{Kind: ChangeAlterTable, Table: table}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := setupMigratedDB(t)
			rebuildBodyPart(t, db, tt.nameDecl)

			stmts, err := db.DDL(ctx)
			if err != nil {
				t.Fatalf("DDL failed: %v", err)
			}
			if len(stmts) == 0 {
				t.Fatal("expected DDL to rebuild the drifted table")
			}

			pending, err := db.Pending(ctx)
			if err != nil {
				t.Fatalf("Pending failed: %v", err)
			}
			if len(pending) != 1 || pending[0] != tt.want {
				t.Fatalf("Pending = %v, want [%v]", pending, tt.want)
			}

			applied, err := db.Apply(ctx)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if len(applied) == 0 {
				t.Error("Apply reported no statements for a drifted table")
			}

			pending, err = db.Pending(ctx)
			if err != nil {
				t.Fatalf("Pending failed: %v", err)
			}
			if len(pending) != 0 {
				t.Errorf("expected drift to be repaired, still pending: %v", pending)
			}
		})
	}
}

func TestMigrateRestoresNotNull(t *testing.T) {
	ctx := context.Background()
	db := setupMigratedDB(t)
	rebuildBodyPart(t, db, "text")

	if err := db.Gorm().Exec("INSERT INTO mvfp_body_part (name) VALUES (NULL)").Error; err != nil {
		t.Fatalf("drifted table should accept NULL: %v", err)
	}
	if err := db.Gorm().Exec("DELETE FROM mvfp_body_part").Error; err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	err := db.Gorm().Exec("INSERT INTO mvfp_body_part (name) VALUES (NULL)").Error
	if got := ClassifyConstraint(err); got != ConstraintNotNull {
		t.Errorf("ClassifyConstraint(%v) = %q, want %q", err, got, ConstraintNotNull)
	}
}

func TestApplyOnMigratedDatabase(t *testing.T) {
	db := setupMigratedDB(t)

	stmts, err := db.Apply(context.Background())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(stmts) != 0 {
		t.Errorf("expected Apply to execute nothing, got %v", stmts)
	}
}
