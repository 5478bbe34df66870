// Package store tests for schema management.
package store

import (
	"database/sql"
	"reflect"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMissingColumns(t *testing.T) {
	target := []Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "date", Type: "TEXT"},
		{Name: "foodName", Type: "TEXT"},
	}

	tests := []struct {
		name     string
		existing map[string]bool
		want     []string
	}{
		{
			name:     "empty table needs everything",
			existing: map[string]bool{},
			want:     []string{"id", "date", "foodName"},
		},
		{
			name:     "up to date",
			existing: map[string]bool{"id": true, "date": true, "foodName": true},
			want:     nil,
		},
		{
			name:     "partial schema",
			existing: map[string]bool{"id": true, "date": true},
			want:     []string{"foodName"},
		},
		{
			name:     "extra columns are never touched",
			existing: map[string]bool{"id": true, "date": true, "foodName": true, "legacyCol": true},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := missingColumns(target, tt.existing)
			var got []string
			for _, c := range missing {
				got = append(got, c.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("missingColumns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureCreatesFullSchema(t *testing.T) {
	db := openTestDB(t)
	m := NewManager(db)

	if err := m.Ensure(); err != nil {
		t.Fatalf("Ensure() failed: %v", err)
	}

	cols, err := tableColumns(db, MealTableName)
	if err != nil {
		t.Fatalf("Failed to inspect table: %v", err)
	}
	for _, name := range MealColumnNames() {
		if !cols[name] {
			t.Errorf("column %s missing after Ensure()", name)
		}
	}

	// the listing index must exist
	var indexName string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_meal_user_date'").Scan(&indexName)
	if err != nil {
		t.Errorf("index idx_meal_user_date not found: %v", err)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	m := NewManager(db)

	if err := m.Ensure(); err != nil {
		t.Fatalf("first Ensure() failed: %v", err)
	}
	before, err := tableColumns(db, MealTableName)
	if err != nil {
		t.Fatalf("Failed to inspect table: %v", err)
	}

	if err := m.Ensure(); err != nil {
		t.Fatalf("second Ensure() failed: %v", err)
	}
	after, err := tableColumns(db, MealTableName)
	if err != nil {
		t.Fatalf("Failed to inspect table: %v", err)
	}

	if !reflect.DeepEqual(before, after) {
		t.Errorf("second Ensure() changed the schema: before=%v after=%v", before, after)
	}
}

func TestEnsureMigratesOldSchema(t *testing.T) {
	db := openTestDB(t)

	// a table shape from an earlier app version, with data already in it
	_, err := db.Exec(`
	CREATE TABLE MealRecord (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		userId INTEGER NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		foodName TEXT
	);`)
	if err != nil {
		t.Fatalf("Failed to create old schema: %v", err)
	}
	_, err = db.Exec(
		"INSERT INTO MealRecord (userId, date, time, foodName) VALUES (1, '2024-05-01', '12:00:00', 'ข้าวผัด')")
	if err != nil {
		t.Fatalf("Failed to seed old row: %v", err)
	}

	m := NewManager(db)
	if err := m.Ensure(); err != nil {
		t.Fatalf("Ensure() failed on old schema: %v", err)
	}

	cols, err := tableColumns(db, MealTableName)
	if err != nil {
		t.Fatalf("Failed to inspect table: %v", err)
	}
	for _, name := range MealColumnNames() {
		if !cols[name] {
			t.Errorf("column %s missing after migration", name)
		}
	}

	// pre-existing row data survives untouched
	var foodName string
	var foodID int64
	err = db.QueryRow("SELECT foodName, foodId FROM MealRecord WHERE id = 1").Scan(&foodName, &foodID)
	if err != nil {
		t.Fatalf("Failed to read migrated row: %v", err)
	}
	if foodName != "ข้าวผัด" {
		t.Errorf("foodName = %q, want %q", foodName, "ข้าวผัด")
	}
	if foodID != 0 {
		t.Errorf("foodId default = %d, want 0", foodID)
	}
}

func TestEnsureUserAndNutritionSchemas(t *testing.T) {
	users := openTestDB(t)
	if err := EnsureUserSchema(users); err != nil {
		t.Fatalf("EnsureUserSchema() failed: %v", err)
	}
	if err := EnsureUserSchema(users); err != nil {
		t.Fatalf("EnsureUserSchema() not idempotent: %v", err)
	}

	nutrition := openTestDB(t)
	if err := EnsureNutritionSchema(nutrition); err != nil {
		t.Fatalf("EnsureNutritionSchema() failed: %v", err)
	}
	for _, table := range []string{"foods", "Nutrition"} {
		var name string
		err := nutrition.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}
