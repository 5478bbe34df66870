// Package nutrition tests for the candidate-query match ladder.
package nutrition

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
)

func setupNutritionDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
	CREATE TABLE foods (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		NameTH TEXT,
		NameEng TEXT,
		EnergyKcal REAL,
		ProteinG REAL,
		FatG REAL,
		CarbohydrateG REAL,
		ServingSizeGram REAL
	);
	CREATE TABLE Nutrition (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE,
		calories REAL,
		protein REAL,
		fat REAL,
		carbs REAL
	);`)
	if err != nil {
		t.Fatalf("Failed to create reference tables: %v", err)
	}

	_, err = db.Exec(`
	INSERT INTO foods (NameTH, NameEng, EnergyKcal, ProteinG, FatG, CarbohydrateG, ServingSizeGram)
	VALUES
		('ผัดกะเพรา', 'Pad Kaprao', 520, 24, 28, 42, 350),
		('ข้าวผัด', 'Fried Rice', 610, 15, 20, 88, 300);
	INSERT INTO Nutrition (name, calories, protein, fat, carbs)
	VALUES ('Green Curry', 240, 12, 16, 11);`)
	if err != nil {
		t.Fatalf("Failed to seed reference rows: %v", err)
	}
	return db
}

func TestResolveCanonicalName(t *testing.T) {
	r := NewResolver(setupNutritionDB(t), nil)

	entry, err := r.Resolve("ผัดกะเพรา")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if entry.Name != "ผัดกะเพรา" {
		t.Errorf("Name = %q, want %q", entry.Name, "ผัดกะเพรา")
	}
	if entry.EnergyKcal == nil || *entry.EnergyKcal != 520 {
		t.Errorf("EnergyKcal = %v, want 520", entry.EnergyKcal)
	}
	if entry.ServingGram == nil || *entry.ServingGram != 350 {
		t.Errorf("ServingGram = %v, want 350", entry.ServingGram)
	}
}

func TestResolveMisspellingFoldsToCanonical(t *testing.T) {
	r := NewResolver(setupNutritionDB(t), nil)

	canonical, err := r.Resolve("ผัดกะเพรา")
	if err != nil {
		t.Fatalf("Resolve(canonical) failed: %v", err)
	}

	for _, misspelled := range []string{"ผัดกระเพรา", "ผัดกะเพราะ", "ผัดกระเพราะ"} {
		entry, err := r.Resolve(misspelled)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", misspelled, err)
		}
		if entry.Name != canonical.Name || *entry.EnergyKcal != *canonical.EnergyKcal {
			t.Errorf("Resolve(%q) = %+v, want same entry as canonical", misspelled, entry)
		}
	}
}

func TestResolveEnglishNameWithSpaces(t *testing.T) {
	r := NewResolver(setupNutritionDB(t), nil)

	entry, err := r.Resolve("  friedrice ")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if entry.Name != "Fried Rice" {
		t.Errorf("Name = %q, want %q", entry.Name, "Fried Rice")
	}
}

func TestResolveLegacyFallback(t *testing.T) {
	r := NewResolver(setupNutritionDB(t), nil)

	entry, err := r.Resolve("green curry")
	if err != nil {
		t.Fatalf("Resolve() via legacy table failed: %v", err)
	}
	if entry.Name != "Green Curry" {
		t.Errorf("Name = %q, want %q", entry.Name, "Green Curry")
	}
	if entry.EnergyKcal == nil || *entry.EnergyKcal != 240 {
		t.Errorf("EnergyKcal = %v, want 240", entry.EnergyKcal)
	}
	// the legacy schema carries no serving size
	if entry.ServingGram != nil {
		t.Errorf("ServingGram = %v, want nil from legacy schema", entry.ServingGram)
	}
}

func TestResolveSurvivesMissingPrimaryTable(t *testing.T) {
	db := setupNutritionDB(t)
	if _, err := db.Exec("DROP TABLE foods"); err != nil {
		t.Fatalf("Failed to drop foods: %v", err)
	}

	// primary-table candidates fail and are swallowed; the ladder continues
	r := NewResolver(db, nil)
	entry, err := r.Resolve("Green Curry")
	if err != nil {
		t.Fatalf("Resolve() failed with foods table absent: %v", err)
	}
	if entry.Name != "Green Curry" {
		t.Errorf("Name = %q, want %q", entry.Name, "Green Curry")
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(setupNutritionDB(t), nil)

	_, err := r.Resolve("nonexistent dish")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Resolve() error = %v, want NOT_FOUND", err)
	}
}

func TestLoadSynonymsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.json")
	table := map[string]string{"krapow": "kaprao"}
	data, _ := json.Marshal(table)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write synonyms file: %v", err)
	}

	syn, err := LoadSynonyms(path)
	if err != nil {
		t.Fatalf("LoadSynonyms() failed: %v", err)
	}
	if syn.Normalize("Pad Krapow") != "padkaprao" {
		t.Errorf("Normalize() = %q, want %q", syn.Normalize("Pad Krapow"), "padkaprao")
	}

	// empty path yields the built-in table
	builtin, err := LoadSynonyms("")
	if err != nil {
		t.Fatalf("LoadSynonyms(\"\") failed: %v", err)
	}
	if builtin.Normalize("ผัดกะเพราะ") != "ผัดกะเพรา" {
		t.Errorf("built-in table does not fold the known misspelling")
	}
}

func TestNormalize(t *testing.T) {
	syn := DefaultSynonyms()

	tests := []struct {
		in   string
		want string
	}{
		{"  Pad Kaprao  ", "padkaprao"},
		{"ผัดกระเพราะ", "ผัดกะเพรา"},
		{"Fried  Rice", "friedrice"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := syn.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
