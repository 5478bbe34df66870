// Package store provides database schema management for the meal ledger.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
	"github.com/chanikarn/mealrecord/internal/logging"
)

// Column declares one column of a target schema.
type Column struct {
	Name   string
	Type   string
	Suffix string // constraints and defaults, e.g. "NOT NULL"
}

// definition renders the column for CREATE TABLE / ALTER TABLE statements.
func (c Column) definition() string {
	if c.Suffix == "" {
		return fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return fmt.Sprintf("%s %s %s", c.Name, c.Type, c.Suffix)
}

// alterDefinition renders the column for an additive ALTER. SQLite rejects
// adding a NOT NULL column without a default to a populated table, so the
// constraint is relaxed for appended columns.
func (c Column) alterDefinition() string {
	suffix := c.Suffix
	if strings.Contains(suffix, "NOT NULL") && !strings.Contains(suffix, "DEFAULT") {
		suffix = strings.TrimSpace(strings.ReplaceAll(suffix, "NOT NULL", ""))
	}
	if suffix == "" {
		return fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	return fmt.Sprintf("%s %s %s", c.Name, c.Type, suffix)
}

// MealTableName is the ledger table holding MealRecord rows.
const MealTableName = "MealRecord"

// mealColumns is the declarative target schema of the ledger table, in
// persisted order. Migrations may only append to this list; columns are
// never dropped or renamed.
var mealColumns = []Column{
	{Name: "id", Type: "INTEGER", Suffix: "PRIMARY KEY AUTOINCREMENT"},
	{Name: "userId", Type: "INTEGER", Suffix: "NOT NULL"},
	{Name: "foodId", Type: "INTEGER", Suffix: "NOT NULL DEFAULT 0"},
	{Name: "foodImage", Type: "TEXT"},
	{Name: "foodQuantity", Type: "REAL"},
	{Name: "mealType", Type: "TEXT"},
	{Name: "date", Type: "TEXT", Suffix: "NOT NULL"},
	{Name: "time", Type: "TEXT", Suffix: "NOT NULL"},
	{Name: "energyKcal", Type: "REAL"},
	{Name: "proteinG", Type: "REAL"},
	{Name: "fatG", Type: "REAL"},
	{Name: "carbohydrateG", Type: "REAL"},
	{Name: "portionMultiplier", Type: "REAL", Suffix: "DEFAULT 1"},
	{Name: "foodName", Type: "TEXT"},
}

// MealColumnNames returns the persisted column names in stable order.
func MealColumnNames() []string {
	names := make([]string, len(mealColumns))
	for i, c := range mealColumns {
		names[i] = c.Name
	}
	return names
}

// MealTableSQL returns the CREATE statement for the full current column set.
// The export serializer emits the same statement so a dumped script recreates
// an identical table.
func MealTableSQL() string {
	defs := make([]string, len(mealColumns))
	for i, c := range mealColumns {
		defs[i] = "  " + c.definition()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", MealTableName, strings.Join(defs, ",\n"))
}

// missingColumns diffs the target schema against an introspected column set
// and returns the columns to add, in target order. Pure; unit-testable
// without a store.
func missingColumns(target []Column, existing map[string]bool) []Column {
	var missing []Column
	for _, c := range target {
		if !existing[c.Name] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Manager ensures the meal-ledger table and its indexes exist and applies
// additive column migrations. It mutates only structure, never row data.
type Manager struct {
	db *sql.DB
}

// NewManager creates a new schema Manager for the ledger store.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Ensure is idempotent and safe to call on every process start and before
// every write. It creates the table with the full current column set, then
// appends any target column absent from the introspected schema. It never
// executes a destructive statement.
func (m *Manager) Ensure() error {
	if _, err := m.db.Exec(MealTableSQL()); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to create meal table", err)
	}

	existing, err := tableColumns(m.db, MealTableName)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to inspect meal table", err)
	}

	for _, col := range missingColumns(mealColumns, existing) {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", MealTableName, col.alterDefinition())
		if _, err := m.db.Exec(stmt); err != nil {
			return apperrors.Wrap(apperrors.ErrMigration,
				fmt.Sprintf("failed to add column %s", col.Name), err)
		}
		logging.Info("added ledger column", map[string]interface{}{"column": col.Name})
	}

	indexSQL := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_meal_user_date ON %s (userId, date);", MealTableName)
	if _, err := m.db.Exec(indexSQL); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to create ledger index", err)
	}

	return nil
}

// tableColumns introspects the current column names of a table.
func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// EnsureUserSchema creates the user reference table if absent. The resolver
// only reads it; rows are owned by the authentication collaborator.
func EnsureUserSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS User (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		displayName TEXT,
		createdAt TEXT DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(query); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to create user table", err)
	}
	return nil
}

// EnsureNutritionSchema creates both nutrition reference schemas if absent:
// the primary bilingual foods table and the legacy single-table schema the
// resolver falls back to. Reference rows come from a separately maintained
// dataset.
func EnsureNutritionSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS foods (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			NameTH TEXT,
			NameEng TEXT,
			EnergyKcal REAL,
			ProteinG REAL,
			FatG REAL,
			CarbohydrateG REAL,
			ServingSizeGram REAL
		);`,
		`CREATE TABLE IF NOT EXISTS Nutrition (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE,
			calories REAL,
			protein REAL,
			fat REAL,
			carbs REAL
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to create nutrition tables", err)
		}
	}
	return nil
}
