// Package export renders the full meal ledger in interchangeable formats.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
	"github.com/chanikarn/mealrecord/internal/ledger"
	"github.com/chanikarn/mealrecord/internal/models"
	"github.com/chanikarn/mealrecord/internal/store"
)

// Format selects an export rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatSQL  Format = "sql"
)

// IsValid reports whether the format is one of the supported renderings.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatSQL:
		return true
	}
	return false
}

// csvHeader is the fixed CSV column order. It is part of the export contract
// and must not change between releases.
var csvHeader = []string{
	"id", "userId", "foodId", "foodName", "foodImage", "foodQuantity",
	"mealType", "date", "time", "energyKcal", "proteinG", "fatG",
	"carbohydrateG", "portionMultiplier",
}

// Serializer renders ledger contents. It depends only on the ledger's read
// path and never mutates the store.
type Serializer struct {
	ledger *ledger.Ledger
}

// NewSerializer creates a Serializer over a ledger.
func NewSerializer(l *ledger.Ledger) *Serializer {
	return &Serializer{ledger: l}
}

// Export renders every ledger row, all users and dates, ordered by ascending
// id for determinism. A replayed SQL export reconstructs an identical row
// set, ids included.
func (s *Serializer) Export(format Format) ([]byte, error) {
	if !format.IsValid() {
		return nil, apperrors.New(apperrors.ErrInvalid, "unknown export format "+string(format))
	}

	records, err := s.ledger.ListAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to read ledger", err)
	}

	switch format {
	case FormatJSON:
		return renderJSON(records)
	case FormatCSV:
		return renderCSV(records), nil
	default:
		return renderSQL(records), nil
	}
}

// ExportToFile writes an export next to the app's other data, named
// MealRecord-<timestamp>.<ext>, and returns the written path.
func (s *Serializer) ExportToFile(format Format, dir string) (string, error) {
	data, err := s.Export(format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.Wrap(apperrors.ErrExportFailed, "failed to create export directory", err)
	}
	name := fmt.Sprintf("MealRecord-%d.%s", time.Now().UnixMilli(), format)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperrors.Wrap(apperrors.ErrExportFailed, "failed to write export file", err)
	}
	return path, nil
}

// renderJSON pretty-prints the rows as an array of objects keyed by the
// store-native field names.
func renderJSON(records []*models.MealRecord) ([]byte, error) {
	if records == nil {
		records = []*models.MealRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to marshal records", err)
	}
	return data, nil
}

// renderCSV emits the fixed header followed by one line per record. Every
// field is quote-wrapped with internal quotes doubled; null fields render as
// an empty quoted string.
func renderCSV(records []*models.MealRecord) []byte {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(csvHeader, ","))

	for _, rec := range records {
		fields := []string{
			strconv.FormatInt(rec.ID, 10),
			strconv.FormatInt(rec.UserID, 10),
			strconv.FormatInt(rec.FoodID, 10),
			rec.FoodName,
			orEmpty(rec.FoodImage),
			floatField(rec.FoodQuantity),
			string(rec.MealType),
			rec.Date,
			rec.Time,
			floatField(rec.EnergyKcal),
			floatField(rec.ProteinG),
			floatField(rec.FatG),
			floatField(rec.CarbohydrateG),
			formatFloat(rec.PortionMultiplier),
		}
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(quoted, ","))
	}
	return []byte(strings.Join(lines, "\n"))
}

// renderSQL emits a BEGIN/COMMIT-wrapped script: the table's creation
// statement followed by one INSERT per record with literal values and
// explicit ids, replayable against an empty store.
func renderSQL(records []*models.MealRecord) []byte {
	var b strings.Builder
	b.WriteString("BEGIN TRANSACTION;\n")
	b.WriteString(store.MealTableSQL())
	b.WriteString("\n")

	cols := strings.Join(store.MealColumnNames(), ",")
	for _, rec := range records {
		values := []string{
			sqlInt(rec.ID),
			sqlInt(rec.UserID),
			sqlInt(rec.FoodID),
			sqlString(rec.FoodImage),
			sqlFloat(rec.FoodQuantity),
			sqlLiteral(string(rec.MealType)),
			sqlLiteral(rec.Date),
			sqlLiteral(rec.Time),
			sqlFloat(rec.EnergyKcal),
			sqlFloat(rec.ProteinG),
			sqlFloat(rec.FatG),
			sqlFloat(rec.CarbohydrateG),
			sqlFloatValue(rec.PortionMultiplier),
			sqlLiteral(rec.FoodName),
		}
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s);\n",
			store.MealTableName, cols, strings.Join(values, ","))
	}

	b.WriteString("COMMIT;")
	return []byte(b.String())
}

func orEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// sqlLiteral renders a string literal with internal single quotes doubled.
func sqlLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func sqlString(v *string) string {
	if v == nil {
		return "NULL"
	}
	return sqlLiteral(*v)
}

func sqlInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// sqlFloatValue renders a numeric literal, coercing non-finite values to
// the null literal.
func sqlFloatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NULL"
	}
	return formatFloat(v)
}

func sqlFloat(v *float64) string {
	if v == nil {
		return "NULL"
	}
	return sqlFloatValue(*v)
}
