package nutrition

import (
	"database/sql"
	"strings"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
	"github.com/chanikarn/mealrecord/internal/logging"
	"github.com/chanikarn/mealrecord/internal/models"
)

// nameForm selects which derived representation of the food name a ladder
// step binds into its query.
type nameForm int

const (
	formRaw        nameForm = iota // trimmed, case preserved
	formNormalized                 // lower-cased, whitespace stripped, synonyms folded
	formLowered                    // lower-cased only
)

// candidate is one step of the match ladder: a query plus which name
// representation it takes. Steps run in order and the first row wins.
type candidate struct {
	desc   string
	query  string
	form   nameForm
	legacy bool // legacy single-table schema: no id, no serving size
}

// candidates is the ordered ladder. Steps 1-4 probe the primary bilingual
// foods table, raw name first, then the whitespace-stripped case-folded
// form. Steps 5-6 fall back to the legacy Nutrition schema, case-sensitive
// then case-insensitive.
var candidates = []candidate{
	{
		desc: "foods.NameTH raw",
		query: `SELECT id, NameTH, EnergyKcal, ProteinG, FatG, CarbohydrateG, ServingSizeGram
			FROM foods WHERE NameTH LIKE ? LIMIT 1`,
	},
	{
		desc: "foods.NameEng raw",
		query: `SELECT id, NameEng, EnergyKcal, ProteinG, FatG, CarbohydrateG, ServingSizeGram
			FROM foods WHERE NameEng LIKE ? LIMIT 1`,
	},
	{
		desc: "foods.NameTH normalized",
		query: `SELECT id, NameTH, EnergyKcal, ProteinG, FatG, CarbohydrateG, ServingSizeGram
			FROM foods WHERE REPLACE(LOWER(NameTH), ' ', '') LIKE ? LIMIT 1`,
		form: formNormalized,
	},
	{
		desc: "foods.NameEng normalized",
		query: `SELECT id, NameEng, EnergyKcal, ProteinG, FatG, CarbohydrateG, ServingSizeGram
			FROM foods WHERE REPLACE(LOWER(NameEng), ' ', '') LIKE ? LIMIT 1`,
		form: formNormalized,
	},
	{
		desc:   "Nutrition legacy",
		query:  `SELECT name, calories, protein, fat, carbs FROM Nutrition WHERE name LIKE ? LIMIT 1`,
		legacy: true,
	},
	{
		desc:   "Nutrition legacy case-insensitive",
		query:  `SELECT name, calories, protein, fat, carbs FROM Nutrition WHERE LOWER(name) LIKE ? LIMIT 1`,
		form:   formLowered,
		legacy: true,
	},
}

// Resolver answers fuzzy nutrition lookups against the reference store.
type Resolver struct {
	db       *sql.DB
	synonyms Synonyms
}

// NewResolver creates a Resolver over the nutrition reference store.
func NewResolver(db *sql.DB, synonyms Synonyms) *Resolver {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Resolver{db: db, synonyms: synonyms}
}

// Resolve returns the first matching reference row's facts verbatim, or a
// NOT_FOUND error when every candidate is exhausted.
//
// Each step is independently fault-tolerant: a failing query (for example a
// table absent in a given deployment) is swallowed and the ladder continues.
func (r *Resolver) Resolve(rawName string) (*models.NutritionEntry, error) {
	raw := strings.TrimSpace(rawName)
	norm := r.synonyms.Normalize(rawName)

	for _, c := range candidates {
		var arg string
		switch c.form {
		case formNormalized:
			arg = "%" + norm + "%"
		case formLowered:
			arg = "%" + strings.ToLower(raw) + "%"
		default:
			arg = "%" + raw + "%"
		}

		entry, err := r.tryCandidate(c, arg)
		if err != nil {
			if err != sql.ErrNoRows {
				logging.Debug("nutrition candidate failed",
					map[string]interface{}{"candidate": c.desc, "error": err.Error()})
			}
			continue
		}
		return entry, nil
	}

	return nil, apperrors.New(apperrors.ErrNotFound, "no nutrition entry matches "+raw)
}

// tryCandidate executes one ladder step.
func (r *Resolver) tryCandidate(c candidate, arg string) (*models.NutritionEntry, error) {
	var (
		entry                    models.NutritionEntry
		name                     sql.NullString
		kcal, protein, fat, carb sql.NullFloat64
		serving                  sql.NullFloat64
	)

	row := r.db.QueryRow(c.query, arg)
	var err error
	if c.legacy {
		err = row.Scan(&name, &kcal, &protein, &fat, &carb)
	} else {
		err = row.Scan(&entry.FoodID, &name, &kcal, &protein, &fat, &carb, &serving)
	}
	if err != nil {
		return nil, err
	}

	entry.Name = name.String
	entry.EnergyKcal = nullableFloat(kcal)
	entry.ProteinG = nullableFloat(protein)
	entry.FatG = nullableFloat(fat)
	entry.CarbohydrateG = nullableFloat(carb)
	if !c.legacy {
		// the legacy schema carries no serving size
		entry.ServingGram = nullableFloat(serving)
	}
	return &entry, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
