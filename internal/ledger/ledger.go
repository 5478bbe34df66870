// Package ledger owns CRUD and date-scoped aggregation over meal records.
package ledger

import (
	"database/sql"
	"time"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
	"github.com/chanikarn/mealrecord/internal/identity"
	"github.com/chanikarn/mealrecord/internal/logging"
	"github.com/chanikarn/mealrecord/internal/models"
	"github.com/chanikarn/mealrecord/internal/nutrition"
	"github.com/chanikarn/mealrecord/internal/store"
)

// Ledger is the local append-mostly store of meal records.
type Ledger struct {
	db         *sql.DB
	schema     *store.Manager
	identities *identity.Resolver
	facts      *nutrition.Resolver // optional; nil disables enrichment
}

// New creates a Ledger over the meal store. identities supplies the owning
// user id for SaveForCurrentUser; facts, when non-nil, fills missing macros
// from the nutrition reference data.
func New(db *sql.DB, schema *store.Manager, identities *identity.Resolver, facts *nutrition.Resolver) *Ledger {
	return &Ledger{
		db:         db,
		schema:     schema,
		identities: identities,
		facts:      facts,
	}
}

// SaveRequest carries one "save meal" submission. Quantity and macro fields
// arrive as free text from the client and go through lenient numeric
// coercion; a value that does not parse degrades to null, never an error.
type SaveRequest struct {
	UserID            int64
	Date              string // YYYY-MM-DD; empty means today (device-local)
	Time              string // HH:MM:SS; empty means now (device-local)
	MealType          models.MealType
	FoodName          string
	FoodImage         *string
	Quantity          string
	EnergyKcal        string
	ProteinG          string
	FatG              string
	CarbohydrateG     string
	PortionMultiplier string
}

// Save validates, enriches and persists one meal record, returning the
// assigned id. Date and time are captured at local wall-clock time of save
// when the request leaves them empty; they are never re-derived later.
func (l *Ledger) Save(req *SaveRequest) (int64, error) {
	now := time.Now()
	rec := &models.MealRecord{
		UserID:            req.UserID,
		FoodID:            models.UnresolvedFoodID,
		FoodName:          req.FoodName,
		FoodImage:         req.FoodImage,
		FoodQuantity:      ParseNumber(req.Quantity),
		MealType:          req.MealType,
		Date:              req.Date,
		Time:              req.Time,
		EnergyKcal:        ParseNumber(req.EnergyKcal),
		ProteinG:          ParseNumber(req.ProteinG),
		FatG:              ParseNumber(req.FatG),
		CarbohydrateG:     ParseNumber(req.CarbohydrateG),
		PortionMultiplier: 1,
	}
	if req.Date == "" {
		rec.Date = now.Format("2006-01-02")
	}
	if req.Time == "" {
		rec.Time = now.Format("15:04:05")
	}
	if pm := ParseNumber(req.PortionMultiplier); pm != nil && *pm > 0 {
		rec.PortionMultiplier = *pm
	}

	if err := validate(rec); err != nil {
		return 0, err
	}

	if !rec.HasMacros() && l.facts != nil {
		l.enrich(rec)
	}

	if err := l.schema.Ensure(); err != nil {
		return 0, err
	}

	result, err := l.db.Exec(`
	INSERT INTO MealRecord
		(userId, foodId, foodImage, foodQuantity, mealType, date, time,
		 energyKcal, proteinG, fatG, carbohydrateG, portionMultiplier, foodName)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.FoodID, rec.FoodImage, rec.FoodQuantity, string(rec.MealType),
		rec.Date, rec.Time, rec.EnergyKcal, rec.ProteinG, rec.FatG, rec.CarbohydrateG,
		rec.PortionMultiplier, rec.FoodName)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to insert meal record", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to read assigned id", err)
	}
	rec.ID = id
	return id, nil
}

// SaveForCurrentUser resolves the acting user and saves on their behalf.
// The request's UserID field is ignored.
func (l *Ledger) SaveForCurrentUser(req *SaveRequest) (int64, error) {
	userID, err := l.identities.ResolveUserID()
	if err != nil {
		return 0, err
	}
	scoped := *req
	scoped.UserID = userID
	return l.Save(&scoped)
}

// validate rejects a record missing a required field before any store call.
func validate(rec *models.MealRecord) error {
	switch {
	case rec.UserID <= 0:
		return apperrors.New(apperrors.ErrInvalid, "userId is required")
	case rec.Date == "":
		return apperrors.New(apperrors.ErrInvalid, "date is required")
	case !rec.MealType.IsValid():
		return apperrors.New(apperrors.ErrInvalid, "mealType must be breakfast, lunch, dinner or other")
	case rec.FoodName == "":
		return apperrors.New(apperrors.ErrInvalid, "foodName is required")
	}
	return nil
}

// enrich consults the nutrition resolver for a record whose macros are all
// missing. A miss leaves the macros null; it is not an error to the caller.
func (l *Ledger) enrich(rec *models.MealRecord) {
	entry, err := l.facts.Resolve(rec.FoodName)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			logging.Warn("nutrition enrichment failed",
				map[string]interface{}{"food": rec.FoodName, "error": err.Error()})
		}
		return
	}
	rec.EnergyKcal = entry.EnergyKcal
	rec.ProteinG = entry.ProteinG
	rec.FatG = entry.FatG
	rec.CarbohydrateG = entry.CarbohydrateG
	if entry.FoodID > 0 {
		rec.FoodID = entry.FoodID
	}
}

// ListByUserAndDate returns the user's records for one calendar date, newest
// first. The trailing id sort keeps ordering deterministic when records
// share a date and time.
func (l *Ledger) ListByUserAndDate(userID int64, date string) ([]*models.MealRecord, error) {
	rows, err := l.db.Query(`
	SELECT id, userId, foodId, foodImage, foodQuantity, mealType, date, time,
	       energyKcal, proteinG, fatG, carbohydrateG, portionMultiplier, foodName
	FROM MealRecord
	WHERE userId = ? AND date = ?
	ORDER BY date DESC, time DESC, id DESC`, userID, date)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to list meal records", err)
	}
	defer rows.Close()

	var records []*models.MealRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to scan meal record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to iterate meal records", err)
	}
	return records, nil
}

// ListAll returns every record in the ledger, all users and dates, ordered
// by ascending id. The export serializer reads through this path.
func (l *Ledger) ListAll() ([]*models.MealRecord, error) {
	rows, err := l.db.Query(`
	SELECT id, userId, foodId, foodImage, foodQuantity, mealType, date, time,
	       energyKcal, proteinG, fatG, carbohydrateG, portionMultiplier, foodName
	FROM MealRecord
	ORDER BY id ASC`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to read meal records", err)
	}
	defer rows.Close()

	var records []*models.MealRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to scan meal record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to iterate meal records", err)
	}
	return records, nil
}

// DeleteByID deletes a record only if it belongs to userID. Deleting a
// non-existent or foreign id is a no-op, not an error.
func (l *Ledger) DeleteByID(id, userID int64) error {
	if err := l.schema.Ensure(); err != nil {
		return err
	}
	result, err := l.db.Exec("DELETE FROM MealRecord WHERE id = ? AND userId = ?", id, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to delete meal record", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		logging.Debug("delete matched no rows", map[string]interface{}{"id": id, "userId": userID})
	}
	return nil
}

// Summarize computes the daily summary for one user and date: overall
// macro totals plus a kcal subtotal per meal type, absent buckets zero.
// Macros are summed as resolved for one serving; portionMultiplier is
// persisted but not applied here.
func (l *Ledger) Summarize(userID int64, date string) (*models.DailySummary, error) {
	records, err := l.ListByUserAndDate(userID, date)
	if err != nil {
		return nil, err
	}

	summary := &models.DailySummary{
		Date:       date,
		KcalByType: make(map[models.MealType]float64, len(models.KnownMealTypes)),
	}
	for _, mt := range models.KnownMealTypes {
		summary.KcalByType[mt] = 0
	}

	for _, rec := range records {
		summary.EnergyKcal += orZero(rec.EnergyKcal)
		summary.ProteinG += orZero(rec.ProteinG)
		summary.FatG += orZero(rec.FatG)
		summary.CarbohydrateG += orZero(rec.CarbohydrateG)
		summary.KcalByType[rec.MealType] += orZero(rec.EnergyKcal)
	}
	return summary, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads one row in persisted column order.
func scanRecord(row rowScanner) (*models.MealRecord, error) {
	var (
		rec                      models.MealRecord
		foodImage                sql.NullString
		quantity                 sql.NullFloat64
		mealType, foodName       sql.NullString
		kcal, protein, fat, carb sql.NullFloat64
		portion                  sql.NullFloat64
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.FoodID, &foodImage, &quantity,
		&mealType, &rec.Date, &rec.Time, &kcal, &protein, &fat, &carb,
		&portion, &foodName)
	if err != nil {
		return nil, err
	}

	if foodImage.Valid {
		rec.FoodImage = &foodImage.String
	}
	rec.FoodQuantity = nullableFloat(quantity)
	rec.MealType = models.MealType(mealType.String)
	rec.EnergyKcal = nullableFloat(kcal)
	rec.ProteinG = nullableFloat(protein)
	rec.FatG = nullableFloat(fat)
	rec.CarbohydrateG = nullableFloat(carb)
	rec.PortionMultiplier = 1
	if portion.Valid {
		rec.PortionMultiplier = portion.Float64
	}
	rec.FoodName = foodName.String
	return &rec, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
