// Package models provides data model definitions for the meal record core.
package models

// MealType classifies a record into one of the four daily meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealOther     MealType = "other"
)

// KnownMealTypes lists the four meal buckets in display order.
var KnownMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealOther}

// IsValid reports whether the meal type is one of the known buckets.
func (m MealType) IsValid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealOther:
		return true
	}
	return false
}

// UnresolvedFoodID is the sentinel foodId stored when no catalog match exists.
const UnresolvedFoodID = 0

// MealRecord represents one logged eating event.
// Macro fields hold the values resolved for one serving; they are not scaled
// by quantity or portionMultiplier.
type MealRecord struct {
	ID                int64    `db:"id" json:"id"`
	UserID            int64    `db:"userId" json:"userId"`
	FoodID            int64    `db:"foodId" json:"foodId"`
	FoodName          string   `db:"foodName" json:"foodName"`
	FoodImage         *string  `db:"foodImage" json:"foodImage"`
	FoodQuantity      *float64 `db:"foodQuantity" json:"foodQuantity"`
	MealType          MealType `db:"mealType" json:"mealType"`
	Date              string   `db:"date" json:"date"` // YYYY-MM-DD, device-local
	Time              string   `db:"time" json:"time"` // HH:MM:SS, device-local
	EnergyKcal        *float64 `db:"energyKcal" json:"energyKcal"`
	ProteinG          *float64 `db:"proteinG" json:"proteinG"`
	FatG              *float64 `db:"fatG" json:"fatG"`
	CarbohydrateG     *float64 `db:"carbohydrateG" json:"carbohydrateG"`
	PortionMultiplier float64  `db:"portionMultiplier" json:"portionMultiplier"`
}

// TableName returns the table name for MealRecord.
func (MealRecord) TableName() string {
	return "MealRecord"
}

// HasMacros reports whether any macro field is already populated.
func (r *MealRecord) HasMacros() bool {
	return r.EnergyKcal != nil || r.ProteinG != nil || r.FatG != nil || r.CarbohydrateG != nil
}

// DailySummary aggregates one user's records for one calendar date.
// It is derived on every read and never persisted.
type DailySummary struct {
	Date          string               `json:"date"`
	EnergyKcal    float64              `json:"energyKcal"`
	ProteinG      float64              `json:"proteinG"`
	FatG          float64              `json:"fatG"`
	CarbohydrateG float64              `json:"carbohydrateG"`
	KcalByType    map[MealType]float64 `json:"kcalByType"`
}
