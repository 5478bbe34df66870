package models

// NutritionEntry is one row from a nutrition reference dataset.
// The reference data is read-only from the ledger's perspective.
type NutritionEntry struct {
	FoodID        int64    `json:"foodId"`
	Name          string   `json:"name"`
	EnergyKcal    *float64 `json:"energyKcal"`
	ProteinG      *float64 `json:"proteinG"`
	FatG          *float64 `json:"fatG"`
	CarbohydrateG *float64 `json:"carbohydrateG"`
	ServingGram   *float64 `json:"servingGram"` // nil when the source schema has no serving size
}

// UserIdentity is the cached {id, email} pair held in device-local state.
// It is a resolution aid, not a table of its own.
type UserIdentity struct {
	UserID int64  `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}
