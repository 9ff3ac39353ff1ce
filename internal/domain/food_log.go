package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType groups food log entries within a day.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// DateLayout is the calendar-day format used for food log days.
const DateLayout = "2006-01-02"

// FoodLogEntry is one logged food item. Date is the calendar day (UTC) it counts toward.
type FoodLogEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Date         string             `bson:"date" json:"date"` // YYYY-MM-DD
	MealType     MealType           `bson:"mealType" json:"mealType"`
	Name         string             `bson:"name" json:"name"`
	Calories     int                `bson:"calories" json:"calories"`
	ProteinGrams float64            `bson:"proteinGrams" json:"proteinGrams"`
	CarbGrams    float64            `bson:"carbGrams" json:"carbGrams"`
	FatGrams     float64            `bson:"fatGrams" json:"fatGrams"`
	LoggedAt     time.Time          `bson:"loggedAt" json:"loggedAt"`
}

// MacroTotals sums a set of food log entries.
type MacroTotals struct {
	Calories     int     `json:"calories"`
	ProteinGrams float64 `json:"proteinGrams"`
	CarbGrams    float64 `json:"carbGrams"`
	FatGrams     float64 `json:"fatGrams"`
}

// Add accumulates e into t.
func (t *MacroTotals) Add(e FoodLogEntry) {
	t.Calories += e.Calories
	t.ProteinGrams += e.ProteinGrams
	t.CarbGrams += e.CarbGrams
	t.FatGrams += e.FatGrams
}
