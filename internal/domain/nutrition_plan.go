package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetSource names the tier that supplied a set of macro targets.
type TargetSource string

const (
	SourceProgram    TargetSource = "program"
	SourceStandalone TargetSource = "standalone"
	SourceDefault    TargetSource = "default"
)

// MacroTargets is a daily calorie and macro goal.
type MacroTargets struct {
	DailyCalories int `bson:"dailyCalories" json:"dailyCalories"`
	ProteinGrams  int `bson:"proteinGrams" json:"proteinGrams"`
	CarbGrams     int `bson:"carbGrams" json:"carbGrams"`
	FatGrams      int `bson:"fatGrams" json:"fatGrams"`
}

// DefaultMacroTargets apply when neither a program nor a standalone plan is in force.
var DefaultMacroTargets = MacroTargets{
	DailyCalories: 2000,
	ProteinGrams:  150,
	CarbGrams:     250,
	FatGrams:      65,
}

// NutritionPlan is a time-windowed macro target. EffectiveDate is inclusive,
// EndDate is exclusive. ProgramID nil means a standalone plan.
type NutritionPlan struct {
	MacroTargets `bson:",inline"`

	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID  `bson:"userId" json:"userId"`
	ProgramID     *primitive.ObjectID `bson:"programId" json:"programId,omitempty"`
	Phase         *int                `bson:"phase,omitempty" json:"phase,omitempty"`
	EffectiveDate time.Time           `bson:"effectiveDate" json:"effectiveDate"`
	EndDate       *time.Time          `bson:"endDate" json:"endDate,omitempty"`
	CreatedBy     primitive.ObjectID  `bson:"createdBy" json:"createdBy"` // user or coach who wrote it
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}

// InEffect reports whether the plan's window covers the instant at.
func (p *NutritionPlan) InEffect(at time.Time) bool {
	if p.EffectiveDate.After(at) {
		return false
	}
	return p.EndDate == nil || p.EndDate.After(at)
}

// PlanScope selects which plans a resolver tier looks at.
// A nil ProgramID selects standalone plans of UserID.
type PlanScope struct {
	UserID    primitive.ObjectID
	ProgramID *primitive.ObjectID
	Phase     int
}

// ResolvedTargets is the outcome of point-in-time target resolution.
type ResolvedTargets struct {
	Plan      MacroTargets        `json:"plan"`
	Source    TargetSource        `json:"source"`
	IsDefault bool                `json:"isDefault"`
	PlanID    *primitive.ObjectID `json:"planId,omitempty"`
}
