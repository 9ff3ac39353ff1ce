package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MilestoneType identifies a cumulative workout-count milestone.
type MilestoneType string

const (
	MilestoneWorkout1    MilestoneType = "WORKOUT_1"
	MilestoneWorkout10   MilestoneType = "WORKOUT_10"
	MilestoneWorkout25   MilestoneType = "WORKOUT_25"
	MilestoneWorkout50   MilestoneType = "WORKOUT_50"
	MilestoneWorkout100  MilestoneType = "WORKOUT_100"
	MilestoneWorkout250  MilestoneType = "WORKOUT_250"
	MilestoneWorkout365  MilestoneType = "WORKOUT_365"
	MilestoneWorkout500  MilestoneType = "WORKOUT_500"
	MilestoneWorkout1000 MilestoneType = "WORKOUT_1000"
)

// Milestone is one row of the static threshold table.
type Milestone struct {
	Type      MilestoneType `json:"type"`
	Threshold int           `json:"threshold"`
	Title     string        `json:"title"`
}

// Milestones is ordered by ascending threshold.
var Milestones = []Milestone{
	{Type: MilestoneWorkout1, Threshold: 1, Title: "First Workout"},
	{Type: MilestoneWorkout10, Threshold: 10, Title: "Getting Started"},
	{Type: MilestoneWorkout25, Threshold: 25, Title: "Building Habits"},
	{Type: MilestoneWorkout50, Threshold: 50, Title: "Dedicated"},
	{Type: MilestoneWorkout100, Threshold: 100, Title: "Century Club"},
	{Type: MilestoneWorkout250, Threshold: 250, Title: "Iron Regular"},
	{Type: MilestoneWorkout365, Threshold: 365, Title: "A Year of Training"},
	{Type: MilestoneWorkout500, Threshold: 500, Title: "Five Hundred Strong"},
	{Type: MilestoneWorkout1000, Threshold: 1000, Title: "Legend"},
}

// LookupMilestone returns the table row for t.
func LookupMilestone(t MilestoneType) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Type == t {
			return m, true
		}
	}
	return Milestone{}, false
}

// MilestoneAchievement is an immutable credit, unique per (UserID, Type).
// The totals are the snapshot taken when the credit was written.
type MilestoneAchievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Type          MilestoneType      `bson:"type" json:"type"`
	EarnedAt      time.Time          `bson:"earnedAt" json:"earnedAt"`
	TotalWorkouts int64              `bson:"totalWorkouts" json:"totalWorkouts"`
	TotalVolume   float64            `bson:"totalVolume" json:"totalVolume"`
}

// TrainingTotals are lifetime aggregates over a user's completed workouts.
type TrainingTotals struct {
	TotalWorkouts int64   `json:"totalWorkouts"`
	TotalVolume   float64 `json:"totalVolume"`
}
