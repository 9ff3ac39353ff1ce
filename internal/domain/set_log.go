package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetLog records one performed set of an exercise within a WorkoutLog.
// UserID is denormalized so volume can be summed per user.
type SetLog struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkoutLogID primitive.ObjectID  `bson:"workoutLogId" json:"workoutLogId"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	ExerciseID   *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"`
	ExerciseName string              `bson:"exerciseName" json:"exerciseName"`
	SetNumber    int                 `bson:"setNumber" json:"setNumber"`
	Weight       *float64            `bson:"weight" json:"weight,omitempty"` // nil for bodyweight/timed sets
	Reps         int                 `bson:"reps" json:"reps"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}

// Volume returns weight × reps, or 0 for sets without a weight.
func (s *SetLog) Volume() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight * float64(s.Reps)
}
