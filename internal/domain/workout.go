package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus tracks a logged workout's lifecycle.
type WorkoutStatus string

const (
	WorkoutInProgress WorkoutStatus = "in_progress"
	WorkoutCompleted  WorkoutStatus = "completed"
)

// WorkoutLog is a single training session performed by a user.
type WorkoutLog struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	ProgramID       *primitive.ObjectID `bson:"programId,omitempty" json:"programId,omitempty"`
	Name            string              `bson:"name" json:"name"` // e.g., "Day 1: Upper Body"
	Status          WorkoutStatus       `bson:"status" json:"status"`
	StartedAt       time.Time           `bson:"startedAt" json:"startedAt"`
	CompletedAt     *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	DurationMinutes int                 `bson:"durationMinutes" json:"durationMinutes"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (w *WorkoutLog) IsCompleted() bool {
	return w.Status == WorkoutCompleted
}
