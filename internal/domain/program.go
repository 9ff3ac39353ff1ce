// internal/domain/program.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a user's training program. Only one program per user is
// expected to be active; activation deactivates the others.
type Program struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`                       // Who the program is for
	CoachID      *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"` // Set when a coach built it
	Name         string              `bson:"name" json:"name"`                           // e.g., "12 Week Recomp"
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Active       bool                `bson:"active" json:"active"`
	CurrentPhase int                 `bson:"currentPhase" json:"currentPhase"` // 1-based
	PhaseCount   int                 `bson:"phaseCount" json:"phaseCount"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ValidPhase reports whether phase is inside the program's phase range.
func (p *Program) ValidPhase(phase int) bool {
	return phase >= 1 && phase <= p.PhaseCount
}
