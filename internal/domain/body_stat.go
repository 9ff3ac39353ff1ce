package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BodyStat is a body measurement snapshot.
type BodyStat struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	RecordedAt time.Time          `bson:"recordedAt" json:"recordedAt"`
	WeightKg   *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	BodyFatPct *float64           `bson:"bodyFatPct,omitempty" json:"bodyFatPct,omitempty"`
	WaistCm    *float64           `bson:"waistCm,omitempty" json:"waistCm,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
