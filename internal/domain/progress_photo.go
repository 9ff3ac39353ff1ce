package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressPhoto stores metadata about a progress photo uploaded by a user.
// The actual file resides in S3.
type ProgressPhoto struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	BodyStatID  *primitive.ObjectID `bson:"bodyStatId,omitempty" json:"bodyStatId,omitempty"` // optional link to a measurement
	S3ObjectKey string              `bson:"s3ObjectKey" json:"-"`                             // internal use
	FileName    string              `bson:"fileName" json:"fileName"`
	ContentType string              `bson:"contentType" json:"contentType"` // e.g. "image/jpeg"
	Size        int64               `bson:"size" json:"size"`
	UploadedAt  time.Time           `bson:"uploadedAt" json:"uploadedAt"`
}
