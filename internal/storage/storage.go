package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// PhotoKeyPrefix is the key prefix owned by a user.
func PhotoKeyPrefix(userID primitive.ObjectID) string {
	return fmt.Sprintf("progress-photos/%s/", userID.Hex())
}

// NewPhotoKey returns a fresh object key under the user's prefix.
func NewPhotoKey(userID primitive.ObjectID, contentType string) string {
	return PhotoKeyPrefix(userID) + uuid.NewString() + extensions[contentType]
}

// OwnsKey reports whether objectKey lives under the user's prefix.
func OwnsKey(userID primitive.ObjectID, objectKey string) bool {
	prefix := PhotoKeyPrefix(userID)
	return strings.HasPrefix(objectKey, prefix) && len(objectKey) > len(prefix) && !strings.Contains(objectKey, "..")
}
