package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/storage"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStorage struct{}

func (fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?put", nil
}

func (fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?get", nil
}

func (fakeStorage) DeleteObject(context.Context, string) error {
	return nil
}

func TestRecordStat(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "yul@example.com", domain.RoleClient)
	svc := NewBodyStatService(repos.BodyStats, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.RecordStat(ctx, user.ID, RecordStatInput{Notes: "nothing measured"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordStat(ctx, user.ID, RecordStatInput{BodyFatPct: ptr(140.0)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	stat, err := svc.RecordStat(ctx, user.ID, RecordStatInput{WeightKg: ptr(82.5), WaistCm: ptr(84.0)})
	require.NoError(t, err)
	assert.False(t, stat.ID.IsZero())

	stats, err := svc.ListStats(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.NotNil(t, stats[0].WeightKg)
	assert.InDelta(t, 82.5, *stats[0].WeightKg, 0.001)
}

func TestPhotoUploadFlow(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "zed@example.com", domain.RoleClient)
	svc := NewBodyStatService(repos.BodyStats, fakeStorage{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.RequestPhotoUploadURL(ctx, user.ID, "video/mp4")
	assert.ErrorIs(t, err, ErrInvalidPhotoType)

	upload, err := svc.RequestPhotoUploadURL(ctx, user.ID, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, storage.PhotoKeyPrefix(user.ID)))
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".jpg"))
	assert.Contains(t, upload.UploadURL, upload.ObjectKey)

	stat, err := svc.RecordStat(ctx, user.ID, RecordStatInput{WeightKg: ptr(80.0)})
	require.NoError(t, err)

	in := ConfirmPhotoInput{
		ObjectKey:   upload.ObjectKey,
		FileName:    "front.jpg",
		Size:        123456,
		ContentType: "image/jpeg",
		BodyStatID:  &stat.ID,
	}
	photo, err := svc.ConfirmPhotoUpload(ctx, user.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "front.jpg", photo.FileName)

	_, err = svc.ConfirmPhotoUpload(ctx, user.ID, in)
	assert.ErrorIs(t, err, ErrPhotoAlreadyConfirmed)

	photos, err := svc.ListPhotos(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Contains(t, photos[0].URL, "?get")
}

func TestConfirmPhotoUpload_Rejects(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "abe@example.com", domain.RoleClient)
	other := primitive.NewObjectID()
	svc := NewBodyStatService(repos.BodyStats, fakeStorage{}, zap.NewNop())
	ctx := context.Background()

	foreignKey := storage.NewPhotoKey(other, "image/png")
	_, err := svc.ConfirmPhotoUpload(ctx, user.ID, ConfirmPhotoInput{ObjectKey: foreignKey, FileName: "x.png", ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrPhotoKeyNotOwned)

	ownKey := storage.NewPhotoKey(user.ID, "image/png")
	missing := primitive.NewObjectID()
	_, err = svc.ConfirmPhotoUpload(ctx, user.ID, ConfirmPhotoInput{ObjectKey: ownKey, FileName: "x.png", ContentType: "image/png", BodyStatID: &missing})
	assert.ErrorIs(t, err, ErrBodyStatNotFound)

	disabled := NewBodyStatService(repos.BodyStats, nil, zap.NewNop())
	_, err = disabled.RequestPhotoUploadURL(ctx, user.ID, "image/png")
	assert.ErrorIs(t, err, ErrPhotoStorageUnavailable)
}
