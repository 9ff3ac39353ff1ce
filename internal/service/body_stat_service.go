package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"baisics/coach-api/internal/storage"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrBodyStatNotFound        = errors.New("body stat not found")
	ErrInvalidPhotoType        = errors.New("content type must be an image")
	ErrPhotoKeyNotOwned        = errors.New("object key does not belong to this user")
	ErrPhotoAlreadyConfirmed   = errors.New("photo was already confirmed")
	ErrPhotoStorageUnavailable = errors.New("photo storage is not configured")
	ErrUploadURLError          = errors.New("failed to generate upload URL")
)

type RecordStatInput struct {
	RecordedAt *time.Time
	WeightKg   *float64 `validate:"omitempty,gt=0,max=700"`
	BodyFatPct *float64 `validate:"omitempty,min=0,max=100"`
	WaistCm    *float64 `validate:"omitempty,gt=0,max=400"`
	Notes      string   `validate:"max=2000"`
}

type ConfirmPhotoInput struct {
	ObjectKey   string `validate:"required,max=512"`
	FileName    string `validate:"required,max=255"`
	Size        int64  `validate:"min=0"`
	ContentType string `validate:"required"`
	BodyStatID  *primitive.ObjectID
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type PhotoWithURL struct {
	domain.ProgressPhoto
	URL string `json:"url,omitempty"`
}

type BodyStatService interface {
	RecordStat(ctx context.Context, userID primitive.ObjectID, in RecordStatInput) (*domain.BodyStat, error)
	ListStats(ctx context.Context, userID primitive.ObjectID) ([]domain.BodyStat, error)
	RequestPhotoUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	// ConfirmPhotoUpload stores metadata after the client has PUT the file.
	ConfirmPhotoUpload(ctx context.Context, userID primitive.ObjectID, in ConfirmPhotoInput) (*domain.ProgressPhoto, error)
	ListPhotos(ctx context.Context, userID primitive.ObjectID) ([]PhotoWithURL, error)
}

type bodyStatService struct {
	stats       repository.BodyStatRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
	now         func() time.Time
}

// NewBodyStatService builds the service. fileStorage may be nil, in which case
// photo operations return ErrPhotoStorageUnavailable.
func NewBodyStatService(stats repository.BodyStatRepository, fileStorage storage.FileStorage, logger *zap.Logger) BodyStatService {
	return &bodyStatService{
		stats:       stats,
		fileStorage: fileStorage,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *bodyStatService) RecordStat(ctx context.Context, userID primitive.ObjectID, in RecordStatInput) (*domain.BodyStat, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.WeightKg == nil && in.BodyFatPct == nil && in.WaistCm == nil {
		return nil, invalid("at least one measurement is required")
	}

	recordedAt := s.now().UTC()
	if in.RecordedAt != nil {
		recordedAt = in.RecordedAt.UTC()
	}
	stat := &domain.BodyStat{
		UserID:     userID,
		RecordedAt: recordedAt,
		WeightKg:   in.WeightKg,
		BodyFatPct: in.BodyFatPct,
		WaistCm:    in.WaistCm,
		Notes:      strings.TrimSpace(in.Notes),
	}
	id, err := s.stats.Create(ctx, stat)
	if err != nil {
		return nil, err
	}
	stat.ID = id
	return stat, nil
}

func (s *bodyStatService) ListStats(ctx context.Context, userID primitive.ObjectID) ([]domain.BodyStat, error) {
	stats, err := s.stats.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []domain.BodyStat{}
	}
	return stats, nil
}

func (s *bodyStatService) RequestPhotoUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrPhotoStorageUnavailable
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !isImage(contentType) {
		return nil, ErrInvalidPhotoType
	}

	objectKey := storage.NewPhotoKey(userID, contentType)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		s.logger.Error("photo_upload_url_failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

func (s *bodyStatService) ConfirmPhotoUpload(ctx context.Context, userID primitive.ObjectID, in ConfirmPhotoInput) (*domain.ProgressPhoto, error) {
	if s.fileStorage == nil {
		return nil, ErrPhotoStorageUnavailable
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if !isImage(contentType) {
		return nil, ErrInvalidPhotoType
	}
	if !storage.OwnsKey(userID, in.ObjectKey) {
		return nil, ErrPhotoKeyNotOwned
	}

	if in.BodyStatID != nil {
		stat, err := s.stats.GetByID(ctx, *in.BodyStatID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrBodyStatNotFound
			}
			return nil, err
		}
		if stat.UserID != userID {
			return nil, ErrBodyStatNotFound
		}
	}

	photo := &domain.ProgressPhoto{
		UserID:      userID,
		BodyStatID:  in.BodyStatID,
		S3ObjectKey: in.ObjectKey,
		FileName:    strings.TrimSpace(in.FileName),
		ContentType: contentType,
		Size:        in.Size,
		UploadedAt:  s.now().UTC(),
	}
	id, err := s.stats.CreatePhoto(ctx, photo)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPhotoAlreadyConfirmed
		}
		return nil, err
	}
	photo.ID = id
	return photo, nil
}

func (s *bodyStatService) ListPhotos(ctx context.Context, userID primitive.ObjectID) ([]PhotoWithURL, error) {
	photos, err := s.stats.GetPhotosByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]PhotoWithURL, 0, len(photos))
	for _, p := range photos {
		item := PhotoWithURL{ProgressPhoto: p}
		if s.fileStorage != nil {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, p.S3ObjectKey, storage.DefaultPresignedURLExpiry)
			if err != nil {
				s.logger.Warn("photo_download_url_failed", zap.String("photo_id", p.ID.Hex()), zap.Error(err))
			} else {
				item.URL = url
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") && len(contentType) > len("image/")
}
