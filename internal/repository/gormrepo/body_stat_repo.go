package gormrepo

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type bodyStatRepository struct {
	db *gorm.DB
}

func NewBodyStatRepository(db *gorm.DB) repository.BodyStatRepository {
	return &bodyStatRepository{db: db}
}

func (r *bodyStatRepository) Create(ctx context.Context, stat *domain.BodyStat) (primitive.ObjectID, error) {
	if stat.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("body stat requires userId")
	}
	stat.ID = primitive.NewObjectID()
	stat.CreatedAt = time.Now().UTC()
	if stat.RecordedAt.IsZero() {
		stat.RecordedAt = stat.CreatedAt
	}

	row := bodyStatRow{
		ID:         stat.ID.Hex(),
		UserID:     stat.UserID.Hex(),
		RecordedAt: stat.RecordedAt.UTC(),
		WeightKg:   stat.WeightKg,
		BodyFatPct: stat.BodyFatPct,
		WaistCm:    stat.WaistCm,
		Notes:      stat.Notes,
		CreatedAt:  stat.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return primitive.NilObjectID, err
	}
	return stat.ID, nil
}

func (r *bodyStatRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyStat, error) {
	var row bodyStatRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	stat := row.toDomain()
	return &stat, nil
}

func (r *bodyStatRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.BodyStat, error) {
	var rows []bodyStatRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.Hex()).
		Order("recorded_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := make([]domain.BodyStat, 0, len(rows))
	for i := range rows {
		stats = append(stats, rows[i].toDomain())
	}
	return stats, nil
}

func (r *bodyStatRepository) CreatePhoto(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error) {
	if photo.UserID == primitive.NilObjectID || photo.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("progress photo requires userId and object key")
	}
	photo.ID = primitive.NewObjectID()
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}

	row := progressPhotoRow{
		ID:          photo.ID.Hex(),
		UserID:      photo.UserID.Hex(),
		BodyStatID:  optHex(photo.BodyStatID),
		S3ObjectKey: photo.S3ObjectKey,
		FileName:    photo.FileName,
		ContentType: photo.ContentType,
		Size:        photo.Size,
		UploadedAt:  photo.UploadedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return photo.ID, nil
}

func (r *bodyStatRepository) GetPhotosByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	var rows []progressPhotoRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.Hex()).
		Order("uploaded_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	photos := make([]domain.ProgressPhoto, 0, len(rows))
	for i := range rows {
		photos = append(photos, rows[i].toDomain())
	}
	return photos, nil
}
