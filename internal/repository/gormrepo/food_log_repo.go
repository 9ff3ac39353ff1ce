package gormrepo

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type foodLogRepository struct {
	db *gorm.DB
}

func NewFoodLogRepository(db *gorm.DB) repository.FoodLogRepository {
	return &foodLogRepository{db: db}
}

func (r *foodLogRepository) Create(ctx context.Context, entry *domain.FoodLogEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.Date == "" {
		return primitive.NilObjectID, errors.New("food log entry requires userId and date")
	}
	entry.ID = primitive.NewObjectID()

	row := foodLogRow{
		ID:           entry.ID.Hex(),
		UserID:       entry.UserID.Hex(),
		Date:         entry.Date,
		MealType:     string(entry.MealType),
		Name:         entry.Name,
		Calories:     entry.Calories,
		ProteinGrams: entry.ProteinGrams,
		CarbGrams:    entry.CarbGrams,
		FatGrams:     entry.FatGrams,
		LoggedAt:     entry.LoggedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (r *foodLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodLogEntry, error) {
	var row foodLogRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	entry := row.toDomain()
	return &entry, nil
}

func (r *foodLogRepository) GetByUserAndDateRange(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.FoodLogEntry, error) {
	var rows []foodLogRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID.Hex(), from, to).
		Order("date, logged_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]domain.FoodLogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toDomain())
	}
	return entries, nil
}

func (r *foodLogRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.Hex(), userID.Hex()).
		Delete(&foodLogRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
