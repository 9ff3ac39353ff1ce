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

type exerciseRepository struct {
	db *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) repository.ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and coach ID are required")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	row := exerciseRow{
		ID:          exercise.ID.Hex(),
		CoachID:     exercise.CoachID.Hex(),
		Name:        exercise.Name,
		Description: exercise.Description,
		MuscleGroup: exercise.MuscleGroup,
		Equipment:   exercise.Equipment,
		Difficulty:  exercise.Difficulty,
		VideoURL:    exercise.VideoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return primitive.NilObjectID, err
	}
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var row exerciseRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	exercise := row.toDomain()
	return &exercise, nil
}

func (r *exerciseRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	return r.find(r.db.WithContext(ctx).Where("coach_id = ?", coachID.Hex()).Order("created_at DESC"))
}

func (r *exerciseRepository) GetAll(ctx context.Context) ([]domain.Exercise, error) {
	return r.find(r.db.WithContext(ctx).Order("name"))
}

func (r *exerciseRepository) find(q *gorm.DB) ([]domain.Exercise, error) {
	var rows []exerciseRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	exercises := make([]domain.Exercise, 0, len(rows))
	for i := range rows {
		exercises = append(exercises, rows[i].toDomain())
	}
	return exercises, nil
}
