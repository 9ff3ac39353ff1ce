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

type workoutLogRepository struct {
	db *gorm.DB
}

func NewWorkoutLogRepository(db *gorm.DB) repository.WorkoutLogRepository {
	return &workoutLogRepository{db: db}
}

func (r *workoutLogRepository) Create(ctx context.Context, workout *domain.WorkoutLog) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout log requires userId and name")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Status == "" {
		workout.Status = domain.WorkoutInProgress
	}

	row := workoutLogRow{
		ID:              workout.ID.Hex(),
		UserID:          workout.UserID.Hex(),
		ProgramID:       optHex(workout.ProgramID),
		Name:            workout.Name,
		Status:          string(workout.Status),
		StartedAt:       workout.StartedAt.UTC(),
		CompletedAt:     utcPtr(workout.CompletedAt),
		DurationMinutes: workout.DurationMinutes,
		Notes:           workout.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

func (r *workoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var row workoutLogRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	workout := row.toDomain()
	return &workout, nil
}

func (r *workoutLogRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID.Hex()).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []workoutLogRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	workouts := make([]domain.WorkoutLog, 0, len(rows))
	for i := range rows {
		workouts = append(workouts, rows[i].toDomain())
	}
	return workouts, nil
}

func (r *workoutLogRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, completedAt time.Time, durationMinutes int) error {
	result := r.db.WithContext(ctx).Model(&workoutLogRow{}).
		Where("id = ? AND status = ?", id.Hex(), string(domain.WorkoutInProgress)).
		Updates(map[string]interface{}{
			"status":           string(domain.WorkoutCompleted),
			"completed_at":     completedAt.UTC(),
			"duration_minutes": durationMinutes,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *workoutLogRepository) AddSets(ctx context.Context, sets []domain.SetLog) error {
	if len(sets) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]setLogRow, len(sets))
	for i := range sets {
		if sets[i].WorkoutLogID == primitive.NilObjectID || sets[i].UserID == primitive.NilObjectID {
			return errors.New("set log requires workoutLogId and userId")
		}
		sets[i].ID = primitive.NewObjectID()
		sets[i].CreatedAt = now
		rows[i] = setLogRow{
			ID:           sets[i].ID.Hex(),
			WorkoutLogID: sets[i].WorkoutLogID.Hex(),
			UserID:       sets[i].UserID.Hex(),
			ExerciseID:   optHex(sets[i].ExerciseID),
			ExerciseName: sets[i].ExerciseName,
			SetNumber:    sets[i].SetNumber,
			Weight:       sets[i].Weight,
			Reps:         sets[i].Reps,
			CreatedAt:    now,
		}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *workoutLogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workout_log_id = ?", id.Hex()).Delete(&setLogRow{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id.Hex()).Delete(&workoutLogRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *workoutLogRepository) GetSets(ctx context.Context, workoutID primitive.ObjectID) ([]domain.SetLog, error) {
	var rows []setLogRow
	err := r.db.WithContext(ctx).
		Where("workout_log_id = ?", workoutID.Hex()).
		Order("set_number, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	sets := make([]domain.SetLog, 0, len(rows))
	for i := range rows {
		sets = append(sets, rows[i].toDomain())
	}
	return sets, nil
}

// Totals recomputes lifetime aggregates from the source rows on every call.
func (r *workoutLogRepository) Totals(ctx context.Context, userID primitive.ObjectID) (domain.TrainingTotals, error) {
	var totals domain.TrainingTotals
	db := r.db.WithContext(ctx)

	err := db.Model(&workoutLogRow{}).
		Where("user_id = ? AND status = ?", userID.Hex(), string(domain.WorkoutCompleted)).
		Count(&totals.TotalWorkouts).Error
	if err != nil {
		return totals, err
	}

	err = db.Table("set_logs").
		Select("COALESCE(SUM(set_logs.weight * set_logs.reps), 0)").
		Joins("JOIN workout_logs ON workout_logs.id = set_logs.workout_log_id").
		Where("set_logs.user_id = ? AND set_logs.weight IS NOT NULL AND workout_logs.status = ?",
			userID.Hex(), string(domain.WorkoutCompleted)).
		Row().Scan(&totals.TotalVolume)
	if err != nil {
		return totals, err
	}
	return totals, nil
}
