package gormrepo

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type milestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) repository.MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MilestoneAchievement, error) {
	var rows []milestoneRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.Hex()).
		Order("earned_at, total_workouts").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	achievements := make([]domain.MilestoneAchievement, 0, len(rows))
	for i := range rows {
		achievements = append(achievements, rows[i].toDomain())
	}
	return achievements, nil
}

// Award relies on the unique (user_id, type) index: a conflicting insert is
// skipped and reported as not inserted.
func (r *milestoneRepository) Award(ctx context.Context, achievement *domain.MilestoneAchievement) (bool, error) {
	if achievement.UserID == primitive.NilObjectID || achievement.Type == "" {
		return false, errors.New("milestone achievement requires userId and type")
	}
	achievement.ID = primitive.NewObjectID()

	row := milestoneRow{
		ID:            achievement.ID.Hex(),
		UserID:        achievement.UserID.Hex(),
		Type:          string(achievement.Type),
		EarnedAt:      achievement.EarnedAt.UTC(),
		TotalWorkouts: achievement.TotalWorkouts,
		TotalVolume:   achievement.TotalVolume,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		achievement.ID = primitive.NilObjectID
		return false, nil
	}
	return true, nil
}
