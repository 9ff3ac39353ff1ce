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

type nutritionPlanRepository struct {
	db *gorm.DB
}

func NewNutritionPlanRepository(db *gorm.DB) repository.NutritionPlanRepository {
	return &nutritionPlanRepository{db: db}
}

func (r *nutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("nutrition plan requires userId")
	}
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now().UTC()

	row := nutritionPlanRow{
		ID:            plan.ID.Hex(),
		UserID:        plan.UserID.Hex(),
		ProgramID:     optHex(plan.ProgramID),
		Phase:         plan.Phase,
		DailyCalories: plan.DailyCalories,
		ProteinGrams:  plan.ProteinGrams,
		CarbGrams:     plan.CarbGrams,
		FatGrams:      plan.FatGrams,
		EffectiveDate: plan.EffectiveDate.UTC(),
		EndDate:       utcPtr(plan.EndDate),
		CreatedBy:     plan.CreatedBy.Hex(),
		CreatedAt:     plan.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return primitive.NilObjectID, err
	}
	return plan.ID, nil
}

func (r *nutritionPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.NutritionPlan, error) {
	var rows []nutritionPlanRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.Hex()).
		Order("effective_date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	plans := make([]domain.NutritionPlan, 0, len(rows))
	for i := range rows {
		plans = append(plans, rows[i].toDomain())
	}
	return plans, nil
}

// FindEffective selects the in-window plan of scope with the latest effective date.
func (r *nutritionPlanRepository) FindEffective(ctx context.Context, scope domain.PlanScope, at time.Time) (*domain.NutritionPlan, error) {
	at = at.UTC()
	q := r.db.WithContext(ctx).
		Where("user_id = ?", scope.UserID.Hex()).
		Where("effective_date <= ?", at).
		Where("(end_date IS NULL OR end_date > ?)", at)
	if scope.ProgramID != nil {
		q = q.Where("program_id = ? AND phase = ?", scope.ProgramID.Hex(), scope.Phase)
	} else {
		q = q.Where("program_id IS NULL")
	}

	var row nutritionPlanRow
	if err := q.Order("effective_date DESC, created_at DESC").First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	plan := row.toDomain()
	return &plan, nil
}
