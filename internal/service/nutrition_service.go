package service

import (
	"baisics/coach-api/internal/cache"
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrPhaseWithoutProgram = errors.New("phase requires a program")
	ErrInvalidPlanWindow   = errors.New("endDate must be after effectiveDate")
)

// CreatePlanInput carries a new nutrition plan. A nil ProgramID makes it a
// standalone plan.
type CreatePlanInput struct {
	ProgramID     *primitive.ObjectID
	Phase         *int `validate:"omitempty,min=1"`
	DailyCalories int  `validate:"min=1,max=20000"`
	ProteinGrams  int  `validate:"min=0,max=2000"`
	CarbGrams     int  `validate:"min=0,max=2000"`
	FatGrams      int  `validate:"min=0,max=2000"`
	EffectiveDate *time.Time
	EndDate       *time.Time
}

type NutritionService interface {
	// ResolveTargets is the uncached point-in-time lookup.
	ResolveTargets(ctx context.Context, userID primitive.ObjectID, at time.Time) domain.ResolvedTargets
	// TargetsForDay resolves at the last instant of the UTC day containing day.
	TargetsForDay(ctx context.Context, userID primitive.ObjectID, day time.Time) domain.ResolvedTargets
	CreatePlan(ctx context.Context, userID, createdBy primitive.ObjectID, in CreatePlanInput) (*domain.NutritionPlan, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.NutritionPlan, error)
	InvalidateTargets(ctx context.Context, userID primitive.ObjectID)
}

type nutritionService struct {
	resolver *TargetResolver
	plans    repository.NutritionPlanRepository
	programs repository.ProgramRepository
	cache    cache.TargetCache
	logger   *zap.Logger
}

func NewNutritionService(
	resolver *TargetResolver,
	plans repository.NutritionPlanRepository,
	programs repository.ProgramRepository,
	targetCache cache.TargetCache,
	logger *zap.Logger,
) NutritionService {
	if targetCache == nil {
		targetCache = cache.Noop{}
	}
	return &nutritionService{
		resolver: resolver,
		plans:    plans,
		programs: programs,
		cache:    targetCache,
		logger:   logger,
	}
}

func (s *nutritionService) ResolveTargets(ctx context.Context, userID primitive.ObjectID, at time.Time) domain.ResolvedTargets {
	return s.resolver.Resolve(ctx, userID, at)
}

func (s *nutritionService) TargetsForDay(ctx context.Context, userID primitive.ObjectID, day time.Time) domain.ResolvedTargets {
	cached, err := s.cache.Get(ctx, userID, day)
	if err != nil {
		s.logger.Warn("target_cache_get_failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
	if cached != nil {
		return *cached
	}

	resolved := s.resolver.Resolve(ctx, userID, EndOfDay(day))
	if err := s.cache.Set(ctx, userID, day, resolved); err != nil {
		s.logger.Warn("target_cache_set_failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
	return resolved
}

func (s *nutritionService) CreatePlan(ctx context.Context, userID, createdBy primitive.ObjectID, in CreatePlanInput) (*domain.NutritionPlan, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Phase != nil && in.ProgramID == nil {
		return nil, ErrPhaseWithoutProgram
	}

	effective := time.Now().UTC()
	if in.EffectiveDate != nil {
		effective = in.EffectiveDate.UTC()
	}
	var end *time.Time
	if in.EndDate != nil {
		e := in.EndDate.UTC()
		if !e.After(effective) {
			return nil, ErrInvalidPlanWindow
		}
		end = &e
	}

	plan := &domain.NutritionPlan{
		MacroTargets: domain.MacroTargets{
			DailyCalories: in.DailyCalories,
			ProteinGrams:  in.ProteinGrams,
			CarbGrams:     in.CarbGrams,
			FatGrams:      in.FatGrams,
		},
		UserID:        userID,
		EffectiveDate: effective,
		EndDate:       end,
		CreatedBy:     createdBy,
	}

	if in.ProgramID != nil {
		program, err := s.programs.GetByID(ctx, *in.ProgramID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrProgramNotFound
			}
			return nil, err
		}
		if program.UserID != userID {
			return nil, ErrProgramNotFound
		}
		phase := 1
		if in.Phase != nil {
			phase = *in.Phase
		}
		if !program.ValidPhase(phase) {
			return nil, ErrInvalidPhase
		}
		plan.ProgramID = &program.ID
		plan.Phase = &phase
	}

	id, err := s.plans.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	s.InvalidateTargets(ctx, userID)

	s.logger.Info("nutrition_plan_created",
		zap.String("user_id", userID.Hex()),
		zap.String("plan_id", id.Hex()),
		zap.Bool("program_scope", plan.ProgramID != nil),
	)
	return plan, nil
}

func (s *nutritionService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.NutritionPlan, error) {
	plans, err := s.plans.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.NutritionPlan{}
	}
	return plans, nil
}

func (s *nutritionService) InvalidateTargets(ctx context.Context, userID primitive.ObjectID) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("target_cache_invalidate_failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}

// EndOfDay is the last representable instant of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, time.UTC)
}
