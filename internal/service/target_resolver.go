package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TargetResolver answers which macro targets applied to a user at an instant.
// It looks at the active program's current phase first, then the user's
// standalone plans, then falls back to DefaultMacroTargets. It never fails:
// storage errors are logged and treated as "no plan in this tier".
type TargetResolver struct {
	programs repository.ProgramRepository
	plans    repository.NutritionPlanRepository
	metrics  *metrics.Registry
	logger   *zap.Logger
}

func NewTargetResolver(
	programs repository.ProgramRepository,
	plans repository.NutritionPlanRepository,
	reg *metrics.Registry,
	logger *zap.Logger,
) *TargetResolver {
	return &TargetResolver{
		programs: programs,
		plans:    plans,
		metrics:  reg,
		logger:   logger,
	}
}

// Resolve returns the targets in force at at. A zero at means now.
func (r *TargetResolver) Resolve(ctx context.Context, userID primitive.ObjectID, at time.Time) domain.ResolvedTargets {
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	resolved := r.resolve(ctx, userID, at)
	if r.metrics != nil {
		r.metrics.TargetResolutions.WithLabelValues(string(resolved.Source)).Inc()
	}
	return resolved
}

func (r *TargetResolver) resolve(ctx context.Context, userID primitive.ObjectID, at time.Time) domain.ResolvedTargets {
	program, err := r.programs.GetActiveByUserID(ctx, userID)
	switch {
	case err == nil:
		scope := domain.PlanScope{UserID: userID, ProgramID: &program.ID, Phase: program.CurrentPhase}
		if plan := r.find(ctx, scope, at); plan != nil {
			return fromPlan(plan, domain.SourceProgram)
		}
	case !errors.Is(err, repository.ErrNotFound):
		r.logger.Warn("active_program_lookup_failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}

	if plan := r.find(ctx, domain.PlanScope{UserID: userID}, at); plan != nil {
		return fromPlan(plan, domain.SourceStandalone)
	}

	return domain.ResolvedTargets{
		Plan:      domain.DefaultMacroTargets,
		Source:    domain.SourceDefault,
		IsDefault: true,
	}
}

func (r *TargetResolver) find(ctx context.Context, scope domain.PlanScope, at time.Time) *domain.NutritionPlan {
	plan, err := r.plans.FindEffective(ctx, scope, at)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("nutrition_plan_lookup_failed",
				zap.String("user_id", scope.UserID.Hex()),
				zap.Bool("program_scope", scope.ProgramID != nil),
				zap.Error(err),
			)
		}
		return nil
	}
	return plan
}

func fromPlan(plan *domain.NutritionPlan, source domain.TargetSource) domain.ResolvedTargets {
	id := plan.ID
	return domain.ResolvedTargets{
		Plan:   plan.MacroTargets,
		Source: source,
		PlanID: &id,
	}
}
