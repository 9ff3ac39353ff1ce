package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func macros(kcal int) domain.MacroTargets {
	return domain.MacroTargets{DailyCalories: kcal, ProteinGrams: 160, CarbGrams: 200, FatGrams: 70}
}

func TestResolve_ProgramTierWinsOverStandalone(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "ana@example.com", domain.RoleClient)
	program := seedProgram(t, repos, user.ID, true, 1, 3)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	programPlan := seedPlan(t, repos, domain.NutritionPlan{
		MacroTargets: macros(2600), UserID: user.ID, ProgramID: &program.ID, Phase: ptr(1), EffectiveDate: from,
	})
	seedPlan(t, repos, domain.NutritionPlan{MacroTargets: macros(1800), UserID: user.ID, EffectiveDate: from})

	r := NewTargetResolver(repos.Programs, repos.NutritionPlans, nil, zap.NewNop())
	got := r.Resolve(context.Background(), user.ID, from.Add(48*time.Hour))

	assert.Equal(t, domain.SourceProgram, got.Source)
	assert.False(t, got.IsDefault)
	assert.Equal(t, 2600, got.Plan.DailyCalories)
	require.NotNil(t, got.PlanID)
	assert.Equal(t, programPlan.ID, *got.PlanID)
}

func TestResolve_OtherPhaseFallsThroughToStandalone(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "ben@example.com", domain.RoleClient)
	program := seedProgram(t, repos, user.ID, true, 1, 3)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seedPlan(t, repos, domain.NutritionPlan{
		MacroTargets: macros(2600), UserID: user.ID, ProgramID: &program.ID, Phase: ptr(2), EffectiveDate: from,
	})
	seedPlan(t, repos, domain.NutritionPlan{MacroTargets: macros(1800), UserID: user.ID, EffectiveDate: from})

	r := NewTargetResolver(repos.Programs, repos.NutritionPlans, nil, zap.NewNop())
	got := r.Resolve(context.Background(), user.ID, from.Add(time.Hour))

	assert.Equal(t, domain.SourceStandalone, got.Source)
	assert.Equal(t, 1800, got.Plan.DailyCalories)
}

func TestResolve_InactiveProgramIgnored(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "cy@example.com", domain.RoleClient)
	program := seedProgram(t, repos, user.ID, false, 1, 1)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seedPlan(t, repos, domain.NutritionPlan{
		MacroTargets: macros(2600), UserID: user.ID, ProgramID: &program.ID, Phase: ptr(1), EffectiveDate: from,
	})

	r := NewTargetResolver(repos.Programs, repos.NutritionPlans, nil, zap.NewNop())
	got := r.Resolve(context.Background(), user.ID, from.Add(time.Hour))

	assert.Equal(t, domain.SourceDefault, got.Source)
}

func TestResolve_LatestEffectiveDateWins(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "di@example.com", domain.RoleClient)
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	seedPlan(t, repos, domain.NutritionPlan{MacroTargets: macros(2100), UserID: user.ID, EffectiveDate: t1})
	seedPlan(t, repos, domain.NutritionPlan{MacroTargets: macros(1900), UserID: user.ID, EffectiveDate: t2})

	r := NewTargetResolver(repos.Programs, repos.NutritionPlans, nil, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, 2100, r.Resolve(ctx, user.ID, t2.Add(-time.Second)).Plan.DailyCalories)
	assert.Equal(t, 1900, r.Resolve(ctx, user.ID, t2).Plan.DailyCalories)
	assert.Equal(t, 1900, r.Resolve(ctx, user.ID, t2.Add(30*24*time.Hour)).Plan.DailyCalories)
	assert.Equal(t, domain.SourceDefault, r.Resolve(ctx, user.ID, t1.Add(-time.Second)).Source)
}

func TestResolve_EndDateIsExclusive(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "ed@example.com", domain.RoleClient)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	seedPlan(t, repos, domain.NutritionPlan{MacroTargets: macros(2200), UserID: user.ID, EffectiveDate: start, EndDate: &end})

	r := NewTargetResolver(repos.Programs, repos.NutritionPlans, nil, zap.NewNop())
	ctx := context.Background()

	before := r.Resolve(ctx, user.ID, end.Add(-time.Second))
	assert.Equal(t, domain.SourceStandalone, before.Source)
	assert.Equal(t, 2200, before.Plan.DailyCalories)

	assert.Equal(t, domain.SourceDefault, r.Resolve(ctx, user.ID, end).Source)
	assert.Equal(t, domain.SourceDefault, r.Resolve(ctx, user.ID, end.Add(time.Hour)).Source)
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	repos := newTestRepos(t)
	reg := metrics.New()
	r := NewTargetResolver(repos.Programs, repos.NutritionPlans, reg, zap.NewNop())

	// an unknown user simply matches no plan
	got := r.Resolve(context.Background(), primitive.NewObjectID(), time.Now())

	assert.Equal(t, domain.DefaultMacroTargets, got.Plan)
	assert.Equal(t, domain.SourceDefault, got.Source)
	assert.True(t, got.IsDefault)
	assert.Nil(t, got.PlanID)
	assert.True(t, hasMetricLine(scrapeMetrics(t, reg), `nutrition_target_resolutions_total{source="default"} 1`))
}

type brokenPrograms struct {
	repository.ProgramRepository
}

func (brokenPrograms) GetActiveByUserID(context.Context, primitive.ObjectID) (*domain.Program, error) {
	return nil, errors.New("connection reset")
}

type brokenPlans struct {
	repository.NutritionPlanRepository
}

func (brokenPlans) FindEffective(context.Context, domain.PlanScope, time.Time) (*domain.NutritionPlan, error) {
	return nil, errors.New("connection reset")
}

func TestResolve_StorageErrorsDegrade(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "fay@example.com", domain.RoleClient)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	seedPlan(t, repos, domain.NutritionPlan{MacroTargets: macros(1700), UserID: user.ID, EffectiveDate: from})

	r := NewTargetResolver(brokenPrograms{}, repos.NutritionPlans, nil, zap.NewNop())
	got := r.Resolve(context.Background(), user.ID, from.Add(time.Hour))
	assert.Equal(t, domain.SourceStandalone, got.Source)

	r = NewTargetResolver(repos.Programs, brokenPlans{}, nil, zap.NewNop())
	got = r.Resolve(context.Background(), user.ID, from.Add(time.Hour))
	assert.Equal(t, domain.SourceDefault, got.Source)
	assert.True(t, got.IsDefault)
}
