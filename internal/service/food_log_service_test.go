package service

import (
	"baisics/coach-api/internal/cache"
	"baisics/coach-api/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newFoodLogFixture(t *testing.T) (FoodLogService, NutritionService, *domain.User, func(time.Time)) {
	t.Helper()
	repos := newTestRepos(t)
	user := seedUser(t, repos, "nia@example.com", domain.RoleClient)
	resolver := NewTargetResolver(repos.Programs, repos.NutritionPlans, nil, zap.NewNop())
	nutrition := NewNutritionService(resolver, repos.NutritionPlans, repos.Programs, cache.Noop{}, zap.NewNop())
	svc := NewFoodLogService(repos.FoodLogs, nutrition, 10, zap.NewNop())

	setNow := func(now time.Time) {
		svc.(*foodLogService).now = func() time.Time { return now }
	}
	return svc, nutrition, user, setNow
}

func logMeal(t *testing.T, svc FoodLogService, userID primitive.ObjectID, date string, kcal int) {
	t.Helper()
	_, err := svc.LogFood(context.Background(), userID, LogFoodInput{
		Date: date, MealType: domain.MealLunch, Name: "Meal", Calories: kcal, ProteinGrams: 30,
	})
	require.NoError(t, err)
}

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 6, 10, 22, 30, 0, 0, time.FixedZone("x", -5*3600))

	today, err := ParseDay("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), today)

	day, err := ParseDay("2025-02-28", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), day)

	for _, bad := range []string{"2025-13-01", "28/02/2025", "yesterday"} {
		_, err := ParseDay(bad, now)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestLogFood_DefaultsToToday(t *testing.T) {
	svc, _, user, setNow := newFoodLogFixture(t)
	setNow(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	entry, err := svc.LogFood(context.Background(), user.ID, LogFoodInput{MealType: domain.MealSnack, Name: "Apple", Calories: 95})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", entry.Date)

	_, err = svc.LogFood(context.Background(), user.ID, LogFoodInput{MealType: "brunch", Name: "Eggs"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteEntry_OwnerOnly(t *testing.T) {
	svc, _, user, _ := newFoodLogFixture(t)
	ctx := context.Background()
	entry, err := svc.LogFood(ctx, user.ID, LogFoodInput{Date: "2025-06-10", MealType: domain.MealDinner, Name: "Rice", Calories: 300})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteEntry(ctx, primitive.NewObjectID(), entry.ID), ErrFoodEntryNotFound)
	require.NoError(t, svc.DeleteEntry(ctx, user.ID, entry.ID))

	day, err := svc.GetDay(ctx, user.ID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestDailySummary_DefaultTargets(t *testing.T) {
	svc, _, user, _ := newFoodLogFixture(t)
	logMeal(t, svc, user.ID, "2025-06-10", 600)
	logMeal(t, svc, user.ID, "2025-06-10", 800)
	logMeal(t, svc, user.ID, "2025-06-11", 5000)

	s, err := svc.DailySummary(context.Background(), user.ID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2025-06-10", s.Date)
	assert.Equal(t, 1400, s.Totals.Calories)
	assert.InDelta(t, 60.0, s.Totals.ProteinGrams, 0.001)
	assert.Equal(t, domain.DefaultMacroTargets, s.Targets)
	assert.Equal(t, domain.SourceDefault, s.Source)
	assert.True(t, s.IsDefault)
	assert.False(t, s.HasPersonalizedTargets)
}

func TestDailySummary_WeeklyComplianceUsesEachDaysTargets(t *testing.T) {
	svc, nutrition, user, _ := newFoodLogFixture(t)
	ctx := context.Background()

	// 2000 kcal until June 8, 2500 kcal from June 8 on
	_, err := nutrition.CreatePlan(ctx, user.ID, user.ID, CreatePlanInput{
		DailyCalories: 2000, ProteinGrams: 150,
		EffectiveDate: ptr(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:       ptr(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	_, err = nutrition.CreatePlan(ctx, user.ID, user.ID, CreatePlanInput{
		DailyCalories: 2500, ProteinGrams: 180,
		EffectiveDate: ptr(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	logMeal(t, svc, user.ID, "2025-06-03", 1500) // before window
	logMeal(t, svc, user.ID, "2025-06-04", 2100) // compliant against 2000
	logMeal(t, svc, user.ID, "2025-06-05", 2600) // 30% over 2000
	logMeal(t, svc, user.ID, "2025-06-08", 2450) // compliant against 2500
	logMeal(t, svc, user.ID, "2025-06-10", 2000) // 20% under 2500

	s, err := svc.DailySummary(ctx, user.ID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2500, s.Targets.DailyCalories)
	assert.Equal(t, domain.SourceStandalone, s.Source)
	assert.True(t, s.HasPersonalizedTargets)

	w := s.WeeklyCompliance
	require.Len(t, w.Days, 7)
	assert.Equal(t, "2025-06-04", w.Days[0].Date)
	assert.Equal(t, "2025-06-10", w.Days[6].Date)
	assert.Equal(t, 2000, w.Days[0].TargetCalories)
	assert.Equal(t, 2500, w.Days[4].TargetCalories)
	assert.True(t, w.Days[0].Compliant)
	assert.False(t, w.Days[1].Compliant)
	assert.False(t, w.Days[2].Compliant)
	assert.True(t, w.Days[4].Compliant)
	assert.False(t, w.Days[6].Compliant)
	assert.Equal(t, 4, w.DaysLogged)
	assert.Equal(t, 2, w.DaysCompliant)
	assert.Equal(t, 29, w.Percentage)
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, withinTolerance(2200, 2000, 10))
	assert.True(t, withinTolerance(1800, 2000, 10))
	assert.False(t, withinTolerance(2201, 2000, 10))
	assert.False(t, withinTolerance(0, 0, 10))
}
