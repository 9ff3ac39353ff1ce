package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository"
	"baisics/coach-api/internal/repository/gormrepo"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := gormrepo.Open(gormrepo.DriverSQLite, filepath.Join(t.TempDir(), "coach.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormrepo.Close(db) })
	return gormrepo.NewRepositories(db)
}

func seedUser(t *testing.T, repos *repository.Repositories, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: email, Email: email, PasswordHash: "x", Role: role}
	_, err := repos.Users.Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func seedProgram(t *testing.T, repos *repository.Repositories, userID primitive.ObjectID, active bool, phase, phases int) *domain.Program {
	t.Helper()
	p := &domain.Program{UserID: userID, Name: "Recomp", Active: active, CurrentPhase: phase, PhaseCount: phases}
	_, err := repos.Programs.Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func seedPlan(t *testing.T, repos *repository.Repositories, plan domain.NutritionPlan) *domain.NutritionPlan {
	t.Helper()
	plan.CreatedBy = plan.UserID
	_, err := repos.NutritionPlans.Create(context.Background(), &plan)
	require.NoError(t, err)
	return &plan
}

// seedCompletedWorkouts stores n completed workouts, each with one set of weight × reps.
func seedCompletedWorkouts(t *testing.T, repos *repository.Repositories, userID primitive.ObjectID, n int, weight float64, reps int) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		w := &domain.WorkoutLog{UserID: userID, Name: "Session", StartedAt: start.Add(time.Duration(i) * time.Hour)}
		id, err := repos.WorkoutLogs.Create(ctx, w)
		require.NoError(t, err)
		wt := weight
		require.NoError(t, repos.WorkoutLogs.AddSets(ctx, []domain.SetLog{{
			WorkoutLogID: id,
			UserID:       userID,
			ExerciseName: "Squat",
			SetNumber:    1,
			Weight:       &wt,
			Reps:         reps,
		}}))
		require.NoError(t, repos.WorkoutLogs.MarkCompleted(ctx, id, w.StartedAt.Add(time.Hour), 60))
	}
}

func scrapeMetrics(t *testing.T, reg *metrics.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func hasMetricLine(body, line string) bool {
	for _, l := range strings.Split(body, "\n") {
		if l == line {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}
