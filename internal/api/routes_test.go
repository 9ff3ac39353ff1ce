package api

import (
	"baisics/coach-api/internal/cache"
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository/gormrepo"
	"baisics/coach-api/internal/service"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gormrepo.Open(gormrepo.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormrepo.Close(db) })
	repos := gormrepo.NewRepositories(db)

	logger := zap.NewNop()
	reg := metrics.New()
	resolver := service.NewTargetResolver(repos.Programs, repos.NutritionPlans, reg, logger)
	nutrition := service.NewNutritionService(resolver, repos.NutritionPlans, repos.Programs, cache.Noop{}, logger)
	milestones := service.NewMilestoneService(repos.WorkoutLogs, repos.Milestones, reg, logger)

	router := gin.New()
	SetupRoutes(router, Services{
		Auth:      service.NewAuthService(repos.Users, "test-secret", time.Hour),
		Coach:     service.NewCoachService(repos.Users, logger),
		Program:   service.NewProgramService(repos.Programs, nutrition, logger),
		Nutrition: nutrition,
		FoodLog:   service.NewFoodLogService(repos.FoodLogs, nutrition, 10, logger),
		Workout:   service.NewWorkoutService(repos.WorkoutLogs, repos.Programs, repos.Exercises, milestones, reg, logger),
		Milestone: milestones,
		Exercise:  service.NewExerciseService(repos.Exercises),
		BodyStat:  service.NewBodyStatService(repos.BodyStats, nil, logger),
	}, logger, reg, []string{"http://localhost:3000"})

	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// signUp registers and logs in, returning the token and the user ID.
func (s *testServer) signUp(t *testing.T, email string, role domain.Role) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": email, "email": email, "password": "password123", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.signUp(t, "ana@example.com", domain.RoleClient)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Ana", "email": "ana@example.com", "password": "password123", "role": "client",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, userID, me["id"])
	assert.Equal(t, "client", me["role"])

	rec = s.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQuickLogReportsMilestone(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp(t, "ben@example.com", domain.RoleClient)

	rec := s.do(t, http.MethodPost, "/api/v1/workout-logs/quick-log", token, gin.H{
		"name":            "Legs",
		"durationMinutes": 45,
		"sets": []gin.H{
			{"exerciseName": "Squat", "weight": 100, "reps": 5},
			{"exerciseName": "Squat", "weight": 100, "reps": 5},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Workout   domain.WorkoutLog  `json:"workout"`
		Sets      []domain.SetLog    `json:"sets"`
		Milestone *MilestoneResponse `json:"milestone"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.WorkoutCompleted, resp.Workout.Status)
	assert.Len(t, resp.Sets, 2)
	require.NotNil(t, resp.Milestone)
	assert.True(t, resp.Milestone.Unlocked)
	require.NotNil(t, resp.Milestone.Type)
	assert.Equal(t, domain.MilestoneWorkout1, *resp.Milestone.Type)
	assert.EqualValues(t, 1, resp.Milestone.TotalWorkouts)
	assert.InDelta(t, 1000, resp.Milestone.TotalVolume, 0.001)

	rec = s.do(t, http.MethodGet, "/api/v1/milestones", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode(t, rec)
	assert.Len(t, progress["earned"], 1)
}

func TestCompleteWorkoutTwiceConflicts(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp(t, "cleo@example.com", domain.RoleClient)

	rec := s.do(t, http.MethodPost, "/api/v1/workout-logs", token, gin.H{"name": "Push"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	workoutID := decode(t, rec)["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/workout-logs/"+workoutID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.NotNil(t, body["milestone"])
	assert.Equal(t, []any{}, body["sets"], "a workout without sets reports an empty list")

	rec = s.do(t, http.MethodPost, "/api/v1/workout-logs/"+workoutID+"/complete", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/workout-logs/"+workoutID+"/sets", token, gin.H{
		"sets": []gin.H{{"exerciseName": "Bench", "weight": 60, "reps": 8}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/workout-logs/not-an-id/complete", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuickLogUnknownExerciseLeavesNoWorkout(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp(t, "dara@example.com", domain.RoleClient)

	rec := s.do(t, http.MethodPost, "/api/v1/workout-logs/quick-log", token, gin.H{
		"name": "Pull",
		"sets": []gin.H{
			{"exerciseName": "Row", "weight": 60, "reps": 8},
			{"exerciseId": primitive.NewObjectID().Hex(), "reps": 8},
		},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/workout-logs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Empty(t, history)
}

func TestDailySummaryShape(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp(t, "dana@example.com", domain.RoleClient)

	rec := s.do(t, http.MethodPost, "/api/v1/food-log", token, gin.H{
		"date": "2025-03-01", "mealType": "lunch", "name": "Rice bowl",
		"calories": 650, "proteinGrams": 35, "carbGrams": 80, "fatGrams": 15,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/food-log/daily-summary?date=2025-03-01", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary service.DailySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "2025-03-01", summary.Date)
	assert.Equal(t, 650, summary.Totals.Calories)
	assert.True(t, summary.IsDefault)
	assert.False(t, summary.HasPersonalizedTargets)
	assert.Equal(t, domain.DefaultMacroTargets, summary.Targets)
	assert.Len(t, summary.WeeklyCompliance.Days, service.ComplianceWindowDays)
	assert.Equal(t, 1, summary.WeeklyCompliance.DaysLogged)

	rec = s.do(t, http.MethodGet, "/api/v1/food-log/daily-summary?date=03/01/2025", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoachClientAccess(t *testing.T) {
	s := newTestServer(t)
	coachToken, _ := s.signUp(t, "coach@example.com", domain.RoleCoach)
	clientToken, clientID := s.signUp(t, "eve@example.com", domain.RoleClient)

	summaryPath := "/api/v1/coach/clients/" + clientID + "/daily-summary"

	rec := s.do(t, http.MethodGet, summaryPath, coachToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/coach/clients", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/coach/clients", coachToken, gin.H{"clientEmail": "EVE@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/coach/clients", coachToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster []UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roster))
	require.Len(t, roster, 1)
	assert.Equal(t, clientID, roster[0].ID)

	rec = s.do(t, http.MethodGet, summaryPath, coachToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/coach/clients/"+clientID+"/nutrition-plans", coachToken, gin.H{
		"dailyCalories": 2400, "proteinGrams": 180, "carbGrams": 250, "fatGrams": 70,
		"effectiveDate": time.Now().UTC().Add(-time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/nutrition/targets", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var targets domain.ResolvedTargets
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &targets))
	assert.False(t, targets.IsDefault)
	assert.Equal(t, 2400, targets.Plan.DailyCalories)
}

func TestPhotoUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp(t, "finn@example.com", domain.RoleClient)

	rec := s.do(t, http.MethodPost, "/api/v1/body-stats/photos/upload-url", token, gin.H{"contentType": "image/jpeg"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/body-stats", token, gin.H{"weightKg": 82.5})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`))
}
