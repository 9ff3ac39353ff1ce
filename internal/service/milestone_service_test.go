package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func earnedTypes(t *testing.T, repos *repository.Repositories, userID primitive.ObjectID) []domain.MilestoneType {
	t.Helper()
	earned, err := repos.Milestones.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	types := make([]domain.MilestoneType, 0, len(earned))
	for _, a := range earned {
		types = append(types, a.Type)
	}
	return types
}

func TestCheckAndAward_SecondCallIsNoop(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "gus@example.com", domain.RoleClient)
	seedCompletedWorkouts(t, repos, user.ID, 1, 50, 10)
	svc := NewMilestoneService(repos.WorkoutLogs, repos.Milestones, nil, zap.NewNop())
	ctx := context.Background()

	first, err := svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, first.Unlocked)

	second, err := svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, second.Unlocked)
	assert.Nil(t, second.Milestone)
	assert.Empty(t, second.Credited)
	assert.Equal(t, int64(1), second.TotalWorkouts)

	assert.Equal(t, []domain.MilestoneType{domain.MilestoneWorkout1}, earnedTypes(t, repos, user.ID))
}

func TestCheckAndAward_CrossingTen(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "hal@example.com", domain.RoleClient)
	svc := NewMilestoneService(repos.WorkoutLogs, repos.Milestones, nil, zap.NewNop())
	ctx := context.Background()

	seedCompletedWorkouts(t, repos, user.ID, 9, 20, 10)
	_, err := svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)

	seedCompletedWorkouts(t, repos, user.ID, 1, 20, 10)
	res, err := svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)

	assert.True(t, res.Unlocked)
	require.NotNil(t, res.Milestone)
	assert.Equal(t, domain.MilestoneWorkout10, *res.Milestone)
	assert.Equal(t, []domain.MilestoneType{domain.MilestoneWorkout10}, res.Credited)
	assert.Equal(t, int64(10), res.TotalWorkouts)
	assert.InDelta(t, 2000.0, res.TotalVolume, 0.001)
	assert.Len(t, earnedTypes(t, repos, user.ID), 2)
}

func TestCheckAndAward_MultiCrossReportsHighest(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "ivy@example.com", domain.RoleClient)
	seedCompletedWorkouts(t, repos, user.ID, 30, 10, 1)
	reg := metrics.New()
	svc := NewMilestoneService(repos.WorkoutLogs, repos.Milestones, reg, zap.NewNop())

	res, err := svc.CheckAndAward(context.Background(), user.ID)
	require.NoError(t, err)

	require.NotNil(t, res.Milestone)
	assert.Equal(t, domain.MilestoneWorkout25, *res.Milestone)
	assert.Equal(t, []domain.MilestoneType{
		domain.MilestoneWorkout1, domain.MilestoneWorkout10, domain.MilestoneWorkout25,
	}, res.Credited)
	assert.ElementsMatch(t, res.Credited, earnedTypes(t, repos, user.ID))

	earned, err := repos.Milestones.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	for _, a := range earned {
		// every credit carries the snapshot at award time
		assert.Equal(t, int64(30), a.TotalWorkouts)
		assert.InDelta(t, 300.0, a.TotalVolume, 0.001)
	}

	body := scrapeMetrics(t, reg)
	assert.True(t, hasMetricLine(body, `milestones_awarded_total{type="WORKOUT_25"} 1`))
}

func TestCheckAndAward_NoWorkoutsNoCredit(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "jo@example.com", domain.RoleClient)
	svc := NewMilestoneService(repos.WorkoutLogs, repos.Milestones, nil, zap.NewNop())

	res, err := svc.CheckAndAward(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, res.Unlocked)
	assert.Zero(t, res.TotalWorkouts)
	assert.Empty(t, earnedTypes(t, repos, user.ID))
}

func TestCheckAndAward_InProgressWorkoutsDoNotCount(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "kai@example.com", domain.RoleClient)
	_, err := repos.WorkoutLogs.Create(context.Background(), &domain.WorkoutLog{UserID: user.ID, Name: "Open"})
	require.NoError(t, err)
	svc := NewMilestoneService(repos.WorkoutLogs, repos.Milestones, nil, zap.NewNop())

	res, err := svc.CheckAndAward(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, res.Unlocked)
	assert.Zero(t, res.TotalWorkouts)
}

// staleMilestones hides existing credits, as a check racing another one would see.
type staleMilestones struct {
	repository.MilestoneRepository
}

func (staleMilestones) GetByUserID(context.Context, primitive.ObjectID) ([]domain.MilestoneAchievement, error) {
	return nil, nil
}

func TestCheckAndAward_RacingCheckDoesNotDuplicate(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "lu@example.com", domain.RoleClient)
	seedCompletedWorkouts(t, repos, user.ID, 1, 0, 0)
	ctx := context.Background()

	_, err := NewMilestoneService(repos.WorkoutLogs, repos.Milestones, nil, zap.NewNop()).CheckAndAward(ctx, user.ID)
	require.NoError(t, err)

	racer := NewMilestoneService(repos.WorkoutLogs, staleMilestones{repos.Milestones}, nil, zap.NewNop())
	res, err := racer.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)

	assert.False(t, res.Unlocked)
	assert.Len(t, earnedTypes(t, repos, user.ID), 1)
}

func TestGetProgress_NextMilestone(t *testing.T) {
	repos := newTestRepos(t)
	user := seedUser(t, repos, "max@example.com", domain.RoleClient)
	seedCompletedWorkouts(t, repos, user.ID, 3, 40, 5)
	svc := NewMilestoneService(repos.WorkoutLogs, repos.Milestones, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CheckAndAward(ctx, user.ID)
	require.NoError(t, err)

	progress, err := svc.GetProgress(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), progress.TotalWorkouts)
	assert.InDelta(t, 600.0, progress.TotalVolume, 0.001)
	assert.Len(t, progress.Earned, 1)
	require.NotNil(t, progress.Next)
	assert.Equal(t, domain.MilestoneWorkout10, progress.Next.Type)
	assert.Equal(t, int64(7), progress.Next.Remaining)
}
