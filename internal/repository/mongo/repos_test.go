package mongo

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// These run against the driver's mock deployment: each command gets the
// next queued reply, and the started events show what was sent.

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func TestMilestoneRepository_Award(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	mt.Run("first award inserts", func(mt *mtest.T) {
		repo := NewMongoMilestoneRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		achievement := &domain.MilestoneAchievement{UserID: userID, Type: domain.MilestoneWorkout1, TotalWorkouts: 1, EarnedAt: time.Now()}
		inserted, err := repo.Award(ctx, achievement)
		require.NoError(mt, err)
		assert.True(mt, inserted)
		assert.False(mt, achievement.ID.IsZero())

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
		assert.Equal(mt, milestoneCollectionName, evt.Command.Lookup("insert").StringValue())
	})

	mt.Run("repeat award is a no-op", func(mt *mtest.T) {
		repo := NewMongoMilestoneRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error collection: milestone_achievements index: userId_1_type_1",
			}),
		)

		first := &domain.MilestoneAchievement{UserID: userID, Type: domain.MilestoneWorkout10, TotalWorkouts: 10, EarnedAt: time.Now()}
		inserted, err := repo.Award(ctx, first)
		require.NoError(mt, err)
		require.True(mt, inserted)

		again := &domain.MilestoneAchievement{UserID: userID, Type: domain.MilestoneWorkout10, TotalWorkouts: 11, EarnedAt: time.Now()}
		inserted, err = repo.Award(ctx, again)
		require.NoError(mt, err, "duplicate key must be reported as not inserted")
		assert.False(mt, inserted)
		assert.True(mt, again.ID.IsZero())
	})

	mt.Run("other write errors surface", func(mt *mtest.T) {
		repo := NewMongoMilestoneRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "Document failed validation"}))

		inserted, err := repo.Award(ctx, &domain.MilestoneAchievement{UserID: userID, Type: domain.MilestoneWorkout25})
		assert.Error(mt, err)
		assert.False(mt, inserted)
	})

	mt.Run("missing user is rejected before the write", func(mt *mtest.T) {
		repo := NewMongoMilestoneRepository(mt.DB)

		_, err := repo.Award(ctx, &domain.MilestoneAchievement{Type: domain.MilestoneWorkout1})
		assert.Error(mt, err)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestNutritionPlanRepository_FindEffective(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mt.Run("standalone scope filters on null program", func(mt *mtest.T) {
		repo := NewMongoNutritionPlanRepository(mt.DB)
		planID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, nutritionPlanCollectionName), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: planID},
			{Key: "userId", Value: userID},
			{Key: "dailyCalories", Value: 2200},
			{Key: "proteinGrams", Value: 160},
			{Key: "effectiveDate", Value: at.AddDate(0, 0, -3)},
		}))

		plan, err := repo.FindEffective(ctx, domain.PlanScope{UserID: userID}, at)
		require.NoError(mt, err)
		assert.Equal(mt, planID, plan.ID)
		assert.Equal(mt, 2200, plan.DailyCalories)
		assert.Nil(mt, plan.ProgramID)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, bsontype.Null, filter.Lookup("programId").Type)
		_, err = filter.LookupErr("phase")
		assert.Error(mt, err, "standalone lookups must not constrain phase")
		assert.Equal(mt, userID, filter.Lookup("userId").ObjectID())
		assert.Equal(mt, at.UnixMilli(), filter.Lookup("effectiveDate", "$lte").Time().UnixMilli())
		assert.Equal(mt, bsontype.Array, filter.Lookup("$or").Type)

		sort := evt.Command.Lookup("sort").Document()
		keys, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, keys, 2)
		assert.Equal(mt, "effectiveDate", keys[0].Key())
		assert.Equal(mt, "createdAt", keys[1].Key())
	})

	mt.Run("program scope filters on program and phase", func(mt *mtest.T) {
		repo := NewMongoNutritionPlanRepository(mt.DB)
		programID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, nutritionPlanCollectionName), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "userId", Value: userID},
			{Key: "programId", Value: programID},
			{Key: "phase", Value: 2},
			{Key: "dailyCalories", Value: 2600},
			{Key: "effectiveDate", Value: at.AddDate(0, 0, -1)},
		}))

		plan, err := repo.FindEffective(ctx, domain.PlanScope{UserID: userID, ProgramID: &programID, Phase: 2}, at)
		require.NoError(mt, err)
		require.NotNil(mt, plan.ProgramID)
		assert.Equal(mt, programID, *plan.ProgramID)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, programID, filter.Lookup("programId").ObjectID())
		assert.EqualValues(mt, 2, filter.Lookup("phase").AsInt64())
	})

	mt.Run("no plan in force", func(mt *mtest.T) {
		repo := NewMongoNutritionPlanRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, nutritionPlanCollectionName), mtest.FirstBatch))

		plan, err := repo.FindEffective(ctx, domain.PlanScope{UserID: userID}, at)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Nil(mt, plan)
	})
}

func TestWorkoutLogRepository_Totals(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	mt.Run("counts completed workouts and sums their volume", func(mt *mtest.T) {
		repo := NewMongoWorkoutLogRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, workoutLogCollectionName), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}),
			mtest.CreateCursorResponse(0, ns(mt, setLogCollectionName), mtest.FirstBatch, bson.D{{Key: "_id", Value: nil}, {Key: "volume", Value: 2000.0}}),
		)

		totals, err := repo.Totals(ctx, userID)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), totals.TotalWorkouts)
		assert.Equal(mt, 2000.0, totals.TotalVolume)

		count := mt.GetStartedEvent()
		require.NotNil(mt, count)
		assert.Equal(mt, workoutLogCollectionName, count.Command.Lookup("aggregate").StringValue())
		countMatch := count.Command.Lookup("pipeline", "0", "$match").Document()
		assert.Equal(mt, string(domain.WorkoutCompleted), countMatch.Lookup("status").StringValue())

		volume := mt.GetStartedEvent()
		require.NotNil(mt, volume)
		assert.Equal(mt, setLogCollectionName, volume.Command.Lookup("aggregate").StringValue())
		lookup := volume.Command.Lookup("pipeline", "1", "$lookup").Document()
		assert.Equal(mt, workoutLogCollectionName, lookup.Lookup("from").StringValue())
		statusMatch := volume.Command.Lookup("pipeline", "2", "$match").Document()
		assert.Equal(mt, string(domain.WorkoutCompleted), statusMatch.Lookup("workout.status").StringValue())
	})

	mt.Run("no sets means zero volume", func(mt *mtest.T) {
		repo := NewMongoWorkoutLogRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, workoutLogCollectionName), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateCursorResponse(0, ns(mt, setLogCollectionName), mtest.FirstBatch),
		)

		totals, err := repo.Totals(ctx, userID)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), totals.TotalWorkouts)
		assert.Zero(mt, totals.TotalVolume)
	})
}

func TestWorkoutLogRepository_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("removes sets before the workout", func(mt *mtest.T) {
		repo := NewMongoWorkoutLogRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		require.NoError(mt, repo.Delete(ctx, id))

		sets := mt.GetStartedEvent()
		require.NotNil(mt, sets)
		assert.Equal(mt, "delete", sets.CommandName)
		assert.Equal(mt, setLogCollectionName, sets.Command.Lookup("delete").StringValue())
		assert.Equal(mt, id, sets.Command.Lookup("deletes", "0", "q", "workoutLogId").ObjectID())

		workout := mt.GetStartedEvent()
		require.NotNil(mt, workout)
		assert.Equal(mt, workoutLogCollectionName, workout.Command.Lookup("delete").StringValue())
		assert.Equal(mt, id, workout.Command.Lookup("deletes", "0", "q", "_id").ObjectID())
	})

	mt.Run("missing workout", func(mt *mtest.T) {
		repo := NewMongoWorkoutLogRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		assert.ErrorIs(mt, repo.Delete(ctx, primitive.NewObjectID()), repository.ErrNotFound)
	})
}
