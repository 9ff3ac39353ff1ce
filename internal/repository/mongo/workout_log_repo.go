// internal/repository/mongo/workout_log_repo.go
package mongo

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	workoutLogCollectionName = "workout_logs"
	setLogCollectionName     = "set_logs"
)

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
// over a workouts collection and a sets collection.
type mongoWorkoutLogRepository struct {
	workouts *mongo.Collection
	sets     *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		workouts: db.Collection(workoutLogCollectionName),
		sets:     db.Collection(setLogCollectionName),
	}
}

// Create inserts a new workout log.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, workout *domain.WorkoutLog) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout log requires userId and name")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Status == "" {
		workout.Status = domain.WorkoutInProgress
	}

	result, err := r.workouts.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves a single workout log by its ID.
func (r *mongoWorkoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var workout domain.WorkoutLog
	err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByUserID retrieves a user's workouts, most recently started first.
func (r *mongoWorkoutLogRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.workouts.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.WorkoutLog
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// MarkCompleted transitions an in-progress workout to completed.
func (r *mongoWorkoutLogRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, completedAt time.Time, durationMinutes int) error {
	filter := bson.M{"_id": id, "status": domain.WorkoutInProgress}
	update := bson.M{
		"$set": bson.M{
			"status":          domain.WorkoutCompleted,
			"completedAt":     completedAt,
			"durationMinutes": durationMinutes,
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.workouts.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrUpdateFailed // exists but was already completed
	}
	return nil
}

// AddSets inserts performed sets.
func (r *mongoWorkoutLogRepository) AddSets(ctx context.Context, sets []domain.SetLog) error {
	if len(sets) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(sets))
	for i := range sets {
		if sets[i].WorkoutLogID == primitive.NilObjectID || sets[i].UserID == primitive.NilObjectID {
			return errors.New("set log requires workoutLogId and userId")
		}
		sets[i].ID = primitive.NewObjectID()
		sets[i].CreatedAt = now
		docs[i] = sets[i]
	}
	_, err := r.sets.InsertMany(ctx, docs)
	return err
}

// Delete removes the workout and its sets. Sets go first so a partial
// failure never leaves sets pointing at a missing workout.
func (r *mongoWorkoutLogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.sets.DeleteMany(ctx, bson.M{"workoutLogId": id}); err != nil {
		return err
	}
	result, err := r.workouts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetSets retrieves the sets of a workout in the order they were performed.
func (r *mongoWorkoutLogRepository) GetSets(ctx context.Context, workoutID primitive.ObjectID) ([]domain.SetLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.sets.Find(ctx, bson.M{"workoutLogId": workoutID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.SetLog
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// Totals recomputes lifetime aggregates from source documents.
func (r *mongoWorkoutLogRepository) Totals(ctx context.Context, userID primitive.ObjectID) (domain.TrainingTotals, error) {
	var totals domain.TrainingTotals

	count, err := r.workouts.CountDocuments(ctx, bson.M{"userId": userID, "status": domain.WorkoutCompleted})
	if err != nil {
		return totals, err
	}
	totals.TotalWorkouts = count

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID, "weight": bson.M{"$ne": nil}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         workoutLogCollectionName,
			"localField":   "workoutLogId",
			"foreignField": "_id",
			"as":           "workout",
		}}},
		{{Key: "$match", Value: bson.M{"workout.status": domain.WorkoutCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"volume": bson.M{"$sum": bson.M{"$multiply": bson.A{"$weight", "$reps"}}},
		}}},
	}

	cursor, err := r.sets.Aggregate(ctx, pipeline)
	if err != nil {
		return totals, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Volume float64 `bson:"volume"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return totals, err
	}
	if len(rows) > 0 {
		totals.TotalVolume = rows[0].Volume
	}
	return totals, nil
}

// EnsureWorkoutLogIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// milestone counts
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// EnsureSetLogIndexes creates necessary indexes. Call during startup.
func EnsureSetLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutLogId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
