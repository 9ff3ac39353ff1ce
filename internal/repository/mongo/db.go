package mongo

import (
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary; a successful Connect does not mean the server answers.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories wires every MongoDB-backed repository against db.
func NewRepositories(db *mongo.Database) *repository.Repositories {
	return &repository.Repositories{
		Users:          NewMongoUserRepository(db),
		Programs:       NewMongoProgramRepository(db),
		NutritionPlans: NewMongoNutritionPlanRepository(db),
		WorkoutLogs:    NewMongoWorkoutLogRepository(db),
		Milestones:     NewMongoMilestoneRepository(db),
		FoodLogs:       NewMongoFoodLogRepository(db),
		Exercises:      NewMongoExerciseRepository(db),
		BodyStats:      NewMongoBodyStatRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Index failures are
// logged; only the milestone unique index is fatal since crediting depends on it.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:          EnsureUserIndexes,
		programCollectionName:       EnsureProgramIndexes,
		nutritionPlanCollectionName: EnsureNutritionPlanIndexes,
		workoutLogCollectionName:    EnsureWorkoutLogIndexes,
		setLogCollectionName:        EnsureSetLogIndexes,
		foodLogCollectionName:       EnsureFoodLogIndexes,
		exerciseCollectionName:      EnsureExerciseIndexes,
		bodyStatCollectionName:      EnsureBodyStatIndexes,
		progressPhotoCollectionName: EnsureProgressPhotoIndexes,
	}
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			logger.Warn("index_creation_failed", zap.String("collection", name), zap.Error(err))
		}
	}
	if err := EnsureMilestoneIndexes(ctx, db.Collection(milestoneCollectionName)); err != nil {
		logger.Error("index_creation_failed", zap.String("collection", milestoneCollectionName), zap.Error(err))
		return err
	}
	logger.Info("mongo_indexes_ensured")
	return nil
}

// insertedObjectID asserts the type of an InsertOne result.
func insertedObjectID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}
