package mongo

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const milestoneCollectionName = "milestone_achievements"

type mongoMilestoneRepository struct {
	collection *mongo.Collection
}

// NewMongoMilestoneRepository creates a new milestone repository.
func NewMongoMilestoneRepository(db *mongo.Database) repository.MilestoneRepository {
	return &mongoMilestoneRepository{
		collection: db.Collection(milestoneCollectionName),
	}
}

// GetByUserID lists a user's credits in the order they were earned.
func (r *mongoMilestoneRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MilestoneAchievement, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "earnedAt", Value: 1}, {Key: "totalWorkouts", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var achievements []domain.MilestoneAchievement
	if err = cursor.All(ctx, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

// Award inserts the credit; the unique (userId, type) index turns a repeat
// into a duplicate key error, which is reported as "not inserted".
func (r *mongoMilestoneRepository) Award(ctx context.Context, achievement *domain.MilestoneAchievement) (bool, error) {
	if achievement.UserID == primitive.NilObjectID || achievement.Type == "" {
		return false, errors.New("milestone achievement requires userId and type")
	}
	achievement.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, achievement); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			achievement.ID = primitive.NilObjectID
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureMilestoneIndexes creates the unique credit index. Call during startup.
func EnsureMilestoneIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
