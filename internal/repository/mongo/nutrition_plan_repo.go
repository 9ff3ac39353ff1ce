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

const nutritionPlanCollectionName = "nutrition_plans"

type mongoNutritionPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoNutritionPlanRepository creates a new NutritionPlan repository.
func NewMongoNutritionPlanRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionPlanRepository{
		collection: db.Collection(nutritionPlanCollectionName),
	}
}

// Create inserts a new nutrition plan.
func (r *mongoNutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("nutrition plan requires userId")
	}
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByUserID lists every plan of a user, latest effective date first.
func (r *mongoNutritionPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.NutritionPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "effectiveDate", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.NutritionPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// FindEffective returns the plan of scope in force at the given instant.
func (r *mongoNutritionPlanRepository) FindEffective(ctx context.Context, scope domain.PlanScope, at time.Time) (*domain.NutritionPlan, error) {
	filter := bson.M{
		"userId":        scope.UserID,
		"effectiveDate": bson.M{"$lte": at},
		"$or": bson.A{
			bson.M{"endDate": nil},
			bson.M{"endDate": bson.M{"$gt": at}},
		},
	}
	if scope.ProgramID != nil {
		filter["programId"] = *scope.ProgramID
		filter["phase"] = scope.Phase
	} else {
		// matches both an explicit null and a missing field
		filter["programId"] = nil
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "effectiveDate", Value: -1}, {Key: "createdAt", Value: -1}})

	var plan domain.NutritionPlan
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&plan); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// EnsureNutritionPlanIndexes creates necessary indexes. Call during startup.
func EnsureNutritionPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// program tier lookup
			Keys: bson.D{
				{Key: "programId", Value: 1},
				{Key: "phase", Value: 1},
				{Key: "effectiveDate", Value: -1},
			},
			Options: options.Index(),
		},
		{
			// standalone tier lookup and listing
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "effectiveDate", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
