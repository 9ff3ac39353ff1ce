// internal/repository/mongo/program_repo.go
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

const programCollectionName = "programs"

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new Program repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.UserID == primitive.NilObjectID || program.Name == "" {
		return primitive.NilObjectID, errors.New("program requires userId and name")
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

// GetByID retrieves a single program by its ID.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

// GetByUserID retrieves all programs of a user, newest first.
func (r *mongoProgramRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var programs []domain.Program
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// GetActiveByUserID retrieves the user's active program. If several are
// flagged active the most recently updated one wins.
func (r *mongoProgramRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return r.findOne(ctx, bson.M{"userId": userID, "active": true}, opts)
}

func (r *mongoProgramRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Program, error) {
	var program domain.Program
	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&program)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&program)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// Update persists name, description, activation and phase changes.
func (r *mongoProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	if program.ID == primitive.NilObjectID {
		return errors.New("program ID is required for update")
	}

	program.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"name":         program.Name,
			"description":  program.Description,
			"active":       program.Active,
			"currentPhase": program.CurrentPhase,
			"phaseCount":   program.PhaseCount,
			"updatedAt":    program.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": program.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateOtherProgramsForUser keeps at most one active program per user.
func (r *mongoProgramRepository) DeactivateOtherProgramsForUser(ctx context.Context, userID, excludeProgramID primitive.ObjectID) error {
	filter := bson.M{
		"userId": userID,
		"active": true,
		"_id":    bson.M{"$ne": excludeProgramID},
	}
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureProgramIndexes creates necessary indexes. Call during startup.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// resolver looks up the active program of a user
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
