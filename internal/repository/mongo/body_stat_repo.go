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
	bodyStatCollectionName      = "body_stats"
	progressPhotoCollectionName = "progress_photos"
)

type mongoBodyStatRepository struct {
	stats  *mongo.Collection
	photos *mongo.Collection
}

// NewMongoBodyStatRepository creates a repository for measurements and progress photos.
func NewMongoBodyStatRepository(db *mongo.Database) repository.BodyStatRepository {
	return &mongoBodyStatRepository{
		stats:  db.Collection(bodyStatCollectionName),
		photos: db.Collection(progressPhotoCollectionName),
	}
}

func (r *mongoBodyStatRepository) Create(ctx context.Context, stat *domain.BodyStat) (primitive.ObjectID, error) {
	if stat.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("body stat requires userId")
	}
	stat.ID = primitive.NewObjectID()
	stat.CreatedAt = time.Now().UTC()
	if stat.RecordedAt.IsZero() {
		stat.RecordedAt = stat.CreatedAt
	}

	result, err := r.stats.InsertOne(ctx, stat)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoBodyStatRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyStat, error) {
	var stat domain.BodyStat
	err := r.stats.FindOne(ctx, bson.M{"_id": id}).Decode(&stat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &stat, nil
}

func (r *mongoBodyStatRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.BodyStat, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}})

	cursor, err := r.stats.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []domain.BodyStat
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// CreatePhoto inserts photo metadata after the object has landed in S3.
func (r *mongoBodyStatRepository) CreatePhoto(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error) {
	if photo.UserID == primitive.NilObjectID || photo.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("progress photo requires userId and object key")
	}
	photo.ID = primitive.NewObjectID()
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}

	result, err := r.photos.InsertOne(ctx, photo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoBodyStatRepository) GetPhotosByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := r.photos.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var photos []domain.ProgressPhoto
	if err = cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// EnsureBodyStatIndexes creates necessary indexes. Call during startup.
func EnsureBodyStatIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "recordedAt", Value: -1}},
		Options: options.Index(),
	})
	return err
}

// EnsureProgressPhotoIndexes creates necessary indexes. Call during startup.
func EnsureProgressPhotoIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "uploadedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// a confirmed upload is recorded once
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
