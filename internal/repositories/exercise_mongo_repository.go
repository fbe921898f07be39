package repositories

import (
	"context"
	"fmt"
	"time"

	"exercisetracker/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExercisesCollection is the MongoDB collection holding exercises.
const ExercisesCollection = "exercises"

// MongoExerciseRepository is a MongoDB implementation of ExerciseRepository.
type MongoExerciseRepository struct {
	coll *mongo.Collection
}

// NewMongoExerciseRepository creates a new instance of MongoExerciseRepository.
func NewMongoExerciseRepository(db *mongo.Database) *MongoExerciseRepository {
	return &MongoExerciseRepository{
		coll: db.Collection(ExercisesCollection),
	}
}

// EnsureIndexes creates the compound index used by log queries.
func (r *MongoExerciseRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create exercise index: %w", err)
	}
	return nil
}

// Create inserts a new exercise document.
func (r *MongoExerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	if exercise.ID == "" {
		exercise.ID = primitive.NewObjectID().Hex()
	}
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now().UTC()
	}
	if exercise.Date.IsZero() {
		exercise.Date = exercise.CreatedAt
	}
	exercise.Date = exercise.Date.UTC()
	if _, err := r.coll.InsertOne(ctx, exercise); err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	return nil
}

// FindByUser retrieves the user's exercises matching the filter.
func (r *MongoExerciseRepository) FindByUser(ctx context.Context, userID string, filter models.LogFilter) ([]models.Exercise, error) {
	query := bson.M{"userId": userID}
	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = filter.From.UTC()
	}
	if filter.To != nil {
		dateRange["$lte"] = filter.To.UTC()
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find exercises for user %s: %w", userID, err)
	}
	exercises := []models.Exercise{}
	if err := cursor.All(ctx, &exercises); err != nil {
		return nil, fmt.Errorf("failed to decode exercises for user %s: %w", userID, err)
	}
	return exercises, nil
}
