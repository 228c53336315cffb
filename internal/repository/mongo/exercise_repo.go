package mongo

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// CreateMany inserts a batch of parsed exercises in one round trip.
// Insertion is unordered so one bad document does not stop the rest.
func (r *mongoExerciseRepository) CreateMany(ctx context.Context, exercises []*domain.Exercise) ([]primitive.ObjectID, error) {
	if len(exercises) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(exercises))
	for i, ex := range exercises {
		ex.ID = primitive.NewObjectID()
		ex.CreatedAt = now
		ex.UpdatedAt = now
		docs[i] = ex
	}

	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrInsertFailed, err)
	}

	ids := make([]primitive.ObjectID, 0, len(result.InsertedIDs))
	for _, raw := range result.InsertedIDs {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			return nil, errors.New("failed to convert inserted ID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// List retrieves library exercises matching the filter, sorted by name.
func (r *mongoExerciseRepository) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, exerciseQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// exerciseQuery translates a filter into a bson query document.
func exerciseQuery(f repository.ExerciseFilter) bson.M {
	q := bson.M{}
	if f.BodyRegion != "" {
		q["bodyRegion"] = f.BodyRegion
	}
	if f.Environment != "" {
		q["environment"] = f.Environment
	}
	if f.ImpactLevel != "" {
		q["impactLevel"] = f.ImpactLevel
	}
	if f.GoalTag != "" {
		q["goalTags"] = f.GoalTag // matches array elements
	}
	if f.Modality != "" {
		q["modality"] = f.Modality
	}
	if f.Difficulty != "" {
		q["difficulty"] = f.Difficulty
	}
	if f.NameSearch != "" {
		q["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.NameSearch), Options: "i"}
	}
	if !f.ImportID.IsZero() {
		q["importId"] = f.ImportID
	}
	return q
}

// Replace overwrites the parsed fields of an existing exercise.
// ID, ImportID and CreatedAt are preserved; UpdatedAt is refreshed.
func (r *mongoExerciseRepository) Replace(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}

	existing, err := r.GetByID(ctx, exercise.ID)
	if err != nil {
		return err
	}
	exercise.ImportID = existing.ImportID
	exercise.CreatedAt = existing.CreatedAt
	exercise.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": exercise.ID}, exercise)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrUpdateFailed, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound // Deleted between read and write
	}
	return nil
}

// Delete removes an exercise from the library.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDeleteFailed, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByImportID removes every exercise produced by one import run.
func (r *mongoExerciseRepository) DeleteByImportID(ctx context.Context, importID primitive.ObjectID) (int64, error) {
	if importID == primitive.NilObjectID {
		return 0, errors.New("import ID is required")
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{"importId": importID})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", repository.ErrDeleteFailed, err)
	}
	return result.DeletedCount, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Library browsing filters
			Keys:    bson.D{{Key: "bodyRegion", Value: 1}, {Key: "environment", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("exercise_browse"),
		},
		{
			// Multikey index over goal tags
			Keys:    bson.D{{Key: "goalTags", Value: 1}},
			Options: options.Index(),
		},
		{
			// Exercises produced by one import run
			Keys:    bson.D{{Key: "importId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
