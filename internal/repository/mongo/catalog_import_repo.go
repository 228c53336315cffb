package mongo

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const catalogImportCollectionName = "catalog_imports"

// mongoCatalogImportRepository implements repository.CatalogImportRepository
type mongoCatalogImportRepository struct {
	collection *mongo.Collection
}

// NewMongoCatalogImportRepository creates a new CatalogImport repository backed by MongoDB.
func NewMongoCatalogImportRepository(db *mongo.Database) repository.CatalogImportRepository {
	return &mongoCatalogImportRepository{
		collection: db.Collection(catalogImportCollectionName),
	}
}

// Create inserts import run metadata. The caller may pre-assign the ID so
// exercises can reference the import before it is written.
func (r *mongoCatalogImportRepository) Create(ctx context.Context, imp *domain.CatalogImport) (primitive.ObjectID, error) {
	if imp.ImportedBy == primitive.NilObjectID || imp.Source == "" {
		return primitive.NilObjectID, errors.New("catalog import requires importedBy and source")
	}
	if imp.ID == primitive.NilObjectID {
		imp.ID = primitive.NewObjectID()
	}
	if imp.Rejected == nil {
		imp.Rejected = []domain.RejectedLine{}
	}

	result, err := r.collection.InsertOne(ctx, imp)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves import metadata by its ID.
func (r *mongoCatalogImportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CatalogImport, error) {
	var imp domain.CatalogImport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&imp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &imp, nil
}

// ListRecent returns the latest import runs, newest first.
func (r *mongoCatalogImportRepository) ListRecent(ctx context.Context, limit int64) ([]domain.CatalogImport, error) {
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"rejected": 0}) // Rejected lines can be large; fetch them via GetByID

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	imports := []domain.CatalogImport{}
	if err = cursor.All(ctx, &imports); err != nil {
		return nil, err
	}
	return imports, nil
}

// EnsureCatalogImportIndexes creates necessary indexes for the catalog_imports collection.
func EnsureCatalogImportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "startedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "importedBy", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
