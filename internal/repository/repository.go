package repository

import (
	"alcyxob/fitness-catalog/internal/domain" // Import our defined domain models
	"context"                                 // Standard for request-scoped deadlines, cancellation signals, etc.

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrInsertFailed = RepositoryError("insert failed")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// DefaultListLimit caps list queries that do not set their own limit.
const DefaultListLimit = 200

// ExerciseFilter narrows an exercise library listing. Zero values mean "any".
type ExerciseFilter struct {
	BodyRegion  domain.BodyRegion
	Environment domain.Environment
	ImpactLevel domain.ImpactLevel
	GoalTag     string
	Modality    string
	Difficulty  string
	NameSearch  string // case-insensitive substring of the exercise name
	ImportID    primitive.ObjectID
	Limit       int64
}

// ExerciseRepository defines the interface for interacting with exercise library data.
type ExerciseRepository interface {
	// CreateMany inserts parsed records, stamping IDs and timestamps on them.
	CreateMany(ctx context.Context, exercises []*domain.Exercise) ([]primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	// Replace overwrites every parsed field of an existing record, keeping ID, ImportID and CreatedAt.
	Replace(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByImportID removes every exercise tagged with the import and reports how many.
	DeleteByImportID(ctx context.Context, importID primitive.ObjectID) (int64, error)
}

// CatalogImportRepository defines the interface for interacting with import run metadata.
type CatalogImportRepository interface {
	Create(ctx context.Context, imp *domain.CatalogImport) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CatalogImport, error)
	ListRecent(ctx context.Context, limit int64) ([]domain.CatalogImport, error)
}
