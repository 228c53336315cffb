package service

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository" // Import repository package
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrInvalidCatalogLine = errors.New("invalid catalog line")
)

// --- Service Interface ---
type ExerciseService interface {
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error)
	ReplaceFromLine(ctx context.Context, exerciseID primitive.ObjectID, line string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	logger       *zap.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, logger *zap.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		logger:       logger,
	}
}

// GetExerciseByID retrieves a single library exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err // Propagate other repository errors
	}
	return exercise, nil
}

// ListExercises retrieves library exercises matching the filter.
func (s *exerciseService) ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	return s.exerciseRepo.List(ctx, filter)
}

// ReplaceFromLine re-parses a corrected catalog line onto an existing exercise.
// Parser rejections are reported as ErrInvalidCatalogLine wrapping the reason.
func (s *exerciseService) ReplaceFromLine(ctx context.Context, exerciseID primitive.ObjectID, line string) (*domain.Exercise, error) {
	if exerciseID == primitive.NilObjectID {
		return nil, errors.New("exercise ID is required")
	}

	parsed, err := catalog.ParseLine(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogLine, err)
	}
	parsed.ID = exerciseID

	if err := s.exerciseRepo.Replace(ctx, parsed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	s.logger.Info("exercise replaced from catalog line",
		zap.String("exerciseId", exerciseID.Hex()),
		zap.String("name", parsed.Name))
	return parsed, nil
}

// DeleteExercise removes an exercise from the library.
func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	if exerciseID == primitive.NilObjectID {
		return errors.New("exercise ID is required")
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
