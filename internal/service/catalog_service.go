package service

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository"
	"alcyxob/fitness-catalog/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrEmptyCatalog          = errors.New("catalog contains no exercise lines")
	ErrCatalogTooLarge       = errors.New("catalog exceeds the configured size limit")
	ErrImportNotFound        = errors.New("catalog import not found")
	ErrInvalidContentType    = errors.New("catalog uploads must be text files")
	ErrInvalidObjectKey      = errors.New("object key does not belong to this importer")
	ErrCatalogObjectNotFound = errors.New("uploaded catalog not found in storage")
	ErrUploadURLError        = errors.New("failed to generate upload URL")
)

// MaxCatalogBytes bounds how much of an uploaded catalog is read.
const MaxCatalogBytes = 4 << 20

const catalogKeyPrefix = "catalogs"

// BatchResult is the parse outcome of a whole catalog text, in line order.
type BatchResult struct {
	Results  []catalog.LineResult
	Accepted int
	Rejected int
}

// Exercises returns the accepted records in line order.
func (b *BatchResult) Exercises() []*domain.Exercise {
	out := make([]*domain.Exercise, 0, b.Accepted)
	for _, r := range b.Results {
		if r.Accepted() {
			out = append(out, r.Exercise)
		}
	}
	return out
}

// RejectedLines returns the rejected lines with their reasons, in line order.
func (b *BatchResult) RejectedLines() []domain.RejectedLine {
	out := make([]domain.RejectedLine, 0, b.Rejected)
	for _, r := range b.Results {
		if !r.Accepted() {
			out = append(out, domain.RejectedLine{
				LineNumber: r.LineNumber,
				Line:       r.Line,
				Reason:     r.Err.Error(),
			})
		}
	}
	return out
}

// ImportRequest describes one catalog import.
type ImportRequest struct {
	ImportedBy primitive.ObjectID
	Source     domain.ImportSource
	ObjectKey  string // set when Source is storage
	Text       string
}

// UploadURLResponse is returned when a curator asks to upload a catalog file.
type UploadURLResponse struct {
	UploadURL string
	ObjectKey string
}

// --- Service Interface ---
type CatalogService interface {
	Preview(ctx context.Context, text string) (*BatchResult, error)
	Import(ctx context.Context, req ImportRequest) (*domain.CatalogImport, error)
	RequestUploadURL(ctx context.Context, importerID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ImportFromStorage(ctx context.Context, importerID primitive.ObjectID, objectKey string) (*domain.CatalogImport, error)
	GetImport(ctx context.Context, importID primitive.ObjectID) (*domain.CatalogImport, error)
	ListImports(ctx context.Context, limit int64) ([]domain.CatalogImport, error)
}

// CatalogOptions tunes batch parsing.
type CatalogOptions struct {
	Workers  int
	MaxLines int
}

// --- Service Implementation ---

// catalogService implements the CatalogService interface.
type catalogService struct {
	exerciseRepo repository.ExerciseRepository
	importRepo   repository.CatalogImportRepository
	fileStorage  storage.FileStorage
	opts         CatalogOptions
	logger       *zap.Logger
}

// NewCatalogService creates a new instance of catalogService.
// fileStorage may be nil when uploads are not configured (e.g. the CLI).
func NewCatalogService(
	exerciseRepo repository.ExerciseRepository,
	importRepo repository.CatalogImportRepository,
	fileStorage storage.FileStorage,
	opts CatalogOptions,
	logger *zap.Logger,
) CatalogService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &catalogService{
		exerciseRepo: exerciseRepo,
		importRepo:   importRepo,
		fileStorage:  fileStorage,
		opts:         opts,
		logger:       logger,
	}
}

// Preview parses a catalog without persisting anything. Lines are split into
// contiguous chunks parsed concurrently; each result lands at its line's index.
func (s *catalogService) Preview(ctx context.Context, text string) (*BatchResult, error) {
	lines := catalog.SplitCatalog(text)
	if len(lines) == 0 {
		return nil, ErrEmptyCatalog
	}
	if s.opts.MaxLines > 0 && len(lines) > s.opts.MaxLines {
		return nil, fmt.Errorf("%w: %d lines, limit %d", ErrCatalogTooLarge, len(lines), s.opts.MaxLines)
	}

	results := make([]catalog.LineResult, len(lines))
	chunk := (len(lines) + s.opts.Workers - 1) / s.opts.Workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(lines); start += chunk {
		end := min(start+chunk, len(lines))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = catalog.Parse(lines[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &BatchResult{Results: results}
	for _, r := range results {
		if r.Accepted() {
			batch.Accepted++
		} else {
			batch.Rejected++
		}
	}
	return batch, nil
}

// Import parses a catalog, stores the accepted exercises and records the run.
// Rejected lines do not fail the import; they are kept on the import record.
func (s *catalogService) Import(ctx context.Context, req ImportRequest) (*domain.CatalogImport, error) {
	if req.ImportedBy == primitive.NilObjectID {
		return nil, errors.New("importer ID is required")
	}
	if req.Source == "" {
		req.Source = domain.ImportSourceInline
	}
	startedAt := time.Now().UTC()

	batch, err := s.Preview(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	imp := &domain.CatalogImport{
		ID:          primitive.NewObjectID(),
		ImportedBy:  req.ImportedBy,
		Source:      req.Source,
		S3ObjectKey: req.ObjectKey,
		TotalLines:  len(batch.Results),
		Accepted:    batch.Accepted,
		Rejected:    batch.RejectedLines(),
		StartedAt:   startedAt,
	}

	for _, rej := range imp.Rejected {
		s.logger.Warn("catalog line rejected",
			zap.String("importId", imp.ID.Hex()),
			zap.Int("line", rej.LineNumber),
			zap.String("reason", rej.Reason))
	}

	exercises := batch.Exercises()
	for _, ex := range exercises {
		ex.ImportID = imp.ID
	}
	if len(exercises) > 0 {
		if _, err := s.exerciseRepo.CreateMany(ctx, exercises); err != nil {
			// Unordered inserts may have stored part of the batch.
			s.discardImportedExercises(ctx, imp.ID)
			return nil, fmt.Errorf("store exercises: %w", err)
		}
	}

	imp.CompletedAt = time.Now().UTC()
	if _, err := s.importRepo.Create(ctx, imp); err != nil {
		s.discardImportedExercises(ctx, imp.ID)
		return nil, fmt.Errorf("store import record: %w", err)
	}

	s.logger.Info("catalog imported",
		zap.String("importId", imp.ID.Hex()),
		zap.String("source", string(imp.Source)),
		zap.Int("lines", imp.TotalLines),
		zap.Int("accepted", imp.Accepted),
		zap.Int("rejected", len(imp.Rejected)))
	return imp, nil
}

// discardImportedExercises removes exercises tagged with an import that was
// never recorded, so no exercise references a missing import.
func (s *catalogService) discardImportedExercises(ctx context.Context, importID primitive.ObjectID) {
	// Runs even when the failure was a cancelled request context.
	deleted, err := s.exerciseRepo.DeleteByImportID(context.WithoutCancel(ctx), importID)
	if err != nil {
		s.logger.Error("failed to discard exercises of failed import",
			zap.String("importId", importID.Hex()),
			zap.Error(err))
		return
	}
	s.logger.Warn("discarded exercises of failed import",
		zap.String("importId", importID.Hex()),
		zap.Int64("deleted", deleted))
}

// RequestUploadURL hands out a presigned PUT URL for a catalog text file.
func (s *catalogService) RequestUploadURL(ctx context.Context, importerID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if importerID == primitive.NilObjectID {
		return nil, errors.New("importer ID is required")
	}
	if s.fileStorage == nil {
		return nil, ErrUploadURLError
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "text/") {
		return nil, ErrInvalidContentType
	}

	objectKey := path.Join(catalogKeyPrefix, importerID.Hex(), uuid.NewString()+".txt")

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ImportFromStorage imports a catalog file previously uploaded by the same importer
// and removes the file once the import is recorded.
func (s *catalogService) ImportFromStorage(ctx context.Context, importerID primitive.ObjectID, objectKey string) (*domain.CatalogImport, error) {
	if importerID == primitive.NilObjectID {
		return nil, errors.New("importer ID is required")
	}
	objectKey = path.Clean(objectKey)
	if !strings.HasPrefix(objectKey, path.Join(catalogKeyPrefix, importerID.Hex())+"/") {
		return nil, ErrInvalidObjectKey
	}
	if s.fileStorage == nil {
		return nil, ErrCatalogObjectNotFound
	}

	body, err := s.fileStorage.GetObject(ctx, objectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrCatalogObjectNotFound
		}
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, MaxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", objectKey, err)
	}
	if len(raw) > MaxCatalogBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrCatalogTooLarge, MaxCatalogBytes)
	}

	imp, err := s.Import(ctx, ImportRequest{
		ImportedBy: importerID,
		Source:     domain.ImportSourceStorage,
		ObjectKey:  objectKey,
		Text:       string(raw),
	})
	if err != nil {
		return nil, err
	}

	// The import record keeps the outcome; the uploaded file is no longer needed.
	if err := s.fileStorage.DeleteObject(ctx, objectKey); err != nil {
		s.logger.Warn("failed to delete imported catalog object",
			zap.String("importId", imp.ID.Hex()),
			zap.String("key", objectKey),
			zap.Error(err))
	}
	return imp, nil
}

// GetImport retrieves one import run including its rejected lines.
func (s *catalogService) GetImport(ctx context.Context, importID primitive.ObjectID) (*domain.CatalogImport, error) {
	imp, err := s.importRepo.GetByID(ctx, importID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrImportNotFound
		}
		return nil, err
	}
	return imp, nil
}

// ListImports returns recent import runs, newest first.
func (s *catalogService) ListImports(ctx context.Context, limit int64) ([]domain.CatalogImport, error) {
	return s.importRepo.ListRecent(ctx, limit)
}
