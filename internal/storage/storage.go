package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
// Catalog files are uploaded by curators through a presigned URL and read back
// by the importer.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GetObject opens an object for reading. The caller must close the reader.
	GetObject(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// Error constants for storage layer
var (
	ErrObjectNotFound = errors.New("object not found in storage")
)
