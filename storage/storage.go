package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned by Get when nothing is stored at the path
var ErrObjectNotFound = errors.New("object not found")

// Storage interface for blob operations keyed by path
type Storage interface {
	// Put stores data at the given path, replacing any existing object
	Put(ctx context.Context, objectPath string, data io.Reader, size int64, contentType string) error

	// Get retrieves the object at the path
	Get(ctx context.Context, objectPath string) (io.ReadCloser, error)

	// Delete removes the object at the path; deleting a missing object is not an error
	Delete(ctx context.Context, objectPath string) error

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	S3Endpoint   string // Optional, for MinIO and other S3-compatible servers
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// DocumentPath builds the object path for a case document:
// users/{owner}/cases/{case}/{document}/{filename}
func DocumentPath(ownerID, caseID, documentID uuid.UUID, filename string) string {
	return path.Join(
		"users", ownerID.String(),
		"cases", caseID.String(),
		documentID.String(),
		sanitizeFilename(filename),
	)
}

// sanitizeFilename keeps the object key a single path segment
func sanitizeFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
