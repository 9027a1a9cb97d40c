// Package storage contains media storage abstractions for uploaded images.
// Backends: the local filesystem (default) and S3-compatible object stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"goout/internal/config"
)

var (
	// ErrObjectNotFound is returned by Get and Delete for unknown keys.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidKey rejects keys that would escape the storage root.
	ErrInvalidKey = errors.New("invalid object key")
	// ErrPresignUnsupported is returned by backends without signed URLs.
	ErrPresignUnsupported = errors.New("presigned urls are not supported by this backend")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the media store used for listing images.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New builds the backend selected by cfg.Driver.
func New(cfg config.MediaConfig) (Storage, error) {
	switch cfg.Driver {
	case "", config.MediaDriverLocal:
		return NewLocal(cfg.Root)
	case config.MediaDriverMinIO:
		return NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}
