// Package storage holds uploaded evidence and policy documents.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
	ErrInvalidToken = errors.New("invalid or expired file token")
)

type FileStorage interface {
	// Upload stores the content at path and returns the cleaned key.
	Upload(ctx context.Context, file io.Reader, path, contentType string) (string, error)
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete is idempotent; deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
	// GetURL returns a URL that grants read access to path until expiry elapses.
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// URLVerifier validates tokens minted by GetURL.
type URLVerifier interface {
	Verify(path, token string) error
}
