// Package storage holds the blob store the registration workflow uses for
// attached documents. The workflow depends on the BlobStore interface only,
// so tests substitute an in-memory fake.
package storage

import (
	"context"
	"io"
)

// BlobStore stores binary documents under opaque paths and returns durable
// public URLs for them.
type BlobStore interface {
	// Upload stores the payload under path and returns a retrievable URL.
	Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
	// Delete removes the blob at path. Callers treat failures as
	// best-effort cleanup: they log and keep their original error.
	Delete(ctx context.Context, path string) error
}
