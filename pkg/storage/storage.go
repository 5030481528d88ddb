// Package storage archives invoice source documents and exported review
// workbooks on disk, grouped by supplier.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// DocumentInfo contains metadata about an archived document.
type DocumentInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Supplier    string    `json:"supplier"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal archive path
	ArchivedAt  time.Time `json:"archived_at"`
}

// Archive defines the interface for document archival operations.
type Archive interface {
	// Store archives a document and returns its metadata
	Store(ctx context.Context, supplier, filename, contentType string, r io.Reader) (*DocumentInfo, error)

	// Open retrieves an archived document by its ID
	Open(ctx context.Context, supplier string, id uuid.UUID) (io.ReadCloser, *DocumentInfo, error)

	// List returns all archived documents for a supplier
	List(ctx context.Context, supplier string) ([]*DocumentInfo, error)

	// Info returns metadata for a document without opening it
	Info(ctx context.Context, supplier string, id uuid.UUID) (*DocumentInfo, error)

	// Remove deletes a document from the archive
	Remove(ctx context.Context, supplier string, id uuid.UUID) error
}
