package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive implements Archive using the local filesystem
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates a new local filesystem archive
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	// Ensure base path exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &LocalArchive{basePath: basePath}, nil
}

// Store archives a document and returns its metadata
func (a *LocalArchive) Store(ctx context.Context, supplier, filename, contentType string, r io.Reader) (*DocumentInfo, error) {
	docID := uuid.New()

	supplierDir := filepath.Join(a.basePath, supplierSlug(supplier))
	if err := os.MkdirAll(supplierDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create supplier directory: %w", err)
	}

	// Sanitize filename and add UUID prefix for uniqueness
	safeFilename := sanitizeFilename(filename)
	storedFilename := fmt.Sprintf("%s_%s", docID.String()[:8], safeFilename)
	filePath := filepath.Join(supplierDir, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &DocumentInfo{
		ID:          docID,
		Name:        filename,
		Supplier:    supplier,
		Size:        size,
		ContentType: contentType,
		Path:        storedFilename,
		ArchivedAt:  time.Now(),
	}

	if err := a.saveMetadata(supplier, docID, info); err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, err
	}

	return info, nil
}

// Open retrieves an archived document by its ID
func (a *LocalArchive) Open(ctx context.Context, supplier string, id uuid.UUID) (io.ReadCloser, *DocumentInfo, error) {
	info, err := a.Info(ctx, supplier, id)
	if err != nil {
		return nil, nil, err
	}

	filePath := filepath.Join(a.basePath, supplierSlug(supplier), info.Path)
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// Remove deletes a document from the archive
func (a *LocalArchive) Remove(ctx context.Context, supplier string, id uuid.UUID) error {
	info, err := a.Info(ctx, supplier, id)
	if err != nil {
		return err
	}

	filePath := filepath.Join(a.basePath, supplierSlug(supplier), info.Path)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	metaPath := filepath.Join(a.basePath, supplierSlug(supplier), ".meta", id.String()+".json")
	os.Remove(metaPath)

	return nil
}

// List returns all archived documents for a supplier
func (a *LocalArchive) List(ctx context.Context, supplier string) ([]*DocumentInfo, error) {
	metaDir := filepath.Join(a.basePath, supplierSlug(supplier), ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*DocumentInfo{}, nil
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	docs := make([]*DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		info, err := a.Info(ctx, supplier, id)
		if err != nil {
			continue
		}
		docs = append(docs, info)
	}

	return docs, nil
}

// Info returns metadata for a document without opening it
func (a *LocalArchive) Info(ctx context.Context, supplier string, id uuid.UUID) (*DocumentInfo, error) {
	metaPath := filepath.Join(a.basePath, supplierSlug(supplier), ".meta", id.String()+".json")

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info DocumentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

// saveMetadata saves document metadata to a JSON file
func (a *LocalArchive) saveMetadata(supplier string, id uuid.UUID, info *DocumentInfo) error {
	metaDir := filepath.Join(a.basePath, supplierSlug(supplier), ".meta")
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	metaPath := filepath.Join(metaDir, id.String()+".json")
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// supplierSlug turns a supplier name into a stable directory name.
func supplierSlug(supplier string) string {
	slug := strings.ToLower(strings.TrimSpace(supplier))
	slug = sanitizeFilename(slug)
	slug = strings.Join(strings.Fields(slug), "-")
	if slug == "" {
		slug = "unbekannt"
	}
	return slug
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	// Replace path separators and other dangerous characters
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
