// Package ingest loads feedback snapshots from CSV exports, used to seed or
// refresh the feedback store from the review frontend's export format.
package ingest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/nortenlab/invoicedraft/internal/domain/feedback"
)

// feedbackRecord mirrors one row of the review tool's CSV export.
type feedbackRecord struct {
	ID                  string `csv:"id"`
	Supplier            string `csv:"supplier"`
	DetectedDescription string `csv:"detected_description"`
	DetectedSKU         string `csv:"detected_sku"`
	AssignedProductID   string `csv:"assigned_product_id"`
	AssignedProductSKU  string `csv:"assigned_product_sku"`
	AssignedProductName string `csv:"assigned_product_name"`
	AssignedUOM         string `csv:"assigned_uom"`
	UpdatedAt           string `csv:"updated_at"`
}

// LoadFeedbackCSV reads feedback entries from a CSV stream. Rows with an
// unparsable id are rejected, rows with no assignment are kept (the matcher
// skips them itself).
func LoadFeedbackCSV(r io.Reader) ([]feedback.Entry, error) {
	var records []feedbackRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("decoding feedback csv: %w", err)
	}

	entries := make([]feedback.Entry, 0, len(records))
	for i, rec := range records {
		entry, err := rec.toEntry()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// LoadFeedbackFile reads feedback entries from a CSV file on disk.
func LoadFeedbackFile(path string) ([]feedback.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feedback csv: %w", err)
	}
	defer f.Close()
	return LoadFeedbackCSV(f)
}

func (rec feedbackRecord) toEntry() (feedback.Entry, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return feedback.Entry{}, fmt.Errorf("invalid entry id %q: %w", rec.ID, err)
	}

	entry := feedback.Entry{
		ID:                  id,
		Supplier:            rec.Supplier,
		DetectedDescription: rec.DetectedDescription,
		DetectedSKU:         rec.DetectedSKU,
		AssignedProductSKU:  rec.AssignedProductSKU,
		AssignedProductName: rec.AssignedProductName,
		AssignedUOM:         rec.AssignedUOM,
	}

	if rec.AssignedProductID != "" {
		pid, err := uuid.Parse(rec.AssignedProductID)
		if err != nil {
			return feedback.Entry{}, fmt.Errorf("invalid product id %q: %w", rec.AssignedProductID, err)
		}
		entry.AssignedProductID = &pid
	}

	if rec.UpdatedAt != "" {
		ts, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			// The export also emits date-only stamps.
			ts, err = time.Parse("2006-01-02", rec.UpdatedAt)
			if err != nil {
				return feedback.Entry{}, fmt.Errorf("invalid timestamp %q", rec.UpdatedAt)
			}
		}
		entry.UpdatedAt = ts
	}

	return entry, nil
}
