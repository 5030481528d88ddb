// Package feedback reuses previously confirmed manual corrections to upgrade
// freshly parsed invoice lines with product assignments.
package feedback

import (
	"time"

	"github.com/google/uuid"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

// Entry is one previously confirmed correction: what the parser detected and
// what a reviewer assigned. Owned by the persistence layer; the matcher only
// reads a snapshot per invocation.
type Entry struct {
	ID                  uuid.UUID
	Supplier            string
	DetectedDescription string
	DetectedSKU         string
	AssignedProductID   *uuid.UUID
	AssignedProductSKU  string
	AssignedProductName string
	AssignedUOM         string
	UpdatedAt           time.Time
}

// hasAssignment reports whether the entry carries a concrete product
// assignment, preferred when several entries share a key.
func (e *Entry) hasAssignment() bool {
	return e.AssignedProductID != nil
}

// apply rewrites the fields the entry actually specifies onto the line.
// Returns the updated line and whether anything observable changed.
func (e *Entry) apply(line parse.InvoiceLineDraft) (parse.InvoiceLineDraft, bool) {
	changed := false
	if e.AssignedProductID != nil {
		if line.ProductID == nil || *line.ProductID != *e.AssignedProductID {
			id := *e.AssignedProductID
			line.ProductID = &id
			changed = true
		}
	}
	if e.AssignedProductSKU != "" && line.ProductSKU != e.AssignedProductSKU {
		line.ProductSKU = e.AssignedProductSKU
		changed = true
	}
	if e.AssignedProductName != "" && line.ProductName != e.AssignedProductName {
		line.ProductName = e.AssignedProductName
		changed = true
	}
	if e.AssignedUOM != "" && string(line.UOM) != e.AssignedUOM {
		line.UOM = parse.UOM(e.AssignedUOM)
		changed = true
	}
	return line, changed
}
