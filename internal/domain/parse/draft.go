// Package parse converts machine-extracted supplier invoice text into a
// structured draft of line items ready for human review.
package parse

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineType classifies an invoice line by what it bills.
type LineType string

const (
	LineTypeProduct   LineType = "product"
	LineTypeSurcharge LineType = "surcharge"
	LineTypeShipping  LineType = "shipping"
)

// UOM is the closed unit-of-measure vocabulary the pipeline understands.
// TU is a transport unit (case/crate), STUECK a discrete piece.
type UOM string

const (
	UOMKilogram UOM = "KG"
	UOMCase     UOM = "TU"
	UOMPiece    UOM = "STUECK"
)

// LineSource keeps the original text span a line was parsed from.
// Feedback matching keys on it, and reviewers use it to audit the parse.
type LineSource struct {
	Raw string `json:"raw"`
}

// InvoiceLineDraft is one parsed invoice line. Instances are rebuilt via
// update-copy (WithIssue etc.), never mutated in place, so the validator can
// be a pure recompute-and-replace step.
type InvoiceLineDraft struct {
	LineNo         int             `json:"line_no"`
	LineType       LineType        `json:"line_type"`
	ProductSKU     string          `json:"product_sku,omitempty"`
	ProductName    string          `json:"product_name,omitempty"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty"`
	Qty            decimal.Decimal `json:"qty"`
	UOM            UOM             `json:"uom"`
	UnitPriceNet   decimal.Decimal `json:"unit_price_net"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	LineTotalNet   decimal.Decimal `json:"line_total_net"`
	Confidence     float64         `json:"confidence"`
	Issues         []string        `json:"issues,omitempty"`
	Source         LineSource      `json:"source"`
}

// WithIssue returns a copy with the issue appended (deduplicated) and the
// confidence capped at cap. Confidence never increases as issues grow.
func (l InvoiceLineDraft) WithIssue(issue string, cap float64) InvoiceLineDraft {
	out := l
	out.Issues = appendIssue(l.Issues, issue)
	if cap < out.Confidence {
		out.Confidence = cap
	}
	return out
}

// HasIssue reports whether the line already carries the given issue string.
func (l InvoiceLineDraft) HasIssue(issue string) bool {
	for _, is := range l.Issues {
		if is == issue {
			return true
		}
	}
	return false
}

func appendIssue(issues []string, issue string) []string {
	for _, is := range issues {
		if is == issue {
			return issues
		}
	}
	out := make([]string, len(issues), len(issues)+1)
	copy(out, issues)
	return append(out, issue)
}

// Totals carries the document sums. Gross is always net + tax, both derived
// by the validator and never set independently.
type Totals struct {
	Net             decimal.Decimal  `json:"net"`
	Tax             decimal.Decimal  `json:"tax"`
	Gross           decimal.Decimal  `json:"gross"`
	ReportedGross   *decimal.Decimal `json:"reported_gross,omitempty"`
	VariancePercent *decimal.Decimal `json:"variance_percent,omitempty"`
}

// ParserMeta records which template produced the draft and how.
type ParserMeta struct {
	TemplateID string   `json:"template_id"`
	Version    string   `json:"version"`
	UsedOCR    bool     `json:"used_ocr"`
	Warnings   []string `json:"warnings,omitempty"`
}

// MetaField is one labeled header field a template extracted (customer
// number, delivery note, ...). All are optional per supplier.
type MetaField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// InvoiceDraft is the machine-produced interpretation of one invoice,
// distinct from the final posted record. Created fresh per parse call and
// recomputed (not mutated) by the validator after every edit.
type InvoiceDraft struct {
	Supplier    string             `json:"supplier"`
	InvoiceNo   string             `json:"invoice_no"`
	InvoiceDate string             `json:"invoice_date"`
	Currency    string             `json:"currency"`
	Totals      Totals             `json:"totals"`
	Parser      ParserMeta         `json:"parser"`
	Meta        []MetaField        `json:"meta,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
	Items       []InvoiceLineDraft `json:"items"`
}

// WithWarning returns a copy of the draft with the document-level warning
// appended, deduplicated.
func (d InvoiceDraft) WithWarning(warning string) InvoiceDraft {
	out := d
	out.Warnings = appendIssue(d.Warnings, warning)
	return out
}
