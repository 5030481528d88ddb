// Package validate recomputes and reconciles invoice drafts: arithmetic
// consistency per line, document totals, and variance against the supplier's
// printed gross. Pure and idempotent: validating an unchanged draft twice
// yields identical totals and issue sets, in the same line order.
package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

const (
	IssueMissingSKU    = "missing product SKU"
	IssueMissingName   = "missing product name"
	IssueIllegalUnit   = "unit outside allowed vocabulary"
	IssueShippingTax   = "shipping line taxed below 19%"
	IssueReducedTax    = "non-shipping line taxed above reduced 7% rate"
	issueConfidenceCap = 0.7

	// Variance beyond this percentage against the printed gross total is
	// surfaced as a document warning; the draft stays reviewable.
	varianceWarnThreshold = 0.5
)

var hundred = decimal.NewFromInt(100)

// Revalidate returns a recomputed copy of the draft. The input is not
// mutated; line order is preserved.
func Revalidate(draft parse.InvoiceDraft) parse.InvoiceDraft {
	out := draft
	out.Items = make([]parse.InvoiceLineDraft, len(draft.Items))

	net := decimal.Zero
	tax := decimal.Zero
	for i, line := range draft.Items {
		line = revalidateLine(line)
		out.Items[i] = line
		net = net.Add(line.LineTotalNet)
		tax = tax.Add(line.LineTotalNet.Mul(line.TaxRatePercent).Div(hundred).Round(parse.DefaultPrecision))
	}

	out.Totals.Net = net
	out.Totals.Tax = tax
	out.Totals.Gross = net.Add(tax)
	out.Totals.VariancePercent = nil

	if rg := draft.Totals.ReportedGross; rg != nil && rg.IsPositive() {
		variance := out.Totals.Gross.Sub(*rg).Abs().Div(*rg).Mul(hundred).Round(parse.DefaultPrecision)
		out.Totals.VariancePercent = &variance
		if variance.GreaterThan(decimal.NewFromFloat(varianceWarnThreshold)) {
			out = out.WithWarning(fmt.Sprintf(
				"computed gross %s deviates %s%% from printed total %s",
				out.Totals.Gross.StringFixed(2), variance.StringFixed(2), rg.StringFixed(2),
			))
		}
	}
	return out
}

// revalidateLine recomputes the line total and attaches one issue per
// distinct condition so the review UI can filter by cause. The parser's own
// total loses to qty × unit price; the original figure stays visible in the
// raw source span.
func revalidateLine(line parse.InvoiceLineDraft) parse.InvoiceLineDraft {
	line.LineTotalNet = line.Qty.Mul(line.UnitPriceNet).Round(parse.DefaultPrecision)

	if line.ProductSKU == "" {
		line = line.WithIssue(IssueMissingSKU, issueConfidenceCap)
	}
	if line.ProductName == "" {
		line = line.WithIssue(IssueMissingName, issueConfidenceCap)
	}
	switch line.UOM {
	case parse.UOMKilogram, parse.UOMCase, parse.UOMPiece:
	default:
		line = line.WithIssue(IssueIllegalUnit, issueConfidenceCap)
	}

	// Domain-policy pass: catches template misclassification without
	// rejecting the line.
	nineteen := decimal.NewFromInt(19)
	seven := decimal.NewFromInt(7)
	if line.LineType == parse.LineTypeShipping && line.TaxRatePercent.LessThan(nineteen) {
		line = line.WithIssue(IssueShippingTax, issueConfidenceCap)
	}
	if line.LineType != parse.LineTypeShipping && line.TaxRatePercent.GreaterThan(seven) {
		line = line.WithIssue(IssueReducedTax, issueConfidenceCap)
	}
	return line
}
