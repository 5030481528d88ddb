package parse

import (
	"strings"
)

const (
	// Confidence levels assigned at parse time. Any field-level warning caps
	// the line at warningConfidenceCap.
	confidenceWithSKU    = 0.92
	confidenceWithoutSKU = 0.78
	warningConfidenceCap = 0.7

	WarningNoLineItems       = "no line items recognized"
	WarningGenericTemplate   = "supplier not recognized, generic template applied"
	WarningMissingInvoiceNo  = "invoice number not found"
	WarningMissingDate       = "invoice date not found"
	WarningMissingGrossTotal = "printed gross total not found"
)

// Options control parser behavior outside the text itself.
type Options struct {
	// UsedOCR is set when the text came from the optical-recognition
	// fallback rather than native PDF extraction.
	UsedOCR bool
}

// ParseText runs the supplier template against raw extracted text and
// returns a draft. It never fails on document content: missing fields and
// unrecognized rows degrade into warnings on the returned draft.
func ParseText(text, supplierName string, opts Options) InvoiceDraft {
	tmpl, recognized := templateFor(supplierName)

	draft := InvoiceDraft{
		Supplier: supplierName,
		Currency: tmpl.currency,
		Parser: ParserMeta{
			TemplateID: string(tmpl.id),
			Version:    tmpl.version,
			UsedOCR:    opts.UsedOCR,
		},
	}
	if !recognized {
		draft = draft.WithWarning(WarningGenericTemplate)
	}

	lines := NormalizeLines(text)
	flat := strings.Join(lines, "\n")

	draft = extractHeader(draft, tmpl, flat)

	start, end := locateTable(tmpl, lines)
	rows := assembleRows(tmpl, lines[start:end])

	items := make([]InvoiceLineDraft, 0, len(rows))
	for _, rf := range rows {
		items = append(items, buildLine(rf))
	}
	if tmpl.postProcess != nil {
		var warnings []string
		items, warnings = tmpl.postProcess(items)
		for _, w := range warnings {
			draft = draft.WithWarning(w)
		}
	}
	for i := range items {
		items[i].LineNo = i + 1
	}
	draft.Items = items

	if len(items) == 0 {
		draft = draft.WithWarning(WarningNoLineItems)
	}
	return draft
}

// extractHeader applies the template's header and metadata patterns to the
// whole text. Every pattern is optional; misses become warnings, not errors.
func extractHeader(draft InvoiceDraft, tmpl *template, text string) InvoiceDraft {
	if m := tmpl.reInvoiceNo.FindStringSubmatch(text); m != nil {
		draft.InvoiceNo = m[1]
	} else {
		draft = draft.WithWarning(WarningMissingInvoiceNo)
	}
	if m := tmpl.reInvoiceDate.FindStringSubmatch(text); m != nil {
		draft.InvoiceDate = ToISODate(m[1])
	} else {
		draft = draft.WithWarning(WarningMissingDate)
	}
	if m := tmpl.reGrossTotal.FindStringSubmatch(text); m != nil {
		gross := ParseLocaleNumber(m[1], DefaultPrecision)
		draft.Totals.ReportedGross = &gross
	} else {
		draft = draft.WithWarning(WarningMissingGrossTotal)
	}
	for _, mp := range tmpl.meta {
		if m := mp.re.FindStringSubmatch(text); m != nil {
			draft.Meta = append(draft.Meta, MetaField{Key: mp.Key, Label: mp.Label, Value: m[1]})
		}
	}
	return draft
}

// locateTable finds the line-item region: the line after an explicit column
// header row when one exists, otherwise the first line that looks like a
// tabular row. The table ends at the first subtotal/total keyword line.
func locateTable(tmpl *template, lines []string) (start, end int) {
	start = len(lines)
	for i, line := range lines {
		if isHeaderRow(tmpl.headerVocab, line) {
			start = i + 1
			break
		}
	}
	if start == len(lines) {
		for i, line := range lines {
			if looksTabular(line) {
				start = i
				break
			}
		}
	}
	end = len(lines)
	for i := start; i < len(lines); i++ {
		if tmpl.reTableEnd.MatchString(lines[i]) {
			end = i
			break
		}
	}
	return start, end
}

// isHeaderRow counts table-column vocabulary hits; three or more words from
// the supplier's column vocabulary mark the header row.
func isHeaderRow(vocab []string, line string) bool {
	lower := strings.ToLower(FoldDiacritics(line))
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '.' || r == '-' || r == '/' || r == '|'
	})
	hits := 0
	for _, f := range fields {
		for _, v := range vocab {
			if f == v {
				hits++
				break
			}
		}
	}
	return hits >= 3
}

// looksTabular is the fallback table detector: a small leading integer, at
// least five whitespace-separated tokens, two or more of them numeric.
func looksTabular(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return false
	}
	if !reBareInteger.MatchString(fields[0]) || len(fields[0]) > 3 {
		return false
	}
	numeric := 0
	for _, f := range fields {
		if isNumericToken(f) {
			numeric++
		}
	}
	return numeric >= 2
}

func assembleRows(tmpl *template, lines []string) []rowFields {
	asm := newRowAssembler(tmpl.sanitizeToken)
	var rows []rowFields
	for _, line := range lines {
		if rf, ok := asm.feed(line); ok {
			rows = append(rows, rf)
		}
	}
	return rows
}

// buildLine turns tokenized row fields into a draft line: classification,
// tax-rate resolution and initial confidence.
func buildLine(rf rowFields) InvoiceLineDraft {
	lineType := GuessLineType(rf.Description)

	taxRate := DefaultTaxRate(lineType)
	if lineType == LineTypeShipping {
		// Domestic rule: shipping is always standard-rated, even when the
		// invoice prints something else.
		taxRate = DefaultTaxRate(LineTypeShipping)
	} else if rf.TaxRate != nil {
		taxRate = *rf.TaxRate
	}

	confidence := confidenceWithoutSKU
	if rf.SKU != "" {
		confidence = confidenceWithSKU
	}

	line := InvoiceLineDraft{
		LineType:       lineType,
		ProductSKU:     rf.SKU,
		ProductName:    rf.Description,
		Qty:            rf.Qty,
		UOM:            rf.UOM,
		UnitPriceNet:   rf.UnitPrice,
		TaxRatePercent: taxRate,
		LineTotalNet:   rf.LineTotal,
		Confidence:     confidence,
		Source:         LineSource{Raw: rf.Raw},
	}
	for _, w := range rf.Warnings {
		line = line.WithIssue(w, warningConfidenceCap)
	}
	return line
}
