// Package export renders parsed invoice drafts into review workbooks for the
// purchasing team.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nortenlab/invoicedraft/internal/domain/feedback"
	"github.com/nortenlab/invoicedraft/internal/domain/parse"
	"github.com/nortenlab/invoicedraft/pkg/money"
)

const (
	sheetLines       = "Positionen"
	sheetHeader      = "Kopfdaten"
	sheetSuggestions = "Vorschläge"
)

var lineColumns = []string{
	"Pos", "Typ", "SKU", "Bezeichnung", "Menge", "Einheit",
	"Einzelpreis netto", "MwSt %", "Summe netto", "Konfidenz", "Hinweise",
}

var suggestionColumns = []string{
	"Pos", "Bezeichnung laut Beleg", "Vorschlag SKU", "Vorschlag Bezeichnung", "Relevanz",
}

// LineSuggestion pairs one unmatched draft line with ranked feedback
// candidates for the reviewer to pick from.
type LineSuggestion struct {
	LineNo      int
	Description string
	Candidates  []feedback.Suggestion
}

// WriteReviewWorkbook writes the draft as an xlsx file for human review.
// Lines keep their parse order; issues and confidence stay visible so
// reviewers can triage low-trust rows first. suggestions may be nil; with
// candidates present they go on their own sheet.
func WriteReviewWorkbook(draft parse.InvoiceDraft, suggestions []LineSuggestion, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeHeaderSheet(f, draft); err != nil {
		return err
	}
	if err := writeLineSheet(f, draft); err != nil {
		return err
	}
	if err := writeSuggestionSheet(f, suggestions); err != nil {
		return err
	}

	// Drop the default sheet created by excelize.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeHeaderSheet(f *excelize.File, draft parse.InvoiceDraft) error {
	if _, err := f.NewSheet(sheetHeader); err != nil {
		return fmt.Errorf("creating header sheet: %w", err)
	}

	rows := [][]any{
		{"Lieferant", draft.Supplier},
		{"Rechnungsnummer", draft.InvoiceNo},
		{"Rechnungsdatum", draft.InvoiceDate},
		{"Währung", draft.Currency},
		{"Netto", displayAmount(draft.Totals.Net, draft.Currency)},
		{"Steuer", displayAmount(draft.Totals.Tax, draft.Currency)},
		{"Brutto berechnet", displayAmount(draft.Totals.Gross, draft.Currency)},
	}
	if draft.Totals.ReportedGross != nil {
		rows = append(rows, []any{"Brutto laut Beleg", displayAmount(*draft.Totals.ReportedGross, draft.Currency)})
	}
	if draft.Totals.VariancePercent != nil {
		rows = append(rows, []any{"Abweichung %", draft.Totals.VariancePercent.String()})
	}
	for _, m := range draft.Meta {
		rows = append(rows, []any{m.Label, m.Value})
	}
	for _, w := range draft.Warnings {
		rows = append(rows, []any{"Warnung", w})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetHeader, cell, &row); err != nil {
			return fmt.Errorf("writing header row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeLineSheet(f *excelize.File, draft parse.InvoiceDraft) error {
	if _, err := f.NewSheet(sheetLines); err != nil {
		return fmt.Errorf("creating line sheet: %w", err)
	}

	header := make([]any, len(lineColumns))
	for i, c := range lineColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetLines, "A1", &header); err != nil {
		return fmt.Errorf("writing column header: %w", err)
	}

	for i, it := range draft.Items {
		row := []any{
			it.LineNo,
			string(it.LineType),
			it.ProductSKU,
			it.ProductName,
			it.Qty.InexactFloat64(),
			string(it.UOM),
			it.UnitPriceNet.InexactFloat64(),
			it.TaxRatePercent.InexactFloat64(),
			it.LineTotalNet.InexactFloat64(),
			it.Confidence,
			strings.Join(it.Issues, "; "),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetLines, cell, &row); err != nil {
			return fmt.Errorf("writing line %d: %w", it.LineNo, err)
		}
	}
	return nil
}

func writeSuggestionSheet(f *excelize.File, suggestions []LineSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	if _, err := f.NewSheet(sheetSuggestions); err != nil {
		return fmt.Errorf("creating suggestion sheet: %w", err)
	}

	header := make([]any, len(suggestionColumns))
	for i, c := range suggestionColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetSuggestions, "A1", &header); err != nil {
		return fmt.Errorf("writing suggestion header: %w", err)
	}

	rowNo := 2
	for _, ls := range suggestions {
		for _, cand := range ls.Candidates {
			row := []any{
				ls.LineNo,
				ls.Description,
				cand.Entry.AssignedProductSKU,
				cand.Entry.AssignedProductName,
				cand.Score,
			}
			cell, err := excelize.CoordinatesToCellName(1, rowNo)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheetSuggestions, cell, &row); err != nil {
				return fmt.Errorf("writing suggestion row %d: %w", rowNo, err)
			}
			rowNo++
		}
	}
	return nil
}

func displayAmount(d decimal.Decimal, currency string) string {
	return money.NewFromDecimal(d, currency).Display()
}
