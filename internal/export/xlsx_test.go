package export

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nortenlab/invoicedraft/internal/domain/feedback"
	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

func sampleDraft() parse.InvoiceDraft {
	gross := decimal.RequireFromString("246.10")
	return parse.InvoiceDraft{
		Supplier:    "Frischdienst Hartmann",
		InvoiceNo:   "88123",
		InvoiceDate: "2024-03-15",
		Currency:    "EUR",
		Totals: parse.Totals{
			Net:           decimal.RequireFromString("210.68"),
			Tax:           decimal.RequireFromString("14.75"),
			Gross:         decimal.RequireFromString("225.43"),
			ReportedGross: &gross,
		},
		Warnings: []string{"printed gross total not found"},
		Items: []parse.InvoiceLineDraft{
			{
				LineNo:         1,
				LineType:       parse.LineTypeProduct,
				ProductSKU:     "4711",
				ProductName:    "Schweineschulter",
				Qty:            decimal.NewFromInt(100),
				UOM:            parse.UOMKilogram,
				UnitPriceNet:   decimal.RequireFromString("2.00"),
				TaxRatePercent: decimal.NewFromInt(7),
				LineTotalNet:   decimal.NewFromInt(200),
				Confidence:     0.92,
				Issues:         []string{"manually assigned"},
			},
		},
	}
}

func TestWriteReviewWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.xlsx")

	require.NoError(t, WriteReviewWorkbook(sampleDraft(), nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Positionen")
	assert.Contains(t, f.GetSheetList(), "Kopfdaten")
	assert.NotContains(t, f.GetSheetList(), "Vorschläge")

	sku, err := f.GetCellValue("Positionen", "C2")
	require.NoError(t, err)
	assert.Equal(t, "4711", sku)

	name, err := f.GetCellValue("Positionen", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Schweineschulter", name)

	issues, err := f.GetCellValue("Positionen", "K2")
	require.NoError(t, err)
	assert.Equal(t, "manually assigned", issues)

	invoiceNo, err := f.GetCellValue("Kopfdaten", "B2")
	require.NoError(t, err)
	assert.Equal(t, "88123", invoiceNo)
}

func TestWriteReviewWorkbookSuggestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.xlsx")
	suggestions := []LineSuggestion{
		{
			LineNo:      2,
			Description: "Rinderhack 500g",
			Candidates: []feedback.Suggestion{
				{
					Entry: &feedback.Entry{
						AssignedProductSKU:  "P-200",
						AssignedProductName: "Rinderhackfleisch",
					},
					Score: 1.4,
				},
			},
		},
	}

	require.NoError(t, WriteReviewWorkbook(sampleDraft(), suggestions, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Vorschläge")

	sku, err := f.GetCellValue("Vorschläge", "C2")
	require.NoError(t, err)
	assert.Equal(t, "P-200", sku)

	name, err := f.GetCellValue("Vorschläge", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Rinderhackfleisch", name)
}

func TestWriteReviewWorkbookBadPath(t *testing.T) {
	err := WriteReviewWorkbook(sampleDraft(), nil, "/nonexistent/dir/draft.xlsx")
	assert.Error(t, err)
}
