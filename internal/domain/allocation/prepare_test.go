package allocation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

func draftLine(lineNo int, lineType parse.LineType, uom parse.UOM, qty, price, total string) parse.InvoiceLineDraft {
	return parse.InvoiceLineDraft{
		LineNo:       lineNo,
		LineType:     lineType,
		Qty:          d(qty),
		UOM:          uom,
		UnitPriceNet: d(price),
		LineTotalNet: d(total),
	}
}

func TestPrepareDraft(t *testing.T) {
	kgID := uuid.New()
	pieceID := uuid.New()

	kgLine := draftLine(1, parse.LineTypeProduct, parse.UOMKilogram, "100", "2.00", "200.00")
	kgLine.ProductID = &kgID
	pieceLine := draftLine(2, parse.LineTypeProduct, parse.UOMPiece, "12", "0.89", "10.68")
	pieceLine.ProductID = &pieceID
	surcharge := draftLine(3, parse.LineTypeSurcharge, parse.UOMKilogram, "1", "30.00", "30.00")
	shipping := draftLine(4, parse.LineTypeShipping, parse.UOMPiece, "1", "5.00", "5.00")

	prepared := PrepareDraft(parse.InvoiceDraft{Items: []parse.InvoiceLineDraft{kgLine, pieceLine, surcharge, shipping}})

	require.Len(t, prepared.Items, 2)
	assert.Empty(t, prepared.Warnings)
	assert.True(t, prepared.TotalSurchargeNet.Equal(d("30.00")))

	assert.Equal(t, kgID, prepared.Items[0].ProductID)
	assert.Equal(t, BaseKilogram, prepared.Items[0].BaseUOM)
	assert.True(t, prepared.Items[0].QtyBase.Equal(d("100")))
	assert.True(t, prepared.Items[0].BasePricePerUnit.Equal(d("2.00")))

	assert.Equal(t, pieceID, prepared.Items[1].ProductID)
	assert.Equal(t, BasePiece, prepared.Items[1].BaseUOM)
	assert.True(t, prepared.Items[1].QtyBase.Equal(d("12")))
}

func TestPrepareDraftSkipsUnassignedLines(t *testing.T) {
	prepared := PrepareDraft(parse.InvoiceDraft{Items: []parse.InvoiceLineDraft{
		draftLine(1, parse.LineTypeProduct, parse.UOMKilogram, "10", "1.50", "15.00"),
	}})

	assert.Empty(t, prepared.Items)
	require.Len(t, prepared.Warnings, 1)
	assert.Contains(t, prepared.Warnings[0], "no product assignment")
}

func TestPrepareDraftSkipsCaseWithoutFactor(t *testing.T) {
	id := uuid.New()
	line := draftLine(1, parse.LineTypeProduct, parse.UOMCase, "2", "12.00", "24.00")
	line.ProductID = &id

	prepared := PrepareDraft(parse.InvoiceDraft{Items: []parse.InvoiceLineDraft{line}})

	assert.Empty(t, prepared.Items)
	require.Len(t, prepared.Warnings, 1)
	assert.Contains(t, prepared.Warnings[0], "pieces-per-case")
}

func TestPrepareDraftEmptyDraft(t *testing.T) {
	prepared := PrepareDraft(parse.InvoiceDraft{})

	assert.Empty(t, prepared.Items)
	assert.Empty(t, prepared.Warnings)
	assert.True(t, prepared.TotalSurchargeNet.IsZero())
}
