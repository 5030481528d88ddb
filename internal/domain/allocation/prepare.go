package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

// Prepared is a validated draft broken down for allocation: the product
// lines converted to base units plus the pooled surcharge total. Lines that
// could not be prepared are reported as warnings, never errors.
type Prepared struct {
	Items             []PreparedItem
	TotalSurchargeNet decimal.Decimal
	Warnings          []string
}

// PrepareDraft converts a reviewed draft's product lines into prepared
// items and pools its surcharge lines. Only lines with a concrete product
// assignment can feed price history; unassigned or non-convertible lines
// are skipped with a warning. The base unit is taken from the billed unit
// (KG tracks per kg, STUECK and TU per piece).
func PrepareDraft(draft parse.InvoiceDraft) Prepared {
	out := Prepared{TotalSurchargeNet: decimal.Zero}

	for _, line := range draft.Items {
		switch line.LineType {
		case parse.LineTypeSurcharge:
			out.TotalSurchargeNet = out.TotalSurchargeNet.Add(line.LineTotalNet)
		case parse.LineTypeProduct:
			if line.ProductID == nil {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("line %d has no product assignment, skipped", line.LineNo))
				continue
			}
			product := Product{ID: *line.ProductID, BaseUOM: baseForUOM(line.UOM)}
			conv := Convert(product, line.UOM, line.Qty, line.UnitPriceNet)
			if !conv.Convertible {
				out.Warnings = append(out.Warnings, conv.Warnings...)
				continue
			}
			out.Items = append(out.Items, PreparedItem{
				ProductID:        product.ID,
				BaseUOM:          product.BaseUOM,
				QtyBase:          conv.QtyBase,
				BasePricePerUnit: conv.BasePricePerUnit,
			})
		}
	}
	return out
}

// baseForUOM maps a billed unit to the base unit its cost is tracked in.
// Without product master data a TU line has no pieces-per-case factor; the
// conversion reports it and the line is skipped.
func baseForUOM(uom parse.UOM) BaseUOM {
	if uom == parse.UOMKilogram {
		return BaseKilogram
	}
	return BasePiece
}
