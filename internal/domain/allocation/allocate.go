package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

// Mode selects how a pooled surcharge is distributed over product lines.
type Mode string

const (
	ModePerKg    Mode = "per_kg"
	ModePerPiece Mode = "per_piece"
	ModeNone     Mode = "none"
)

// Share is the per-base-unit surcharge assigned to one prepared item.
type Share struct {
	SurchargePerUnit decimal.Decimal
}

// AllocateSurcharges distributes totalSurchargeNet across the prepared items
// under the given policy. The rate is uniform per base unit over the
// eligible unit class (totalSurchargeNet / Σ qty_base); lines outside the
// class get a zero share. One output entry per input item, same order.
func AllocateSurcharges(items []PreparedItem, totalSurchargeNet decimal.Decimal, mode Mode) []Share {
	shares := make([]Share, len(items))

	var eligible BaseUOM
	switch mode {
	case ModePerKg:
		eligible = BaseKilogram
	case ModePerPiece:
		eligible = BasePiece
	default:
		return shares
	}

	sum := decimal.Zero
	for _, it := range items {
		if it.BaseUOM == eligible {
			sum = sum.Add(it.QtyBase)
		}
	}
	if sum.IsZero() || totalSurchargeNet.IsZero() {
		return shares
	}

	// The rate stays unrounded so the redistributed total matches the pool;
	// rounding happens once, in FinalUnitPrice.
	rate := totalSurchargeNet.Div(sum)
	for i, it := range items {
		if it.BaseUOM == eligible && it.QtyBase.IsPositive() {
			shares[i].SurchargePerUnit = rate
		}
	}
	return shares
}

// FinalUnitPrice is the price-history unit price for one item: the base
// price plus its surcharge share, rounded.
func FinalUnitPrice(item PreparedItem, share Share) decimal.Decimal {
	return item.BasePricePerUnit.Add(share.SurchargePerUnit).Round(parse.DefaultPrecision)
}
