// Package allocation converts invoice line quantities into each product's
// canonical base unit and distributes pooled surcharges across product lines.
package allocation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

// BaseUOM is the canonical unit a product's cost is tracked in long-term,
// independent of how any single invoice line denominates quantity.
type BaseUOM string

const (
	BaseKilogram BaseUOM = "kg"
	BasePiece    BaseUOM = "piece"
)

// Product carries the conversion-relevant master data of one product.
type Product struct {
	ID            uuid.UUID
	BaseUOM       BaseUOM
	PiecesPerCase *decimal.Decimal // pieces per TU, when known
}

// Conversion is the outcome of converting one transaction line into base
// units. On a unit conflict Convertible is false and QtyBase and
// BasePricePerUnit are zero: pricing history is skipped for such lines
// rather than recorded with a meaningless value.
type Conversion struct {
	Factor           decimal.Decimal
	QtyBase          decimal.Decimal
	BasePricePerUnit decimal.Decimal
	Convertible      bool
	Warnings         []string
}

// Convert computes the base-unit conversion for one line. Conflicts are
// never guessed around: a KG-based product billed in STUECK yields zero
// base quantity plus a warning, never an error.
func Convert(product Product, lineUOM parse.UOM, qty, unitPriceNet decimal.Decimal) Conversion {
	factor, warning := conversionFactor(product, lineUOM)
	if warning != "" {
		return Conversion{Warnings: []string{warning}}
	}
	return Conversion{
		Factor:           factor,
		QtyBase:          qty.Mul(factor),
		BasePricePerUnit: unitPriceNet.Div(factor).Round(parse.DefaultPrecision),
		Convertible:      true,
	}
}

func conversionFactor(product Product, lineUOM parse.UOM) (decimal.Decimal, string) {
	switch product.BaseUOM {
	case BaseKilogram:
		if lineUOM == parse.UOMKilogram {
			return decimal.NewFromInt(1), ""
		}
		return decimal.Zero, fmt.Sprintf("cannot convert %s to kg-based product %s", lineUOM, product.ID)
	case BasePiece:
		switch lineUOM {
		case parse.UOMPiece:
			return decimal.NewFromInt(1), ""
		case parse.UOMCase:
			if product.PiecesPerCase != nil && product.PiecesPerCase.IsPositive() {
				return *product.PiecesPerCase, ""
			}
			return decimal.Zero, fmt.Sprintf("no pieces-per-case factor for product %s", product.ID)
		}
		return decimal.Zero, fmt.Sprintf("cannot convert %s to piece-based product %s", lineUOM, product.ID)
	}
	return decimal.Zero, fmt.Sprintf("unknown base unit %q for product %s", product.BaseUOM, product.ID)
}

// PreparedItem is one product line ready for surcharge allocation. Derived
// and ephemeral: it exists only for the duration of one allocation call.
type PreparedItem struct {
	ProductID        uuid.UUID
	BaseUOM          BaseUOM
	QtyBase          decimal.Decimal
	BasePricePerUnit decimal.Decimal
}
