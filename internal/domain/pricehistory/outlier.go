package pricehistory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultThreshold is the modified z-score above which a price counts as an
// outlier.
const DefaultThreshold = 3.5

// madScale rescales the MAD so the modified z-score is comparable to a
// standard z-score under normally distributed data.
const madScale = 0.6745

// PricePoint is one observation in a product's price series.
type PricePoint struct {
	RecordID int64
	Date     time.Time
	Price    decimal.Decimal
}

// CorrectOutliers detects outliers in a price series via a median/MAD
// estimator and replaces each with the average of its nearest non-outlier
// neighbors. The input order is preserved; the series is sorted by date only
// internally. Returns the corrected series and the number of repaired points.
func CorrectOutliers(series []PricePoint, threshold float64) ([]PricePoint, int) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	out := make([]PricePoint, len(series))
	copy(out, series)
	if len(out) < 3 {
		return out, 0
	}

	// Work on a chronologically sorted view, remembering original slots.
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].Date.Before(out[order[b]].Date)
	})

	prices := make([]decimal.Decimal, len(order))
	for i, idx := range order {
		prices[i] = out[idx].Price
	}

	if allEqual(prices) {
		return out, 0
	}

	med := median(prices)
	deviations := make([]decimal.Decimal, len(prices))
	for i, p := range prices {
		deviations[i] = p.Sub(med).Abs()
	}
	mad := median(deviations)
	if mad.IsZero() {
		return out, 0
	}

	madF := mad.InexactFloat64()
	flagged := make([]bool, len(prices))
	for i, p := range prices {
		z := madScale * p.Sub(med).InexactFloat64() / madF
		if z < 0 {
			z = -z
		}
		flagged[i] = z > threshold
	}

	repaired := 0
	for i := range prices {
		if !flagged[i] {
			continue
		}
		out[order[i]].Price = repairValue(prices, flagged, i, med)
		repaired++
	}
	return out, repaired
}

// repairValue averages the nearest non-flagged neighbor on each side of
// position i. One-sided neighbors are used as-is; with no clean neighbor at
// all the median is the fallback.
func repairValue(prices []decimal.Decimal, flagged []bool, i int, med decimal.Decimal) decimal.Decimal {
	var left, right *decimal.Decimal
	for j := i - 1; j >= 0; j-- {
		if !flagged[j] {
			left = &prices[j]
			break
		}
	}
	for j := i + 1; j < len(prices); j++ {
		if !flagged[j] {
			right = &prices[j]
			break
		}
	}
	switch {
	case left != nil && right != nil:
		return left.Add(*right).Div(decimal.NewFromInt(2)).Round(4)
	case left != nil:
		return *left
	case right != nil:
		return *right
	default:
		return med
	}
}

func allEqual(prices []decimal.Decimal) bool {
	for _, p := range prices[1:] {
		if !p.Equal(prices[0]) {
			return false
		}
	}
	return true
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].LessThan(sorted[b]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}
