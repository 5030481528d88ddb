package pricehistory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(prices ...string) []PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]PricePoint, len(prices))
	for i, p := range prices {
		out[i] = PricePoint{
			RecordID: int64(i + 1),
			Date:     start.AddDate(0, 0, i),
			Price:    decimal.RequireFromString(p),
		}
	}
	return out
}

func prices(points []PricePoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Price.String()
	}
	return out
}

func TestCorrectOutliersAllEqual(t *testing.T) {
	in := series("2.50", "2.50", "2.50", "2.50", "2.50")

	out, repaired := CorrectOutliers(in, DefaultThreshold)

	assert.Equal(t, 0, repaired)
	assert.Equal(t, prices(in), prices(out))
}

func TestCorrectOutliersSpikeBetweenEqualNeighbors(t *testing.T) {
	in := series("2.40", "2.50", "25.00", "2.50", "2.60")

	out, repaired := CorrectOutliers(in, DefaultThreshold)

	assert.Equal(t, 1, repaired)
	// The spike is replaced by the average of its equal neighbors.
	assert.True(t, out[2].Price.Equal(decimal.RequireFromString("2.5")), "corrected = %s", out[2].Price)
	assert.True(t, out[0].Price.Equal(decimal.RequireFromString("2.4")))
	assert.True(t, out[4].Price.Equal(decimal.RequireFromString("2.6")))
}

func TestCorrectOutliersSpikeAtEdge(t *testing.T) {
	in := series("25.00", "2.50", "2.40", "2.60", "2.50")

	out, repaired := CorrectOutliers(in, DefaultThreshold)

	require.Equal(t, 1, repaired)
	// Only one clean side: the nearest non-flagged neighbor is used as is.
	assert.True(t, out[0].Price.Equal(decimal.RequireFromString("2.5")), "corrected = %s", out[0].Price)
}

func TestCorrectOutliersZeroMAD(t *testing.T) {
	// Majority identical: MAD is zero, nothing can be distinguished from
	// noise, the series stays untouched.
	in := series("2.50", "2.50", "2.50", "2.50", "9.99")

	out, repaired := CorrectOutliers(in, DefaultThreshold)

	assert.Equal(t, 0, repaired)
	assert.Equal(t, prices(in), prices(out))
}

func TestCorrectOutliersPreservesInputOrder(t *testing.T) {
	// Deliberately unsorted by date.
	in := []PricePoint{
		{RecordID: 3, Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("25.00")},
		{RecordID: 1, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("2.40")},
		{RecordID: 2, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("2.50")},
		{RecordID: 4, Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("2.50")},
		{RecordID: 5, Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("2.60")},
	}

	out, repaired := CorrectOutliers(in, DefaultThreshold)

	assert.Equal(t, 1, repaired)
	assert.Equal(t, int64(3), out[0].RecordID)
	// Chronological neighbors of the spike are the day-2 and day-4 points.
	assert.True(t, out[0].Price.Equal(decimal.RequireFromString("2.5")), "corrected = %s", out[0].Price)
	for i, p := range out {
		assert.Equal(t, in[i].RecordID, p.RecordID, "order changed at %d", i)
	}
}

func TestCorrectOutliersShortSeries(t *testing.T) {
	in := series("2.50", "99.00")

	out, repaired := CorrectOutliers(in, DefaultThreshold)

	assert.Equal(t, 0, repaired)
	assert.Equal(t, prices(in), prices(out))
}

func TestCorrectOutliersDefaultThresholdFallback(t *testing.T) {
	in := series("2.40", "2.50", "25.00", "2.50", "2.60")

	_, repaired := CorrectOutliers(in, 0)

	assert.Equal(t, 1, repaired)
}
