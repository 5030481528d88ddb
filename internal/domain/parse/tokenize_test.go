package parse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeRow(t *testing.T) {
	tests := []struct {
		name      string
		buffer    string
		wantOK    bool
		wantPos   int
		wantSKU   string
		wantDesc  string
		wantQty   string
		wantUOM   UOM
		wantPrice string
		wantTax   string
		wantTotal string
	}{
		{
			name:      "full row with percent tax",
			buffer:    "1 SKU-9 Kaffeebohnen 250g 10 KG 3,50 2% 35,00",
			wantOK:    true,
			wantPos:   1,
			wantSKU:   "SKU-9",
			wantDesc:  "Kaffeebohnen 250g",
			wantQty:   "10",
			wantUOM:   UOMKilogram,
			wantPrice: "3.5",
			wantTax:   "2",
			wantTotal: "35",
		},
		{
			name:      "bare small integer read as tax rate",
			buffer:    "2 540021 Vollmilch 3,5% 12 STÜCK 0,89 7 10,68",
			wantOK:    true,
			wantPos:   2,
			wantSKU:   "540021",
			wantDesc:  "Vollmilch 3,5%",
			wantQty:   "12",
			wantUOM:   UOMPiece,
			wantPrice: "0.89",
			wantTax:   "7",
			wantTotal: "10.68",
		},
		{
			name:      "row without tax column",
			buffer:    "3 Mehl Type 405 25 KG 0,60 15,00",
			wantOK:    true,
			wantPos:   3,
			wantDesc:  "Mehl Type 405",
			wantQty:   "25",
			wantUOM:   UOMKilogram,
			wantPrice: "0.6",
			wantTax:   "",
			wantTotal: "15",
		},
		{
			name:      "no tax token at all",
			buffer:    "4 Butterschmalz 5 KG 8,00 40,00",
			wantOK:    true,
			wantPos:   4,
			wantDesc:  "Butterschmalz",
			wantQty:   "5",
			wantUOM:   UOMKilogram,
			wantPrice: "8",
			wantTax:   "",
			wantTotal: "40",
		},
		{
			name:   "too few tokens",
			buffer: "1 Kaffee 3,50",
			wantOK: false,
		},
		{
			name:   "non-numeric total",
			buffer: "1 Kaffee 10 KG 3,50 offen",
			wantOK: false,
		},
		{
			name:   "description missing",
			buffer: "10 KG 3,50 35,00",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf, ok := tokenizeRow(tt.buffer, nil)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantPos, rf.PosNo)
			assert.Equal(t, tt.wantSKU, rf.SKU)
			assert.Equal(t, tt.wantDesc, rf.Description)
			assert.True(t, rf.Qty.Equal(decimal.RequireFromString(tt.wantQty)), "qty = %s", rf.Qty)
			assert.Equal(t, tt.wantUOM, rf.UOM)
			assert.True(t, rf.UnitPrice.Equal(decimal.RequireFromString(tt.wantPrice)), "price = %s", rf.UnitPrice)
			if tt.wantTax == "" {
				assert.Nil(t, rf.TaxRate)
			} else {
				require.NotNil(t, rf.TaxRate)
				assert.True(t, rf.TaxRate.Equal(decimal.RequireFromString(tt.wantTax)), "tax = %s", rf.TaxRate)
			}
			assert.True(t, rf.LineTotal.Equal(decimal.RequireFromString(tt.wantTotal)), "total = %s", rf.LineTotal)
		})
	}
}

func TestTokenizeRowMissingUnit(t *testing.T) {
	rf, ok := tokenizeRow("1 Espressobohnen 10 3,50 35,00", nil)
	require.True(t, ok)
	assert.Equal(t, UOMPiece, rf.UOM)
	require.NotEmpty(t, rf.Warnings)
	assert.Contains(t, rf.Warnings[0], "missing unit")
}

func TestTokenizeRowUnknownUnit(t *testing.T) {
	rf, ok := tokenizeRow("1 Espressobohnen 10 Palette 3,50 35,00", nil)
	require.True(t, ok)
	assert.Equal(t, UOMPiece, rf.UOM)
	require.NotEmpty(t, rf.Warnings)
	assert.Contains(t, rf.Warnings[0], "assuming STUECK")
}

func TestTokenizeRowBucketUnit(t *testing.T) {
	rf, ok := tokenizeRow("1 Sauerkraut 2 Eimer 9,00 18,00", nil)
	require.True(t, ok)
	assert.Equal(t, UOMKilogram, rf.UOM)
	require.NotEmpty(t, rf.Warnings)
	assert.Contains(t, rf.Warnings[0], "bucket")
}

func TestTokenizeRowSanitize(t *testing.T) {
	sanitize := func(s string) string { return trimAsterisks(s) }
	rf, ok := tokenizeRow("1 Aktionsware** 5 KG 2,00* 10,00*", sanitize)
	require.True(t, ok)
	assert.Equal(t, "Aktionsware", rf.Description)
	assert.True(t, rf.UnitPrice.Equal(decimal.NewFromInt(2)))
	assert.True(t, rf.LineTotal.Equal(decimal.NewFromInt(10)))
}

func trimAsterisks(s string) string {
	for len(s) > 0 && s[len(s)-1] == '*' {
		s = s[:len(s)-1]
	}
	return s
}

func TestLooksLikeSKU(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"SKU-9", true},
		{"540021", true},
		{"A12", true},
		{"12/34", true},
		{"123", false},
		{"Kaffee", false},
		{"", false},
		{"12345678901234567890", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeSKU(tt.token))
		})
	}
}
