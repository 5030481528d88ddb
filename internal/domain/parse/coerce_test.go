package parse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"decimal comma", "3,50", "3.5"},
		{"thousands dot with decimal comma", "1.234,50", "1234.5"},
		{"multiple thousands groups", "1.234.567,89", "1234567.89"},
		{"plain integer", "10", "10"},
		{"plain decimal point", "35.00", "35"},
		{"negative", "-12,40", "-12.4"},
		{"embedded spaces", "1 234,50", "1234.5"},
		{"empty", "", "0"},
		{"garbage", "abc", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocaleNumber(tt.input, DefaultPrecision)
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "ParseLocaleNumber(%q) = %s, want %s", tt.input, got, want)
		})
	}
}

func TestParseLocaleNumberRoundTrip(t *testing.T) {
	// Formatted German numbers must survive parse without value drift.
	values := map[string]string{
		"1.234,50":   "1234.50",
		"0,07":       "0.07",
		"999,99":     "999.99",
		"12.000,00":  "12000.00",
		"-1.500,25":  "-1500.25",
		"100.000,10": "100000.10",
	}
	for formatted, plain := range values {
		want := decimal.RequireFromString(plain)
		got := ParseLocaleNumber(formatted, DefaultPrecision)
		assert.True(t, got.Equal(want), "parse(%q) = %s, want %s", formatted, got, want)
	}
}

func TestToISODate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dotted full year", "02.01.2024", "2024-01-02"},
		{"dotted two-digit year", "2.1.24", "2024-01-02"},
		{"slashes", "15/03/2023", "2023-03-15"},
		{"dashes", "7-12-2022", "2022-12-07"},
		{"already unparseable", "Januar 2024", "Januar 2024"},
		{"three-digit year left alone", "01.01.202", "01.01.202"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToISODate(tt.input))
		})
	}
}

func TestToAllowedUOM(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantUOM     UOM
		wantOK      bool
		wantWarning bool
	}{
		{"kg", "KG", UOMKilogram, true, false},
		{"kg lowercase", "kg", UOMKilogram, true, false},
		{"case", "TU", UOMCase, true, false},
		{"piece full", "STÜCK", UOMPiece, true, false},
		{"piece folded", "STUECK", UOMPiece, true, false},
		{"piece abbreviation", "St.", UOMPiece, true, false},
		{"piece misspelling", "STCK", UOMPiece, true, false},
		{"bucket substitution", "Eimer", UOMKilogram, true, true},
		{"unknown", "Palette", "", false, true},
		{"empty", "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uom, warning, ok := ToAllowedUOM(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantUOM, uom)
			if tt.wantWarning {
				assert.NotEmpty(t, warning)
			} else {
				assert.Empty(t, warning)
			}
		})
	}
}

func TestGuessLineType(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        LineType
	}{
		{"plain product", "Kaffeebohnen 250g", LineTypeProduct},
		{"shipping", "Frachtkosten Inland", LineTypeShipping},
		{"shipping umlaut-free", "Versandpauschale", LineTypeShipping},
		{"surcharge", "Energiezuschlag", LineTypeSurcharge},
		{"toll", "Mautgebühr", LineTypeSurcharge},
		{"shipping wins over surcharge", "Transportpauschale", LineTypeShipping},
		{"empty", "", LineTypeProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessLineType(tt.description))
		})
	}
}

func TestDefaultTaxRate(t *testing.T) {
	assert.True(t, DefaultTaxRate(LineTypeShipping).Equal(decimal.NewFromInt(19)))
	assert.True(t, DefaultTaxRate(LineTypeProduct).Equal(decimal.NewFromInt(7)))
	assert.True(t, DefaultTaxRate(LineTypeSurcharge).Equal(decimal.NewFromInt(7)))
}
