package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
	}{
		{"positive cents", 1234, EUR},
		{"zero", 0, EUR},
		{"negative cents", -5000, EUR},
		{"other currency", 1000, USD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cents, tt.currency)
			assert.Equal(t, tt.cents, m.Amount())
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
	}{
		{"two decimals", "12.34", 1234},
		{"rounds half up", "0.005", 1},
		{"rounds down", "0.004", 0},
		{"whole number", "100", 10000},
		{"negative", "-1.5", -150},
		{"four parser decimals", "2.3456", 235},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), EUR)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestNewFromDecimalUnknownCurrencyFallsBackToEUR(t *testing.T) {
	m := NewFromDecimal(decimal.RequireFromString("1.00"), "XXINVALID")
	assert.Equal(t, int64(100), m.Amount())
}

func TestAdd(t *testing.T) {
	sum, err := New(1050, EUR).Add(New(250, EUR))
	require.NoError(t, err)
	assert.Equal(t, int64(1300), sum.Amount())
}

func TestAddCurrencyMismatch(t *testing.T) {
	_, err := New(100, EUR).Add(New(100, USD))
	assert.Error(t, err)
}

func TestAddNil(t *testing.T) {
	_, err := New(100, EUR).Add(nil)
	assert.Error(t, err)
}

func TestMultiplyDecimal(t *testing.T) {
	m := New(200, EUR).MultiplyDecimal(decimal.RequireFromString("1.19"))
	assert.Equal(t, int64(238), m.Amount())
}

func TestToDecimal(t *testing.T) {
	d := New(1234, EUR).ToDecimal()
	assert.True(t, d.Equal(decimal.RequireFromString("12.34")), "got %s", d)
}

func TestToDecimalRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "12.34", "-5.00", "1234.56"} {
		d := decimal.RequireFromString(s)
		got := NewFromDecimal(d, EUR).ToDecimal()
		assert.True(t, got.Equal(d), "round trip %s -> %s", s, got)
	}
}

func TestEquals(t *testing.T) {
	assert.True(t, New(100, EUR).Equals(New(100, EUR)))
	assert.False(t, New(100, EUR).Equals(New(101, EUR)))
	assert.False(t, New(100, EUR).Equals(New(100, USD)))
}

func TestZeroAndIsZero(t *testing.T) {
	assert.True(t, Zero(EUR).IsZero())
	assert.False(t, New(1, EUR).IsZero())
}

func TestNilSafety(t *testing.T) {
	var m *Money
	assert.Equal(t, int64(0), m.Amount())
	assert.Equal(t, "", m.Currency())
	assert.Equal(t, "", m.Display())
}
