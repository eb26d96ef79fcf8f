package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyUSD(decimal.RequireFromString("10.50"))
	b := NewMoneyUSD(decimal.RequireFromString("4.25"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.RequireFromString("14.75")))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.RequireFromString("6.25")))

	// operands are untouched
	assert.True(t, a.Amount().Equal(decimal.RequireFromString("10.50")))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	usd := NewMoneyUSD(decimal.NewFromInt(10))
	eur, err := NewMoney(decimal.NewFromInt(10), EUR)
	require.NoError(t, err)

	_, err = usd.Add(eur)
	assert.Error(t, err)
	_, err = usd.Sub(eur)
	assert.Error(t, err)
	assert.False(t, usd.Equals(eur))
	assert.False(t, usd.GreaterThanOrEqual(eur))
}

func TestMoney_Rounding(t *testing.T) {
	m := NewMoneyUSD(decimal.RequireFromString("33.3399"))

	assert.True(t, m.Round(2).Amount().Equal(decimal.RequireFromString("33.34")))
	assert.True(t, m.RoundDown(2).Amount().Equal(decimal.RequireFromString("33.33")))
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyUSD(decimal.NewFromInt(100))
	large := NewMoneyUSD(decimal.NewFromInt(500))

	assert.True(t, large.GreaterThanOrEqual(small))
	assert.True(t, large.GreaterThanOrEqual(large))
	assert.True(t, small.LessThan(large))
	assert.False(t, large.LessThan(small))
	assert.True(t, small.Equals(NewMoneyUSD(decimal.NewFromInt(100))))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	original := NewMoneyUSD(decimal.RequireFromString("1234.56"))

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equals(decoded))
}

func TestNewMoneyUSDFromString(t *testing.T) {
	m, err := NewMoneyUSDFromString("42.42")
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("42.42")))

	_, err = NewMoneyUSDFromString("not-a-number")
	assert.Error(t, err)
}
