package money_test

import (
	"encoding/json"
	"testing"

	"github.com/SscSPs/majik_runway/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMajor_RoundsToMinorUnit(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{name: "half rounds up", amount: "10.005", currency: "USD", want: "USD 10.01"},
		{name: "below half rounds down", amount: "10.004", currency: "USD", want: "USD 10.00"},
		{name: "zero decimal currency", amount: "1234.5", currency: "JPY", want: "JPY 1235"},
		{name: "three decimal currency", amount: "1.0005", currency: "KWD", want: "KWD 1.001"},
		{name: "lower case code", amount: "3", currency: "php", want: "PHP 3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := money.FromMajorString(tt.amount, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := money.FromMajorInt(100, "USD")
	b := money.FromMinor(2550, "USD")

	assert.Equal(t, "USD 125.50", a.Add(b).String())
	assert.Equal(t, "USD 74.50", a.Subtract(b).String())
	assert.Equal(t, "USD 33.33", a.DivideInt(3).String())
	assert.Equal(t, "USD 12.50", a.Multiply(decimal.NewFromFloat(0.125)).String())
	assert.True(t, a.DivideInt(0).IsZero())
	assert.InDelta(t, 0.255, b.Ratio(a), 1e-9)
	assert.Equal(t, float64(0), a.Ratio(money.Zero("USD")))
	assert.Equal(t, int64(2550), b.Minor())
	assert.True(t, b.LessThanOrEqual(a))
	assert.True(t, a.Subtract(a).Subtract(b).IsNegative())
}

func TestMoney_ZeroValueAdoptsCurrency(t *testing.T) {
	var total money.Money
	total = total.Add(money.FromMajorInt(5, "EUR"))
	assert.Equal(t, "EUR", total.Currency())
	assert.Equal(t, "EUR 5.00", total.String())
}

func TestMoney_Compound(t *testing.T) {
	principal := money.FromMajorInt(1000, "USD")

	got := principal.Compound(decimal.NewFromFloat(0.01), 24)

	// 1000 × 1.01^24 = 1269.7346...
	assert.Equal(t, "USD 1269.73", got.String())
	assert.Equal(t, principal, principal.Compound(decimal.NewFromFloat(0.01), 0))
}

func TestMoney_Format(t *testing.T) {
	assert.Equal(t, "USD 10,660.29", money.FromMinor(1066029, "USD").Format())
	assert.Equal(t, "JPY 1,500,000", money.FromMajorInt(1500000, "JPY").Format())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	original := money.FromMinor(-123456, "USD")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"-1234.56","currency":"USD"}`, string(data))

	var decoded money.Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equal(decoded))

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestMoney_UnmarshalInvalid(t *testing.T) {
	var m money.Money
	err := json.Unmarshal([]byte(`{"amount":"abc","currency":"USD"}`), &m)
	assert.Error(t, err)
}
