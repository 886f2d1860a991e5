package valueobjects

import (
	"testing"

	pkgerrors "propcore-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_NormalizesCurrency(t *testing.T) {
	m, err := NewMoney(120000, " usd ")
	require.NoError(t, err)
	assert.Equal(t, Money{Amount: 120000, Currency: "USD"}, m)
}

func TestNewMoney_RejectsBadInput(t *testing.T) {
	_, err := NewMoney(100, "us")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewMoney(-1, "USD")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestMoney_Add(t *testing.T) {
	a := Money{Amount: 100, Currency: "USD"}
	b := Money{Amount: 250, Currency: "USD"}

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, Money{Amount: 350, Currency: "USD"}, sum)

	_, err = a.Add(Money{Amount: 1, Currency: "EUR"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestMoney_IsZero(t *testing.T) {
	assert.True(t, Money{}.IsZero())
	assert.False(t, Zero("USD").IsZero())
	assert.False(t, Money{Amount: 1, Currency: "USD"}.IsZero())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "1200.00 USD", Money{Amount: 120000, Currency: "USD"}.String())
	assert.Equal(t, "12.05 EUR", Money{Amount: 1205, Currency: "EUR"}.String())
}
