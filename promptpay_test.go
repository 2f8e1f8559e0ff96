package wpayz

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePromptPayAmount(t *testing.T) {
	amount, ok := ParsePromptPayAmount("00020101021229370016A0000006770101115406100.506304")
	assert.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromFloat(100.50)))

	amount, ok = ParsePromptPayAmount("000201540725000.006304")
	assert.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromInt(25000)))
}

func TestParsePromptPayAmountMissingTag(t *testing.T) {
	_, ok := ParsePromptPayAmount("https://pay.test/pay/INV123")
	assert.False(t, ok)

	_, ok = ParsePromptPayAmount("")
	assert.False(t, ok)
}

func TestParsePromptPayAmountMalformedLength(t *testing.T) {
	// Declared length exceeds the remaining payload.
	_, ok := ParsePromptPayAmount("5499100.50")
	assert.False(t, ok)
}

func TestAmountMatchesQR(t *testing.T) {
	qr := "00020101021229370016A0000006770101115406100.506304"
	assert.True(t, AmountMatchesQR(qr, 100.50))
	assert.False(t, AmountMatchesQR(qr, 100.00))

	// Codes without a readable amount validate trivially.
	assert.True(t, AmountMatchesQR("https://pay.test/pay/INV123", 100.50))
	assert.True(t, AmountMatchesQR("", 42))
}
