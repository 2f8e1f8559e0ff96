package wpayz

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// Tag 54 is the EMVCo transaction amount: tag, 2-digit length, numeric value.
var tag54Pattern = regexp.MustCompile(`54(\d{2})(\d+\.?\d*)`)

// ParsePromptPayAmount extracts the declared transaction amount from an
// EMVCo-style PromptPay code. The second return value is false when the tag
// is missing or malformed; malformed input never causes an error.
func ParsePromptPayAmount(qr string) (decimal.Decimal, bool) {
	if qr == "" {
		return decimal.Zero, false
	}

	match := tag54Pattern.FindStringSubmatch(qr)
	if match == nil {
		return decimal.Zero, false
	}

	length, err := strconv.Atoi(match[1])
	if err != nil || length <= 0 || length > len(match[2]) {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(match[2][:length])
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// AmountMatchesQR cross-validates a requested amount against the amount
// declared inside a resolved PromptPay code. Codes without a readable tag
// 54 validate trivially.
func AmountMatchesQR(qr string, amount float64) bool {
	declared, ok := ParsePromptPayAmount(qr)
	if !ok {
		return true
	}
	return declared.Equal(decimal.NewFromFloat(amount))
}
