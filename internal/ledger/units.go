package ledger

import (
	"math/big"
	"strings"
)

// ToDisplay converts an atomic-unit balance to display units by dividing by
// 10^decimals. The conversion is exact.
func ToDisplay(atomic *big.Int, decimals uint8) *big.Rat {
	if atomic == nil {
		return new(big.Rat)
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	return new(big.Rat).SetFrac(atomic, divisor)
}

// FormatDisplay renders a display balance with at most maxFrac fractional
// digits, trailing zeros removed. 2.5 -> "2.5", 1 -> "1", nil -> "0".
func FormatDisplay(balance *big.Rat, maxFrac int) string {
	if balance == nil || balance.Sign() == 0 {
		return "0"
	}

	if maxFrac < 0 {
		maxFrac = 0
	}

	text := balance.FloatString(maxFrac)
	if !strings.Contains(text, ".") {
		return text
	}

	text = strings.TrimRight(text, "0")
	text = strings.TrimSuffix(text, ".")
	if text == "-0" {
		return "0"
	}

	return text
}
