package asset

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BalancePrecision is the number of base units (stroops) in one display unit.
const BalancePrecision = 10_000_000

const balanceDecimals = 7

// ParseAmount converts a display amount such as `12.5` into integral base
// units. More than 7 decimals cannot be represented on the ledger.
func ParseAmount(input string) (decimal.Decimal, error) {
	display, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", input, err)
	}

	if display.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q is negative", input)
	}

	base := display.Shift(balanceDecimals)
	if !base.IsInteger() {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimals", input, balanceDecimals)
	}

	return base.Truncate(0), nil
}

// FormatAmount renders integral base units back as a display amount with
// the ledger's 7 decimals.
func FormatAmount(base decimal.Decimal) string {
	return base.Shift(-balanceDecimals).StringFixed(balanceDecimals)
}
