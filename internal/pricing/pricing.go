// Package pricing converts host-set base prices into customer-facing
// amounts.  All functions are pure; prices are whole Chilean pesos
// (no fractional units exist in this domain).
//
// Rounding convention: the service fee is rounded first (half up) and
// the customer unit price is defined as base + fee.  This makes
// ApplyServiceFee(p) == p + CalcServiceFee(p) hold exactly for every
// input, so a displayed subtotal + fee can never disagree with the
// displayed total by a peso.
package pricing

import (
	"math"
	"strconv"
)

// ServiceFeeRate is the commission charged on top of the host price.
const ServiceFeeRate = 0.10

// CalcServiceFee returns the fee amount for one unit at the given
// host price, rounded half up.
func CalcServiceFee(hostPrice int64) int64 {
	return int64(math.Round(float64(hostPrice) * ServiceFeeRate))
}

// ApplyServiceFee returns the customer-facing unit price: the host
// price plus the rounded service fee.
func ApplyServiceFee(hostPrice int64) int64 {
	return hostPrice + CalcServiceFee(hostPrice)
}

// Total returns the customer total for qty units.  The unit price is
// computed once and multiplied, never summed per unit, so rounding
// cannot compound across units.
func Total(hostPrice int64, qty uint32) int64 {
	return ApplyServiceFee(hostPrice) * int64(qty)
}

// FormatCLP renders an amount as an es-CL display string: "$" prefix,
// periods as thousands separators, no decimals.  e.g. 49500 -> "$49.500".
func FormatCLP(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	if neg {
		return "-$" + string(out)
	}
	return "$" + string(out)
}
