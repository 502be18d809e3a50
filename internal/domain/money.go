package domain

import "github.com/shopspring/decimal"

// Money helpers. All monetary values carry two decimal places; shares are
// rounded half-up. Residuals from splitting are NOT reconciled: the sum of
// shares may differ from the source amount by up to one cent per share.

// RoundHalfUp rounds to two decimal places, halves away from zero.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// EqualShare returns one member's share of an amount split equally n ways.
func EqualShare(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return RoundHalfUp(total.Div(decimal.NewFromInt(int64(n))))
}

// ProRataShare returns weight/totalWeight of an amount, rounded half-up.
func ProRataShare(amount, weight, totalWeight decimal.Decimal) decimal.Decimal {
	if totalWeight.IsZero() {
		return decimal.Zero
	}
	return RoundHalfUp(amount.Mul(weight).Div(totalWeight))
}

// SumDecimals adds a slice of amounts.
func SumDecimals(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}
