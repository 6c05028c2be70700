package domain

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO 4217 code used when none is configured
const DefaultCurrency = "EGP"

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(-math.MaxInt64)
)

// FormatMoney renders an amount in the given currency, e.g. "E£1,250.00".
// Unknown currency codes fall back to "1250.00 XYZ".
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		// Beyond int64 minor units go-money would wrap
		return amount.StringFixed(int32(cur.Fraction)) + " " + cur.Code
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}

// Summary aggregates a list of invoices for display
type Summary struct {
	Count int
	Total decimal.Decimal
}

// Summarize counts invoices and adds up their totals
func Summarize(invoices []*Invoice) Summary {
	s := Summary{Total: decimal.Zero}
	for _, inv := range invoices {
		s.Count++
		s.Total = s.Total.Add(inv.TotalAmount)
	}
	return s
}

// KnownCurrency reports whether code is an ISO 4217 code with display rules
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}
