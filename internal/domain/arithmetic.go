package domain

import "github.com/shopspring/decimal"

// LineTotal returns quantity * unitPrice. Negative inputs are clamped to zero.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return nonNegative(quantity).Mul(nonNegative(unitPrice))
}

// InvoiceTotal sums the line total of every item and adds the shipping cost.
// Line totals are derived from quantity and price, not read from the item.
func InvoiceTotal(items []*InvoiceItem, shippingCost decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item == nil {
			continue
		}
		total = total.Add(LineTotal(item.Quantity, item.UnitPrice))
	}
	return total.Add(nonNegative(shippingCost))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
