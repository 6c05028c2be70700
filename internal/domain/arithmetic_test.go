package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(qty, price string) *InvoiceItem {
	it := NewItem()
	it.Quantity = dec(qty)
	it.UnitPrice = dec(price)
	it.LineTotal = LineTotal(it.Quantity, it.UnitPrice)
	return it
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		qty, price, want string
	}{
		{"0", "0", "0"},
		{"2", "50", "100"},
		{"3", "0.1", "0.3"},
		{"1.5", "19.99", "29.985"},
		{"1000000", "0.01", "10000"},
	}
	for _, tc := range cases {
		got := LineTotal(dec(tc.qty), dec(tc.price))
		assert.Truef(t, got.Equal(dec(tc.want)), "LineTotal(%s, %s) = %s, want %s", tc.qty, tc.price, got, tc.want)
		assert.Truef(t, got.Equal(dec(tc.qty).Mul(dec(tc.price))), "LineTotal must equal q*p")
	}
}

func TestLineTotal_NegativeInputsClampToZero(t *testing.T) {
	assert.True(t, LineTotal(dec("-2"), dec("50")).IsZero())
	assert.True(t, LineTotal(dec("2"), dec("-50")).IsZero())
	assert.True(t, LineTotal(dec("-2"), dec("-50")).IsZero())
}

func TestInvoiceTotal(t *testing.T) {
	items := []*InvoiceItem{item("2", "50"), item("1", "12.5"), item("4", "0.25")}
	got := InvoiceTotal(items, dec("10"))
	assert.True(t, got.Equal(dec("123.5")), "got %s", got)
}

func TestInvoiceTotal_EmptyItemsIsShipping(t *testing.T) {
	assert.True(t, InvoiceTotal(nil, dec("7.25")).Equal(dec("7.25")))
	assert.True(t, InvoiceTotal([]*InvoiceItem{}, decimal.Zero).IsZero())
}

func TestInvoiceTotal_SumOfLineTotalsPlusShipping(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := 0; n < 50; n++ {
		items := make([]*InvoiceItem, r.Intn(8))
		want := decimal.Zero
		for i := range items {
			it := NewItem()
			it.Quantity = decimal.New(r.Int63n(1000), -int32(r.Intn(3)))
			it.UnitPrice = decimal.New(r.Int63n(100000), -2)
			it.LineTotal = LineTotal(it.Quantity, it.UnitPrice)
			want = want.Add(it.LineTotal)
			items[i] = it
		}
		shipping := decimal.New(r.Int63n(5000), -2)
		want = want.Add(shipping)

		got := InvoiceTotal(items, shipping)
		assert.True(t, got.Equal(want), "got %s want %s", got, want)

		// reordering must not change the total
		r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		assert.True(t, InvoiceTotal(items, shipping).Equal(got))
	}
}

func TestInvoiceTotal_Deterministic(t *testing.T) {
	items := []*InvoiceItem{item("3", "0.1"), item("7", "0.2")}
	first := InvoiceTotal(items, dec("0.3")).String()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, InvoiceTotal(items, dec("0.3")).String())
	}
	assert.Equal(t, "2", first)
}
