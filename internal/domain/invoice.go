package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID             string
	InvoiceNumber  string
	CustomerName   string `validate:"notblank"`
	PrimaryPhone   string `validate:"notblank"`
	SecondaryPhone string
	Address        string `validate:"notblank"`
	ShippingCost   decimal.Decimal
	Notes          string
	Items          []*InvoiceItem `validate:"min=1"`
	TotalAmount    decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InvoiceItem struct {
	ID          string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Details holds the free-text header fields of an invoice
type Details struct {
	CustomerName   string
	PrimaryPhone   string
	SecondaryPhone string
	Address        string
	Notes          string
}

// NewInvoice creates an in-memory invoice with a single empty item
func NewInvoice(invoiceNumber string, now time.Time) *Invoice {
	inv := &Invoice{
		ID:            uuid.NewString(),
		InvoiceNumber: invoiceNumber,
		Items:         []*InvoiceItem{NewItem()},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	inv.Recalculate()
	return inv
}

// NewItem returns a blank line item with a fresh id
func NewItem() *InvoiceItem {
	return &InvoiceItem{
		ID:        uuid.NewString(),
		Quantity:  decimal.Zero,
		UnitPrice: decimal.Zero,
		LineTotal: decimal.Zero,
	}
}

// Details returns the header fields of the invoice
func (i *Invoice) Details() Details {
	return Details{
		CustomerName:   i.CustomerName,
		PrimaryPhone:   i.PrimaryPhone,
		SecondaryPhone: i.SecondaryPhone,
		Address:        i.Address,
		Notes:          i.Notes,
	}
}

// ApplyDetails overwrites the header fields and stamps UpdatedAt
func (i *Invoice) ApplyDetails(d Details, now time.Time) {
	i.CustomerName = d.CustomerName
	i.PrimaryPhone = d.PrimaryPhone
	i.SecondaryPhone = d.SecondaryPhone
	i.Address = d.Address
	i.Notes = d.Notes
	i.UpdatedAt = now
}

// SetShipping sets the shipping cost (negative values clamp to zero) and recalculates
func (i *Invoice) SetShipping(cost decimal.Decimal, now time.Time) {
	i.ShippingCost = nonNegative(cost)
	i.UpdatedAt = now
	i.Recalculate()
}

// AddItem appends a blank item and returns it
func (i *Invoice) AddItem(now time.Time) *InvoiceItem {
	item := NewItem()
	i.Items = append(i.Items, item)
	i.UpdatedAt = now
	i.Recalculate()
	return item
}

// UpdateItem replaces the editable fields of the item with the given id.
// It reports false when no such item exists.
func (i *Invoice) UpdateItem(id, description string, quantity, unitPrice decimal.Decimal, now time.Time) bool {
	for _, item := range i.Items {
		if item.ID != id {
			continue
		}
		item.Description = description
		item.Quantity = nonNegative(quantity)
		item.UnitPrice = nonNegative(unitPrice)
		i.UpdatedAt = now
		i.Recalculate()
		return true
	}
	return false
}

// RemoveItem drops the item with the given id, keeping the order of the rest
func (i *Invoice) RemoveItem(id string, now time.Time) bool {
	for idx, item := range i.Items {
		if item.ID == id {
			i.Items = append(i.Items[:idx:idx], i.Items[idx+1:]...)
			i.UpdatedAt = now
			i.Recalculate()
			return true
		}
	}
	return false
}

// Normalize clamps negative quantities, prices and shipping to zero and
// recalculates. Used on data that did not come through the mutators.
func (i *Invoice) Normalize() {
	i.ShippingCost = nonNegative(i.ShippingCost)
	for _, item := range i.Items {
		item.Quantity = nonNegative(item.Quantity)
		item.UnitPrice = nonNegative(item.UnitPrice)
	}
	i.Recalculate()
}

// Recalculate recomputes every line total and the invoice total from scratch
func (i *Invoice) Recalculate() {
	for _, item := range i.Items {
		item.LineTotal = LineTotal(item.Quantity, item.UnitPrice)
	}
	i.TotalAmount = InvoiceTotal(i.Items, i.ShippingCost)
}

// Clone returns a deep copy so callers can hand out snapshots
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	out := *i
	out.Items = make([]*InvoiceItem, len(i.Items))
	for idx, item := range i.Items {
		c := *item
		out.Items[idx] = &c
	}
	return &out
}

// WithNewIdentity returns a copy carrying a fresh id and the given number.
// Item ids are only unique within their invoice and are kept.
func (i *Invoice) WithNewIdentity(invoiceNumber string) *Invoice {
	out := i.Clone()
	out.ID = uuid.NewString()
	out.InvoiceNumber = invoiceNumber
	return out
}

// DisplayName returns the customer name or a placeholder for unnamed drafts
func (i *Invoice) DisplayName() string {
	if name := strings.TrimSpace(i.CustomerName); name != "" {
		return name
	}
	return "(no customer)"
}
