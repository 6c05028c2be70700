package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/invoicer/internal/domain"
)

// maxDocumentSize bounds how much of an import file is read
const maxDocumentSize = 10 << 20

// invoiceDocument is the JSON interchange format. Required fields on read are
// pointers so a missing key can be told apart from a zero value.
type invoiceDocument struct {
	ID             string          `json:"id"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	CustomerName   *string         `json:"customerName"`
	PrimaryPhone   string          `json:"primaryPhone"`
	SecondaryPhone string          `json:"secondaryPhone"`
	Address        string          `json:"address"`
	ShippingCost   json.Number     `json:"shippingCost"`
	Notes          string          `json:"notes"`
	Items          *[]itemDocument `json:"items"`
	TotalAmount    json.Number     `json:"totalAmount"`
	CreatedAt      *string         `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt,omitempty"`
}

type itemDocument struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Quantity    json.Number `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
	LineTotal   json.Number `json:"lineTotal"`
}

// WriteData serializes the full invoice record as indented JSON
func WriteData(w io.Writer, inv *domain.Invoice) error {
	items := make([]itemDocument, 0, len(inv.Items))
	for _, item := range inv.Items {
		if item == nil {
			continue
		}
		items = append(items, itemDocument{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    json.Number(item.Quantity.String()),
			UnitPrice:   json.Number(item.UnitPrice.String()),
			LineTotal:   json.Number(item.LineTotal.String()),
		})
	}

	name := inv.CustomerName
	created := inv.CreatedAt.Format(time.RFC3339Nano)
	doc := invoiceDocument{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerName:   &name,
		PrimaryPhone:   inv.PrimaryPhone,
		SecondaryPhone: inv.SecondaryPhone,
		Address:        inv.Address,
		ShippingCost:   json.Number(inv.ShippingCost.String()),
		Notes:          inv.Notes,
		Items:          &items,
		TotalAmount:    json.Number(inv.TotalAmount.String()),
		CreatedAt:      &created,
		UpdatedAt:      inv.UpdatedAt.Format(time.RFC3339Nano),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode invoice: %w", err)
	}
	return nil
}

// ReadData parses an interchange document. Identity fields are returned as
// found; callers decide whether to keep them. Totals are recomputed.
func ReadData(r io.Reader) (*domain.Invoice, error) {
	var doc invoiceDocument
	if err := json.NewDecoder(io.LimitReader(r, maxDocumentSize)).Decode(&doc); err != nil {
		return nil, &domain.ParseError{Err: err}
	}

	if doc.CustomerName == nil {
		return nil, &domain.ParseError{Field: "customerName", Err: errMissing}
	}
	if doc.Items == nil {
		return nil, &domain.ParseError{Field: "items", Err: errMissing}
	}
	if doc.CreatedAt == nil {
		return nil, &domain.ParseError{Field: "createdAt", Err: errMissing}
	}

	createdAt, err := time.Parse(time.RFC3339Nano, *doc.CreatedAt)
	if err != nil {
		return nil, &domain.ParseError{Field: "createdAt", Err: err}
	}
	updatedAt := createdAt
	if doc.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, doc.UpdatedAt); err == nil {
			updatedAt = t
		}
	}

	shipping, err := parseNumber(doc.ShippingCost)
	if err != nil {
		return nil, &domain.ParseError{Field: "shippingCost", Err: err}
	}

	inv := &domain.Invoice{
		ID:             doc.ID,
		InvoiceNumber:  doc.InvoiceNumber,
		CustomerName:   *doc.CustomerName,
		PrimaryPhone:   doc.PrimaryPhone,
		SecondaryPhone: doc.SecondaryPhone,
		Address:        doc.Address,
		ShippingCost:   shipping,
		Notes:          doc.Notes,
		Items:          make([]*domain.InvoiceItem, 0, len(*doc.Items)),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}

	seen := make(map[string]bool, len(*doc.Items))
	for i, d := range *doc.Items {
		qty, err := parseNumber(d.Quantity)
		if err != nil {
			return nil, &domain.ParseError{Field: fmt.Sprintf("items[%d].quantity", i), Err: err}
		}
		price, err := parseNumber(d.UnitPrice)
		if err != nil {
			return nil, &domain.ParseError{Field: fmt.Sprintf("items[%d].unitPrice", i), Err: err}
		}
		// Item ids must be unique within an invoice; blank or repeated ones get a fresh id
		item := domain.NewItem()
		if d.ID != "" && !seen[d.ID] {
			item.ID = d.ID
		}
		seen[item.ID] = true
		item.Description = d.Description
		item.Quantity = qty
		item.UnitPrice = price
		inv.Items = append(inv.Items, item)
	}

	inv.Normalize()
	return inv, nil
}

var errMissing = errors.New("required field is missing")

func parseNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(n))
}
