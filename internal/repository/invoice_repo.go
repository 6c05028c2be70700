package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

const invoiceColumns = `
	id, invoice_number, customer_name, primary_phone, secondary_phone,
	address, shipping_cost, notes, total_amount, created_at, updated_at
`

// Save writes the invoice row and all of its items in one transaction
func (r *InvoiceRepo) Save(ctx context.Context, invoice *domain.Invoice) error {
	if invoice == nil {
		return &domain.StorageError{Op: "save", Err: errors.New("nil invoice")}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			invoice_number = excluded.invoice_number,
			customer_name = excluded.customer_name,
			primary_phone = excluded.primary_phone,
			secondary_phone = excluded.secondary_phone,
			address = excluded.address,
			shipping_cost = excluded.shipping_cost,
			notes = excluded.notes,
			total_amount = excluded.total_amount,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.CustomerName,
		invoice.PrimaryPhone,
		invoice.SecondaryPhone,
		invoice.Address,
		invoice.ShippingCost.String(),
		invoice.Notes,
		invoice.TotalAmount.String(),
		formatTime(invoice.CreatedAt),
		formatTime(invoice.UpdatedAt),
	)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: fmt.Errorf("failed to upsert invoice: %w", err)}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", invoice.ID); err != nil {
		return &domain.StorageError{Op: "save", Err: fmt.Errorf("failed to clear line items: %w", err)}
	}

	itemQuery := `
		INSERT INTO invoice_items (
			invoice_id, position, id, description, quantity, unit_price, line_total
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for pos, item := range invoice.Items {
		if item == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, itemQuery,
			invoice.ID,
			pos,
			item.ID,
			item.Description,
			item.Quantity.String(),
			item.UnitPrice.String(),
			item.LineTotal.String(),
		)
		if err != nil {
			return &domain.StorageError{Op: "save", Err: fmt.Errorf("failed to insert line item %d: %w", pos, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "save", Err: fmt.Errorf("failed to commit: %w", err)}
	}

	return nil
}

// List retrieves all invoices in the order they were first saved
func (r *InvoiceRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+invoiceColumns+" FROM invoices ORDER BY seq")
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("failed to list invoices: %w", err)}
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	byID := make(map[string]*domain.Invoice)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "list", Err: err}
		}
		invoices = append(invoices, invoice)
		byID[invoice.ID] = invoice
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("error iterating invoices: %w", err)}
	}

	items, err := r.db.QueryContext(ctx, `
		SELECT invoice_id, id, description, quantity, unit_price, line_total
		FROM invoice_items
		ORDER BY invoice_id, position
	`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("failed to list line items: %w", err)}
	}
	defer items.Close()

	for items.Next() {
		var invoiceID string
		item, err := scanItem(items, &invoiceID)
		if err != nil {
			return nil, &domain.StorageError{Op: "list", Err: err}
		}
		if invoice, ok := byID[invoiceID]; ok {
			invoice.Items = append(invoice.Items, item)
		}
	}
	if err := items.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("error iterating line items: %w", err)}
	}

	return invoices, nil
}

// Get retrieves an invoice by ID
func (r *InvoiceRepo) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByNumber retrieves an invoice by invoice number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getWhere(ctx, "invoice_number = ?", number)
}

func (r *InvoiceRepo) getWhere(ctx context.Context, cond string, arg string) (*domain.Invoice, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE "+cond, arg)
	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", arg, domain.ErrNotFound)
		}
		return nil, &domain.StorageError{Op: "get", Err: err}
	}

	items, err := r.lineItems(ctx, invoice.ID)
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	invoice.Items = items

	return invoice, nil
}

func (r *InvoiceRepo) lineItems(ctx context.Context, invoiceID string) ([]*domain.InvoiceItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT invoice_id, id, description, quantity, unit_price, line_total
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.InvoiceItem, 0)
	for rows.Next() {
		var owner string
		item, err := scanItem(rows, &owner)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

// Delete removes an invoice and its items. Deleting an unknown id is a no-op.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "delete", Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", id); err != nil {
		return &domain.StorageError{Op: "delete", Err: fmt.Errorf("failed to delete line items: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id); err != nil {
		return &domain.StorageError{Op: "delete", Err: fmt.Errorf("failed to delete invoice: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "delete", Err: fmt.Errorf("failed to commit: %w", err)}
	}
	return nil
}

// DeleteAll wipes every invoice and item
func (r *InvoiceRepo) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "delete all", Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM invoice_items", "DELETE FROM invoices"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &domain.StorageError{Op: "delete all", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "delete all", Err: fmt.Errorf("failed to commit: %w", err)}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(s scanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{Items: make([]*domain.InvoiceItem, 0)}
	var createdAt, updatedAt string

	err := s.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.CustomerName,
		&invoice.PrimaryPhone,
		&invoice.SecondaryPhone,
		&invoice.Address,
		&invoice.ShippingCost,
		&invoice.Notes,
		&invoice.TotalAmount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return invoice, nil
}

func scanItem(s scanner, invoiceID *string) (*domain.InvoiceItem, error) {
	item := &domain.InvoiceItem{}
	err := s.Scan(
		invoiceID,
		&item.ID,
		&item.Description,
		&item.Quantity,
		&item.UnitPrice,
		&item.LineTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan line item: %w", err)
	}
	return item, nil
}
