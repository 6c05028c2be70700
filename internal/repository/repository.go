package repository

import (
	"context"

	"github.com/andy/invoicer/internal/domain"
)

// InvoiceRepository manages invoice persistence
type InvoiceRepository interface {
	// Save upserts the invoice and replaces its items atomically
	Save(ctx context.Context, invoice *domain.Invoice) error
	// List returns every stored invoice in insertion order
	List(ctx context.Context) ([]*domain.Invoice, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	// Delete removes an invoice and its items; unknown ids are ignored
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
