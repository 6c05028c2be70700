package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/repository"
)

// InvoiceService manages the invoice lifecycle on top of the repository
type InvoiceService interface {
	// NewInvoice returns an unsaved invoice with one empty item
	NewInvoice() *domain.Invoice

	// Save validates the invoice and persists it
	Save(ctx context.Context, invoice *domain.Invoice) error

	// List returns all saved invoices in insertion order
	List(ctx context.Context) ([]*domain.Invoice, error)

	Get(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)

	// Delete removes an invoice; unknown ids are ignored
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error

	// Import reads an interchange document and gives it a fresh identity.
	// The result is not persisted.
	Import(ctx context.Context, r io.Reader) (*domain.Invoice, error)

	// Duplicate copies a saved invoice under a fresh identity. The copy is not persisted.
	Duplicate(ctx context.Context, id string) (*domain.Invoice, error)

	// Export writes the invoice to dir in the given format and returns the file path
	Export(ctx context.Context, invoice *domain.Invoice, format export.Format, dir string) (string, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	numbers     *domain.NumberGenerator
	exporter    *export.Exporter
	logger      *slog.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	numbers *domain.NumberGenerator,
	exporter *export.Exporter,
	logger *slog.Logger,
) InvoiceService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		numbers:     numbers,
		exporter:    exporter,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *invoiceService) NewInvoice() *domain.Invoice {
	return domain.NewInvoice(s.numbers.Next(), s.now())
}

func (s *invoiceService) Save(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}

	// Totals are derived, never trusted from the caller
	invoice.Recalculate()

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("save failed", "invoice", invoice.InvoiceNumber, "error", err)
		return err
	}

	s.logger.Info("invoice saved",
		"id", invoice.ID,
		"invoice", invoice.InvoiceNumber,
		"items", len(invoice.Items),
		"total", invoice.TotalAmount.String(),
	)
	return nil
}

func (s *invoiceService) List(ctx context.Context) ([]*domain.Invoice, error) {
	return s.invoiceRepo.List(ctx)
}

func (s *invoiceService) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoiceRepo.Get(ctx, id)
}

func (s *invoiceService) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByNumber(ctx, number)
}

func (s *invoiceService) Delete(ctx context.Context, id string) error {
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		s.logger.Error("delete failed", "id", id, "error", err)
		return err
	}
	s.logger.Info("invoice deleted", "id", id)
	return nil
}

func (s *invoiceService) DeleteAll(ctx context.Context) error {
	if err := s.invoiceRepo.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Warn("all invoices deleted")
	return nil
}

func (s *invoiceService) Import(ctx context.Context, r io.Reader) (*domain.Invoice, error) {
	parsed, err := export.ReadData(r)
	if err != nil {
		s.logger.Warn("import rejected", "error", err)
		return nil, err
	}

	invoice := parsed.WithNewIdentity(s.numbers.Next())
	invoice.UpdatedAt = s.now()

	s.logger.Info("invoice imported",
		"id", invoice.ID,
		"invoice", invoice.InvoiceNumber,
		"source_invoice", parsed.InvoiceNumber,
	)
	return invoice, nil
}

func (s *invoiceService) Duplicate(ctx context.Context, id string) (*domain.Invoice, error) {
	original, err := s.invoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoice := original.WithNewIdentity(s.numbers.Next())
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	s.logger.Info("invoice duplicated", "source_invoice", original.InvoiceNumber, "invoice", invoice.InvoiceNumber)
	return invoice, nil
}

func (s *invoiceService) Export(ctx context.Context, invoice *domain.Invoice, format export.Format, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, export.FileName(invoice.InvoiceNumber, format))

	// Write to a temp file in the same directory so a failed render never
	// leaves a truncated document under the final name
	tmp, err := os.CreateTemp(dir, ".invoice-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.exporter.Write(tmp, invoice, format); err != nil {
		tmp.Close()
		s.logger.Error("export failed", "invoice", invoice.InvoiceNumber, "format", string(format), "error", err)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	s.logger.Info("invoice exported", "invoice", invoice.InvoiceNumber, "format", string(format), "path", path)
	return path, nil
}
