// Package export renders invoices to documents (PDF, PNG, XLSX) and to the
// JSON interchange format, and reads that format back.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/andy/invoicer/internal/domain"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported export format
var Formats = []Format{FormatPDF, FormatPNG, FormatJSON, FormatXLSX}

// ParseFormat accepts a format name case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want pdf, png, json or xlsx)", s)
}

// FileName is the name an exported invoice is written under
func FileName(invoiceNumber string, f Format) string {
	return fmt.Sprintf("invoice-%s.%s", invoiceNumber, f)
}

// Exporter renders invoices with a fixed seller block and display currency
type Exporter struct {
	Seller   Seller
	Currency string
}

// NewExporter creates an Exporter; a blank currency falls back to the default
func NewExporter(seller Seller, currency string) *Exporter {
	if strings.TrimSpace(currency) == "" {
		currency = domain.DefaultCurrency
	}
	return &Exporter{Seller: seller, Currency: currency}
}

// Preview builds the shared layout for inv
func (e *Exporter) Preview(inv *domain.Invoice) *Preview {
	return BuildPreview(inv, e.Seller, e.Currency)
}

// Write renders inv in the given format to w
func (e *Exporter) Write(w io.Writer, inv *domain.Invoice, f Format) error {
	switch f {
	case FormatPDF:
		return WritePDF(w, e.Preview(inv))
	case FormatPNG:
		return WritePNG(w, e.Preview(inv))
	case FormatJSON:
		return WriteData(w, inv)
	case FormatXLSX:
		return WriteXLSX(w, inv, e.Currency)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}
