package export

import (
	"fmt"
	"strings"

	"github.com/andy/invoicer/internal/domain"
)

// Seller is the issuing party printed at the top of every document
type Seller struct {
	Name    string
	Phone   string
	Address string
	Email   string
}

// Lines returns the non-empty seller fields in display order
func (s Seller) Lines() []string {
	return nonEmpty(s.Name, s.Address, s.Phone, s.Email)
}

// Row is one formatted item line
type Row struct {
	Index       int
	Description string
	Quantity    string
	UnitPrice   string
	LineTotal   string
}

// Preview is the visual layout of an invoice. PDF, PNG and the terminal
// preview all render from the same value so they show identical content.
type Preview struct {
	Title    string
	Number   string
	Date     string
	Seller   []string
	Customer []string
	Rows     []Row
	Shipping string
	Total    string
	Notes    string
}

// BuildPreview formats inv for display in the given currency
func BuildPreview(inv *domain.Invoice, seller Seller, currency string) *Preview {
	p := &Preview{
		Title:  "INVOICE",
		Number: inv.InvoiceNumber,
		Date:   inv.CreatedAt.Format("2006-01-02"),
		Seller: seller.Lines(),
		Customer: nonEmpty(
			inv.CustomerName,
			inv.Address,
			inv.PrimaryPhone,
			inv.SecondaryPhone,
		),
		Shipping: domain.FormatMoney(inv.ShippingCost, currency),
		Total:    domain.FormatMoney(inv.TotalAmount, currency),
		Notes:    strings.TrimSpace(inv.Notes),
	}

	for i, item := range inv.Items {
		if item == nil {
			continue
		}
		p.Rows = append(p.Rows, Row{
			Index:       i + 1,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   domain.FormatMoney(item.UnitPrice, currency),
			LineTotal:   domain.FormatMoney(domain.LineTotal(item.Quantity, item.UnitPrice), currency),
		})
	}

	return p
}

// Markdown renders the preview as a markdown document
func Markdown(p *Preview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s\n\n", p.Title, p.Number)
	fmt.Fprintf(&b, "**Date:** %s\n\n", p.Date)

	if len(p.Seller) > 0 {
		b.WriteString("**From**\n\n")
		for _, l := range p.Seller {
			fmt.Fprintf(&b, "%s  \n", escapeMarkdown(l))
		}
		b.WriteString("\n")
	}

	b.WriteString("**Bill to**\n\n")
	if len(p.Customer) == 0 {
		b.WriteString("_no customer details_\n\n")
	} else {
		for _, l := range p.Customer {
			fmt.Fprintf(&b, "%s  \n", escapeMarkdown(l))
		}
		b.WriteString("\n")
	}

	b.WriteString("| # | Description | Qty | Unit price | Amount |\n")
	b.WriteString("|---|---|--:|--:|--:|\n")
	for _, r := range p.Rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			r.Index, escapeMarkdown(r.Description), r.Quantity, r.UnitPrice, r.LineTotal)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "**Shipping:** %s  \n", p.Shipping)
	fmt.Fprintf(&b, "**Total:** %s\n", p.Total)

	if p.Notes != "" {
		fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(escapeMarkdown(p.Notes), "\n", "\n> "))
	}

	return b.String()
}

// TextLines renders the preview as plain lines for raster output
func TextLines(p *Preview) []string {
	lines := []string{fmt.Sprintf("%s  %s", p.Title, p.Number), "Date: " + p.Date, ""}

	if len(p.Seller) > 0 {
		lines = append(lines, "From:")
		lines = append(lines, indent(p.Seller)...)
		lines = append(lines, "")
	}
	lines = append(lines, "Bill to:")
	lines = append(lines, indent(p.Customer)...)
	lines = append(lines, "")

	lines = append(lines, fmt.Sprintf("%-3s %-30s %8s %14s %14s", "#", "Description", "Qty", "Unit price", "Amount"))
	for _, r := range p.Rows {
		lines = append(lines, fmt.Sprintf("%-3d %-30s %8s %14s %14s",
			r.Index, truncate(r.Description, 30), r.Quantity, r.UnitPrice, r.LineTotal))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("%57s %14s", "Shipping:", p.Shipping))
	lines = append(lines, fmt.Sprintf("%57s %14s", "Total:", p.Total))

	if p.Notes != "" {
		lines = append(lines, "", "Notes:")
		lines = append(lines, indent(strings.Split(p.Notes, "\n"))...)
	}
	return lines
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "#", `\#`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
