package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
)

// CustomerSummary aggregates the invoices of one customer
type CustomerSummary struct {
	Customer string
	Count    int
	Total    decimal.Decimal
}

// Overview is the report shown on the reports screen and by the report command
type Overview struct {
	domain.Summary
	ByCustomer []CustomerSummary
	ByMonth    map[time.Month]decimal.Decimal
	Year       int
}

// ReportService provides aggregations over saved invoices
type ReportService interface {
	GetOverview(ctx context.Context, year int) (*Overview, error)
}

type reportService struct {
	invoiceRepo repository.InvoiceRepository
}

// NewReportService creates a new report service
func NewReportService(invoiceRepo repository.InvoiceRepository) ReportService {
	return &reportService{invoiceRepo: invoiceRepo}
}

// GetOverview totals every saved invoice, groups them by customer (largest
// total first) and sums the given year's invoices per month of creation
func (s *reportService) GetOverview(ctx context.Context, year int) (*Overview, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildOverview(invoices, year), nil
}

// BuildOverview aggregates an already loaded invoice list
func BuildOverview(invoices []*domain.Invoice, year int) *Overview {
	o := &Overview{
		Summary: domain.Summarize(invoices),
		ByMonth: make(map[time.Month]decimal.Decimal),
		Year:    year,
	}

	byCustomer := make(map[string]*CustomerSummary)
	order := make([]string, 0)
	for _, inv := range invoices {
		name := inv.DisplayName()
		key := strings.ToLower(name)
		cs, ok := byCustomer[key]
		if !ok {
			cs = &CustomerSummary{Customer: name, Total: decimal.Zero}
			byCustomer[key] = cs
			order = append(order, key)
		}
		cs.Count++
		cs.Total = cs.Total.Add(inv.TotalAmount)

		if inv.CreatedAt.Year() == year {
			m := inv.CreatedAt.Month()
			o.ByMonth[m] = o.ByMonth[m].Add(inv.TotalAmount)
		}
	}

	for _, key := range order {
		o.ByCustomer = append(o.ByCustomer, *byCustomer[key])
	}
	sort.SliceStable(o.ByCustomer, func(i, j int) bool {
		return o.ByCustomer[i].Total.GreaterThan(o.ByCustomer[j].Total)
	})

	return o
}
