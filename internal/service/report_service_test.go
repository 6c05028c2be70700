package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/domain"
)

func savedInvoice(repo *mockInvoiceRepo, customer string, total int64, created time.Time) {
	inv := domain.NewInvoice("INV-"+customer+created.Format("0102"), created)
	inv.CustomerName = customer
	inv.TotalAmount = decimal.NewFromInt(total)
	_ = repo.Save(context.Background(), inv)
}

func TestGetOverview(t *testing.T) {
	repo := newMockInvoiceRepo()
	savedInvoice(repo, "Ada", 100, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	savedInvoice(repo, "bob", 50, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC))
	savedInvoice(repo, "ADA", 300, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	savedInvoice(repo, "Bob", 20, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	savedInvoice(repo, "", 5, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

	o, err := NewReportService(repo).GetOverview(context.Background(), 2026)
	require.NoError(t, err)

	assert.Equal(t, 5, o.Count)
	assert.Equal(t, "475", o.Total.String())

	require.Len(t, o.ByCustomer, 3)
	assert.Equal(t, "Ada", o.ByCustomer[0].Customer)
	assert.Equal(t, 2, o.ByCustomer[0].Count)
	assert.Equal(t, "400", o.ByCustomer[0].Total.String())
	assert.Equal(t, "bob", o.ByCustomer[1].Customer)
	assert.Equal(t, "70", o.ByCustomer[1].Total.String())
	assert.Equal(t, "(no customer)", o.ByCustomer[2].Customer)

	assert.Equal(t, "150", o.ByMonth[time.January].String())
	assert.Equal(t, "305", o.ByMonth[time.March].String())
	_, hasDec := o.ByMonth[time.December]
	assert.False(t, hasDec)
}

func TestBuildOverview_Empty(t *testing.T) {
	o := BuildOverview(nil, 2026)
	assert.Zero(t, o.Count)
	assert.True(t, o.Total.IsZero())
	assert.Empty(t, o.ByCustomer)
}
