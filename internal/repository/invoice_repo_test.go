package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
)

func newTestRepo(t *testing.T) *InvoiceRepo {
	t.Helper()
	database, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.RunMigrations())
	return NewInvoiceRepo(database)
}

func sampleInvoice(number, customer string) *domain.Invoice {
	now := time.Date(2026, 10, 16, 9, 30, 15, 123456789, time.UTC)
	inv := domain.NewInvoice(number, now)
	inv.ApplyDetails(domain.Details{
		CustomerName: customer,
		PrimaryPhone: "0100",
		Address:      "1 Nile St",
		Notes:        "fragile",
	}, now)
	first := inv.Items[0]
	inv.UpdateItem(first.ID, "Widget", decimal.NewFromInt(2), decimal.RequireFromString("50.25"), now)
	second := inv.AddItem(now)
	inv.UpdateItem(second.ID, "Gadget", decimal.NewFromInt(1), decimal.NewFromInt(10), now)
	inv.SetShipping(decimal.NewFromInt(5), now)
	return inv
}

func assertSameInvoice(t *testing.T, want, got *domain.Invoice) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, want.CustomerName, got.CustomerName)
	assert.Equal(t, want.PrimaryPhone, got.PrimaryPhone)
	assert.Equal(t, want.SecondaryPhone, got.SecondaryPhone)
	assert.Equal(t, want.Address, got.Address)
	assert.Equal(t, want.Notes, got.Notes)
	assert.True(t, want.ShippingCost.Equal(got.ShippingCost), "shipping %s != %s", want.ShippingCost, got.ShippingCost)
	assert.True(t, want.TotalAmount.Equal(got.TotalAmount), "total %s != %s", want.TotalAmount, got.TotalAmount)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	require.Len(t, got.Items, len(want.Items))
	for i := range want.Items {
		assert.Equal(t, want.Items[i].ID, got.Items[i].ID)
		assert.Equal(t, want.Items[i].Description, got.Items[i].Description)
		assert.True(t, want.Items[i].Quantity.Equal(got.Items[i].Quantity))
		assert.True(t, want.Items[i].UnitPrice.Equal(got.Items[i].UnitPrice))
		assert.True(t, want.Items[i].LineTotal.Equal(got.Items[i].LineTotal))
	}
}

func TestInvoiceRepo_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	inv := sampleInvoice("INV-20261016-00000001", "Ada")

	require.NoError(t, repo.Save(ctx, inv))

	got, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	assertSameInvoice(t, inv, got)
	assert.Equal(t, "115.5", got.TotalAmount.String())

	byNumber, err := repo.GetByNumber(ctx, inv.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)
}

func TestInvoiceRepo_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByNumber(context.Background(), "INV-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceRepo_ListKeepsInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := sampleInvoice("INV-1", "Ada")
	b := sampleInvoice("INV-2", "Bob")
	c := sampleInvoice("INV-3", "Cy")
	for _, inv := range []*domain.Invoice{a, b, c} {
		require.NoError(t, repo.Save(ctx, inv))
	}

	// Updating an existing record keeps its position
	a.ApplyDetails(domain.Details{CustomerName: "Ada L.", PrimaryPhone: "0100", Address: "x"}, time.Now())
	a.RemoveItem(a.Items[0].ID, time.Now())
	require.NoError(t, repo.Save(ctx, a))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"INV-1", "INV-2", "INV-3"},
		[]string{list[0].InvoiceNumber, list[1].InvoiceNumber, list[2].InvoiceNumber})
	assertSameInvoice(t, a, list[0])
	assertSameInvoice(t, c, list[2])
	assert.Len(t, list[0].Items, 1)
	assert.Len(t, list[1].Items, 2)
}

func TestInvoiceRepo_ListEmpty(t *testing.T) {
	repo := newTestRepo(t)
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvoiceRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := sampleInvoice("INV-1", "Ada")
	b := sampleInvoice("INV-2", "Bob")
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	require.NoError(t, repo.Delete(ctx, a.ID))
	// Unknown ids are a no-op
	require.NoError(t, repo.Delete(ctx, "does-not-exist"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	var n int
	require.NoError(t, repo.db.QueryRow("SELECT COUNT(*) FROM invoice_items WHERE invoice_id = ?", a.ID).Scan(&n))
	assert.Zero(t, n)
}

func TestInvoiceRepo_DeleteAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sampleInvoice("INV-1", "Ada")))
	require.NoError(t, repo.Save(ctx, sampleInvoice("INV-2", "Bob")))

	require.NoError(t, repo.DeleteAll(ctx))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvoiceRepo_SaveIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	inv := sampleInvoice("INV-1", "Ada")
	require.NoError(t, repo.Save(ctx, inv))

	// Two items sharing an id violate the per-invoice uniqueness constraint
	broken := inv.Clone()
	broken.CustomerName = "Changed"
	broken.Items[1].ID = broken.Items[0].ID

	err := repo.Save(ctx, broken)
	var storageErr *domain.StorageError
	require.True(t, errors.As(err, &storageErr), "expected StorageError, got %v", err)
	assert.Equal(t, "save", storageErr.Op)

	got, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	assertSameInvoice(t, inv, got)
}

func TestInvoiceRepo_DuplicateNumberRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sampleInvoice("INV-1", "Ada")))

	err := repo.Save(ctx, sampleInvoice("INV-1", "Bob"))
	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInvoiceRepo_ClosedDatabase(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.db.Close())

	err := repo.Save(context.Background(), sampleInvoice("INV-1", "Ada"))
	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)

	_, err = repo.List(context.Background())
	assert.ErrorAs(t, err, &storageErr)
}
