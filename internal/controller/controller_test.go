package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/service"
)

// fakeRepo is an in-memory InvoiceRepository
type fakeRepo struct {
	mu       sync.Mutex
	invoices map[string]*domain.Invoice
	order    []string
	writes   int
	failSave bool
	failList bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{invoices: make(map[string]*domain.Invoice)}
}

func (r *fakeRepo) Save(ctx context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return &domain.StorageError{Op: "save", Err: errors.New("quota exceeded")}
	}
	r.writes++
	if _, ok := r.invoices[inv.ID]; !ok {
		r.order = append(r.order, inv.ID)
	}
	r.invoices[inv.ID] = inv.Clone()
	return nil
}

func (r *fakeRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList {
		return nil, &domain.StorageError{Op: "list", Err: errors.New("disk I/O error")}
	}
	out := make([]*domain.Invoice, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.invoices[id].Clone())
	}
	return out, nil
}

func (r *fakeRepo) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invoices[id]; ok {
		return inv.Clone(), nil
	}
	return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			return inv.Clone(), nil
		}
	}
	return nil, fmt.Errorf("invoice %s: %w", number, domain.ErrNotFound)
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[id]; !ok {
		return nil
	}
	r.writes++
	delete(r.invoices, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices = make(map[string]*domain.Invoice)
	r.order = nil
	return nil
}

func newTestController(t *testing.T) (*Controller, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := service.NewInvoiceService(
		repo,
		domain.NewNumberGenerator("INV"),
		export.NewExporter(export.Seller{Name: "Shop"}, "EGP"),
		nil,
	)
	return New(svc, t.TempDir(), nil), repo
}

func fillRequired(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.UpdateDetails(domain.Details{
		CustomerName: "Ada",
		PrimaryPhone: "0100",
		Address:      "Cairo",
	}))
}

func TestController_InitialState(t *testing.T) {
	c, _ := newTestController(t)
	assert.Equal(t, ModeList, c.Mode())
	assert.Nil(t, c.Current())
	assert.Empty(t, c.Saved())
	assert.False(t, c.Busy())
}

func TestController_TotalScenario(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.NewInvoice())
	assert.Equal(t, ModeCreate, c.Mode())

	itemID := c.Current().Items[0].ID
	require.NoError(t, c.UpdateItem(itemID, "Lamp", decimal.NewFromInt(2), decimal.NewFromInt(50)))
	require.NoError(t, c.SetShipping(decimal.NewFromInt(10)))
	assert.Equal(t, "110", c.Current().TotalAmount.String())

	require.NoError(t, c.UpdateItem(itemID, "Lamp", decimal.NewFromInt(3), decimal.NewFromInt(50)))
	assert.Equal(t, "160", c.Current().TotalAmount.String())
}

func TestController_MutatorsStampUpdatedAt(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.NewInvoice())
	stamp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return stamp }

	id, err := c.AddItem()
	require.NoError(t, err)
	assert.Equal(t, stamp, c.Current().UpdatedAt)
	assert.Len(t, c.Current().Items, 2)

	require.NoError(t, c.RemoveItem(id))
	assert.Len(t, c.Current().Items, 1)
	assert.ErrorIs(t, c.RemoveItem(id), ErrItemNotFound)
	assert.ErrorIs(t, c.UpdateItem("nope", "", decimal.Zero, decimal.Zero), ErrItemNotFound)
}

func TestController_Transitions(t *testing.T) {
	c, _ := newTestController(t)

	// list: only entry actions are valid
	assert.ErrorIs(t, c.Preview(), ErrInvalidTransition)
	assert.ErrorIs(t, c.BackToEdit(), ErrInvalidTransition)
	assert.ErrorIs(t, c.BackToList(), ErrInvalidTransition)

	require.NoError(t, c.NewInvoice())
	assert.ErrorIs(t, c.NewInvoice(), ErrInvalidTransition)
	assert.ErrorIs(t, c.BackToEdit(), ErrInvalidTransition)

	require.NoError(t, c.Preview())
	assert.Equal(t, ModePreview, c.Mode())
	assert.ErrorIs(t, c.Preview(), ErrInvalidTransition)

	require.NoError(t, c.BackToEdit())
	assert.Equal(t, ModeEdit, c.Mode())

	require.NoError(t, c.BackToList())
	assert.Equal(t, ModeList, c.Mode())
}

func TestController_PreviewIsReadOnly(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.NewInvoice())
	require.NoError(t, c.Preview())
	before := c.Current()

	assert.ErrorIs(t, c.UpdateDetails(domain.Details{CustomerName: "x"}), ErrReadOnly)
	assert.ErrorIs(t, c.SetShipping(decimal.NewFromInt(1)), ErrReadOnly)
	_, err := c.AddItem()
	assert.ErrorIs(t, err, ErrReadOnly)

	assert.Equal(t, before, c.Current())
}

func TestController_SaveValidationBlocksWrite(t *testing.T) {
	c, repo := newTestController(t)
	require.NoError(t, c.NewInvoice())
	require.NoError(t, c.UpdateDetails(domain.Details{PrimaryPhone: "0100", Address: "Cairo"}))
	before := c.Current()

	err := c.Save(context.Background())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("customerName"))
	assert.False(t, verr.Has("address"))
	assert.Zero(t, repo.writes)
	assert.False(t, c.Busy())
	assert.Equal(t, ModeCreate, c.Mode())
	assert.Equal(t, before, c.Current())
}

func TestController_SaveWithNoItems(t *testing.T) {
	c, repo := newTestController(t)
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)
	require.NoError(t, c.RemoveItem(c.Current().Items[0].ID))

	err := c.Save(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("items"))
	assert.Zero(t, repo.writes)
}

func TestController_SaveAndEditSaved(t *testing.T) {
	c, repo := newTestController(t)
	ctx := context.Background()
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)

	require.NoError(t, c.Save(ctx))
	assert.Equal(t, 1, repo.writes)
	assert.Equal(t, ModeCreate, c.Mode())
	require.Len(t, c.Saved(), 1)

	id := c.Current().ID
	require.NoError(t, c.BackToList())
	require.NoError(t, c.EditInvoice(id))
	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, "Ada", c.Current().CustomerName)

	// Saving again updates the same record
	require.NoError(t, c.UpdateDetails(domain.Details{CustomerName: "Ada L.", PrimaryPhone: "1", Address: "2"}))
	require.NoError(t, c.Save(ctx))
	require.Len(t, c.Saved(), 1)
	assert.Equal(t, "Ada L.", c.Saved()[0].CustomerName)
}

func TestController_StorageErrorLeavesStateUnchanged(t *testing.T) {
	c, repo := newTestController(t)
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)
	repo.failSave = true
	before := c.Current()

	err := c.Save(context.Background())

	var serr *domain.StorageError
	require.ErrorAs(t, err, &serr)
	assert.False(t, c.Busy())
	assert.Equal(t, ModeCreate, c.Mode())
	assert.Equal(t, before, c.Current())
	assert.Empty(t, c.Saved())
}

func TestController_ListFailureAfterSaveIsNotFatal(t *testing.T) {
	c, repo := newTestController(t)
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)
	require.NoError(t, c.Save(context.Background()))
	require.Len(t, c.Saved(), 1)

	require.NoError(t, c.SetShipping(decimal.NewFromInt(7)))
	repo.failList = true

	job, err := c.BeginSave()
	require.NoError(t, err)
	res := job.Run(context.Background())
	require.NoError(t, c.Finish(res))

	var serr *domain.StorageError
	assert.ErrorAs(t, res.ListErr, &serr)
	assert.Equal(t, 2, repo.writes)
	assert.False(t, c.Busy())
	assert.Equal(t, ModeCreate, c.Mode())
	require.Len(t, c.Saved(), 1)
	assert.True(t, c.Saved()[0].ShippingCost.IsZero(), "stale list is kept until the next refresh")

	repo.failList = false
	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, c.Saved()[0].ShippingCost.Equal(decimal.NewFromInt(7)))
}

func TestController_BusyRejectsSecondJob(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)

	job, err := c.BeginSave()
	require.NoError(t, err)
	assert.True(t, c.Busy())
	assert.Equal(t, OpSave, c.Pending())

	_, err = c.BeginSave()
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.BeginExport(export.FormatJSON)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.BeginLoadFromFile("x.json")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.BackToList(), ErrBusy)

	res := job.Run(context.Background())
	require.NoError(t, c.Finish(res))
	assert.False(t, c.Busy())
	assert.Equal(t, OpNone, c.Pending())
}

func TestController_SaveSnapshotIgnoresLaterEdits(t *testing.T) {
	c, repo := newTestController(t)
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)

	job, err := c.BeginSave()
	require.NoError(t, err)

	// Keep editing while the job is out
	require.NoError(t, c.UpdateDetails(domain.Details{CustomerName: "Later", PrimaryPhone: "1", Address: "2"}))

	require.NoError(t, c.Finish(job.Run(context.Background())))
	stored, err := repo.Get(context.Background(), c.Current().ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.CustomerName)
	assert.Equal(t, "Later", c.Current().CustomerName)
}

func TestController_DeleteInvoice(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)
	require.NoError(t, c.Save(ctx))
	id := c.Current().ID
	require.NoError(t, c.BackToList())

	// Unknown id leaves the list alone
	require.NoError(t, c.DeleteInvoice(ctx, "missing"))
	assert.Len(t, c.Saved(), 1)

	require.NoError(t, c.DeleteInvoice(ctx, id))
	assert.Empty(t, c.Saved())
	assert.ErrorIs(t, c.EditInvoice(id), domain.ErrNotFound)
}

func TestController_ViewSaved(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)
	require.NoError(t, c.Save(ctx))
	id := c.Current().ID
	require.NoError(t, c.BackToList())

	require.NoError(t, c.ViewInvoice(id))
	assert.Equal(t, ModePreview, c.Mode())
	require.NoError(t, c.BackToEdit())
	assert.Equal(t, ModeEdit, c.Mode())
}

func TestController_ExportAndLoadRoundTrip(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)
	itemID := c.Current().Items[0].ID
	require.NoError(t, c.UpdateItem(itemID, "Lamp", decimal.NewFromInt(2), decimal.NewFromInt(50)))
	require.NoError(t, c.SetShipping(decimal.NewFromInt(10)))
	original := c.Current()

	path, err := c.Export(ctx, export.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.OutputDir(), export.FileName(original.InvoiceNumber, export.FormatJSON)), path)

	require.NoError(t, c.Preview())
	require.NoError(t, c.LoadFromFile(ctx, path))

	loaded := c.Current()
	assert.Equal(t, ModeEdit, c.Mode())
	assert.NotEqual(t, original.ID, loaded.ID)
	assert.NotEqual(t, original.InvoiceNumber, loaded.InvoiceNumber)
	assert.Equal(t, original.CustomerName, loaded.CustomerName)
	assert.Equal(t, original.Address, loaded.Address)
	assert.True(t, original.ShippingCost.Equal(loaded.ShippingCost))
	assert.True(t, original.TotalAmount.Equal(loaded.TotalAmount))
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, original.Items[0].ID, loaded.Items[0].ID)
	assert.Equal(t, original.Items[0].Description, loaded.Items[0].Description)
}

func TestController_LoadBadFileLeavesStateUnchanged(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()
	require.NoError(t, c.NewInvoice())
	before := c.Current()

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"customerName": "x"}`), 0644))

	var perr *domain.ParseError
	require.ErrorAs(t, c.LoadFromFile(ctx, bad), &perr)
	require.ErrorAs(t, c.LoadFromFile(ctx, filepath.Join(t.TempDir(), "missing.json")), &perr)

	assert.Equal(t, ModeCreate, c.Mode())
	assert.Equal(t, before, c.Current())
	assert.False(t, c.Busy())
}

func TestController_LoadNotAllowedFromList(t *testing.T) {
	c, _ := newTestController(t)
	_, err := c.BeginLoadFromFile("x.json")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, c.Busy())
}

func TestController_Duplicate(t *testing.T) {
	c, repo := newTestController(t)
	ctx := context.Background()
	require.NoError(t, c.NewInvoice())
	fillRequired(t, c)
	require.NoError(t, c.Save(ctx))
	original := c.Current()
	require.NoError(t, c.BackToList())

	require.NoError(t, c.Duplicate(ctx, original.ID))

	dup := c.Current()
	assert.Equal(t, ModeCreate, c.Mode())
	assert.NotEqual(t, original.ID, dup.ID)
	assert.NotEqual(t, original.InvoiceNumber, dup.InvoiceNumber)
	assert.Equal(t, original.CustomerName, dup.CustomerName)
	assert.Equal(t, 1, repo.writes)

	require.NoError(t, c.BackToList())
	assert.ErrorIs(t, c.Duplicate(ctx, "missing"), domain.ErrNotFound)
	assert.Equal(t, ModeList, c.Mode())
}

func TestController_RefreshPicksUpExternalWrites(t *testing.T) {
	c, repo := newTestController(t)
	inv := domain.NewInvoice("INV-X", time.Now())
	require.NoError(t, repo.Save(context.Background(), inv))

	require.NoError(t, c.Refresh(context.Background()))
	require.Len(t, c.Saved(), 1)
	assert.Equal(t, "INV-X", c.Saved()[0].InvoiceNumber)
}

func TestController_SnapshotsAreCopies(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.NewInvoice())

	snap := c.Current()
	snap.CustomerName = "mutated"
	snap.Items[0].Description = "mutated"

	assert.Empty(t, c.Current().CustomerName)
	assert.Empty(t, c.Current().Items[0].Description)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "list", ModeList.String())
	assert.Equal(t, "create", ModeCreate.String())
	assert.Equal(t, "edit", ModeEdit.String())
	assert.Equal(t, "preview", ModePreview.String())
	assert.True(t, ModeEdit.Editing())
	assert.False(t, ModePreview.Editing())
}
