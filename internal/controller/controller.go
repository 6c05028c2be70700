// Package controller owns the editor state: the current mode, the invoice
// being worked on and the cached list of saved invoices. It is driven from a
// single goroutine (the TUI event loop or a CLI command); slow work is handed
// out as Jobs that run elsewhere and report back through Finish.
package controller

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/service"
)

var (
	ErrBusy              = errors.New("another operation is still running")
	ErrInvalidTransition = errors.New("action not available in this mode")
	ErrReadOnly          = errors.New("invoice can only be changed in create or edit mode")
	ErrItemNotFound      = errors.New("item not found")
)

type Mode int

const (
	ModeList Mode = iota
	ModeCreate
	ModeEdit
	ModePreview
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	case ModePreview:
		return "preview"
	default:
		return "unknown"
	}
}

// Editing reports whether the current invoice may be mutated in this mode
func (m Mode) Editing() bool {
	return m == ModeCreate || m == ModeEdit
}

type Controller struct {
	svc       service.InvoiceService
	outputDir string
	logger    *slog.Logger
	now       func() time.Time

	mode    Mode
	current *domain.Invoice
	saved   []*domain.Invoice
	busy    bool
	pending Op
}

// New creates a controller in list mode with an empty saved list.
// Call Refresh (or run BeginRefresh) to load saved invoices.
func New(svc service.InvoiceService, outputDir string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		svc:       svc,
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
		mode:      ModeList,
	}
}

func (c *Controller) Mode() Mode { return c.mode }
func (c *Controller) Busy() bool { return c.busy }

// Pending returns the operation currently in flight, if Busy
func (c *Controller) Pending() Op { return c.pending }

// OutputDir is where exports are written
func (c *Controller) OutputDir() string { return c.outputDir }

// SetOutputDir changes where later exports are written
func (c *Controller) SetOutputDir(dir string) { c.outputDir = dir }

// Current returns a snapshot of the invoice being worked on, or nil in list
// mode before anything has been opened
func (c *Controller) Current() *domain.Invoice {
	return c.current.Clone()
}

// Saved returns a snapshot of the cached saved invoices in storage order
func (c *Controller) Saved() []*domain.Invoice {
	out := make([]*domain.Invoice, len(c.saved))
	for i, inv := range c.saved {
		out[i] = inv.Clone()
	}
	return out
}

func (c *Controller) transition(to Mode, allowed ...Mode) error {
	if c.busy {
		return ErrBusy
	}
	for _, from := range allowed {
		if c.mode == from {
			c.logger.Debug("mode change", "from", c.mode.String(), "to", to.String())
			c.mode = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.mode, to)
}

// NewInvoice starts a fresh invoice (list -> create)
func (c *Controller) NewInvoice() error {
	if c.busy {
		return ErrBusy
	}
	if c.mode != ModeList {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.mode, ModeCreate)
	}
	c.current = c.svc.NewInvoice()
	return c.transition(ModeCreate, ModeList)
}

// EditInvoice opens a saved invoice for editing (list -> edit)
func (c *Controller) EditInvoice(id string) error {
	return c.open(id, ModeEdit)
}

// ViewInvoice opens a saved invoice read-only (list -> preview)
func (c *Controller) ViewInvoice(id string) error {
	return c.open(id, ModePreview)
}

func (c *Controller) open(id string, to Mode) error {
	if c.busy {
		return ErrBusy
	}
	if c.mode != ModeList {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.mode, to)
	}
	inv := c.find(id)
	if inv == nil {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	c.current = inv.Clone()
	return c.transition(to, ModeList)
}

// Preview shows the current invoice (create|edit -> preview)
func (c *Controller) Preview() error {
	return c.transition(ModePreview, ModeCreate, ModeEdit)
}

// BackToEdit returns from the preview (preview -> edit)
func (c *Controller) BackToEdit() error {
	return c.transition(ModeEdit, ModePreview)
}

// BackToList leaves the editor (create|edit|preview -> list). Unsaved
// changes to the current invoice are kept in memory but not written.
func (c *Controller) BackToList() error {
	return c.transition(ModeList, ModeCreate, ModeEdit, ModePreview)
}

func (c *Controller) find(id string) *domain.Invoice {
	for _, inv := range c.saved {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

func (c *Controller) editable() error {
	if !c.mode.Editing() || c.current == nil {
		return ErrReadOnly
	}
	return nil
}

// UpdateDetails replaces the header fields of the current invoice
func (c *Controller) UpdateDetails(d domain.Details) error {
	if err := c.editable(); err != nil {
		return err
	}
	c.current.ApplyDetails(d, c.now())
	return nil
}

// SetShipping sets the shipping cost; negative values become zero
func (c *Controller) SetShipping(cost decimal.Decimal) error {
	if err := c.editable(); err != nil {
		return err
	}
	c.current.SetShipping(cost, c.now())
	return nil
}

// AddItem appends an empty item and returns its id
func (c *Controller) AddItem() (string, error) {
	if err := c.editable(); err != nil {
		return "", err
	}
	return c.current.AddItem(c.now()).ID, nil
}

// UpdateItem changes the item with the given id
func (c *Controller) UpdateItem(id, description string, quantity, unitPrice decimal.Decimal) error {
	if err := c.editable(); err != nil {
		return err
	}
	if !c.current.UpdateItem(id, description, quantity, unitPrice, c.now()) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return nil
}

// RemoveItem drops the item with the given id
func (c *Controller) RemoveItem(id string) error {
	if err := c.editable(); err != nil {
		return err
	}
	if !c.current.RemoveItem(id, c.now()) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return nil
}
