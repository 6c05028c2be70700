package controller

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
)

// Op identifies the kind of background work a Job performs
type Op int

const (
	OpNone Op = iota
	OpSave
	OpExport
	OpLoad
	OpRefresh
	OpDelete
	OpDuplicate
)

func (o Op) String() string {
	switch o {
	case OpSave:
		return "save"
	case OpExport:
		return "export"
	case OpLoad:
		return "load"
	case OpRefresh:
		return "refresh"
	case OpDelete:
		return "delete"
	case OpDuplicate:
		return "duplicate"
	default:
		return "none"
	}
}

// Job is a unit of I/O prepared by a Begin method. Run touches only the
// snapshot it was given and is safe to call from any goroutine.
type Job struct {
	Op  Op
	run func(ctx context.Context) Result
}

// Run performs the work. It must be called at most once.
func (j *Job) Run(ctx context.Context) Result {
	res := j.run(ctx)
	res.Op = j.Op
	return res
}

// Result is what a Job hands back to Finish
type Result struct {
	Op      Op
	Err     error
	Invoice *domain.Invoice   // saved or loaded invoice
	Saved   []*domain.Invoice // storage contents after the operation
	Path    string            // written export file

	// ListErr is set when the operation committed but reloading the saved
	// list afterwards failed. The previous list is kept.
	ListErr error
}

func (c *Controller) begin(op Op, run func(ctx context.Context) Result) (*Job, error) {
	if c.busy {
		return nil, ErrBusy
	}
	c.busy = true
	c.pending = op
	return &Job{Op: op, run: run}, nil
}

// BeginSave validates the current invoice and prepares a job that writes a
// snapshot of it. Validation failures return a *domain.ValidationError
// without touching the store.
func (c *Controller) BeginSave() (*Job, error) {
	if c.busy {
		return nil, ErrBusy
	}
	if c.mode == ModeList || c.current == nil {
		return nil, fmt.Errorf("%w: nothing to save", ErrInvalidTransition)
	}
	if err := c.current.Validate(); err != nil {
		return nil, err
	}

	snapshot := c.current.Clone()
	svc := c.svc
	return c.begin(OpSave, func(ctx context.Context) Result {
		if err := svc.Save(ctx, snapshot); err != nil {
			return Result{Err: err}
		}
		saved, err := svc.List(ctx)
		return Result{Invoice: snapshot, Saved: saved, ListErr: err}
	})
}

// BeginExport prepares a job that renders a snapshot of the current invoice
func (c *Controller) BeginExport(format export.Format) (*Job, error) {
	if c.busy {
		return nil, ErrBusy
	}
	if c.mode == ModeList || c.current == nil {
		return nil, fmt.Errorf("%w: nothing to export", ErrInvalidTransition)
	}

	snapshot := c.current.Clone()
	svc, dir := c.svc, c.outputDir
	return c.begin(OpExport, func(ctx context.Context) Result {
		path, err := svc.Export(ctx, snapshot, format, dir)
		return Result{Path: path, Err: err}
	})
}

// BeginLoadFromFile prepares a job that imports the JSON document at path.
// On success Finish makes it the current invoice in edit mode.
func (c *Controller) BeginLoadFromFile(path string) (*Job, error) {
	if c.busy {
		return nil, ErrBusy
	}
	if c.mode == ModeList {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.mode, ModeEdit)
	}

	svc := c.svc
	return c.begin(OpLoad, func(ctx context.Context) Result {
		f, err := os.Open(path)
		if err != nil {
			return Result{Err: &domain.ParseError{Err: err}}
		}
		defer f.Close()

		inv, err := svc.Import(ctx, f)
		return Result{Invoice: inv, Err: err}
	})
}

// BeginRefresh prepares a job that reloads the saved list
func (c *Controller) BeginRefresh() (*Job, error) {
	svc := c.svc
	return c.begin(OpRefresh, func(ctx context.Context) Result {
		saved, err := svc.List(ctx)
		return Result{Saved: saved, Err: err}
	})
}

// BeginDelete prepares a job that removes a saved invoice and reloads the list.
// Deleting an unknown id is not an error.
func (c *Controller) BeginDelete(id string) (*Job, error) {
	svc := c.svc
	return c.begin(OpDelete, func(ctx context.Context) Result {
		if err := svc.Delete(ctx, id); err != nil {
			return Result{Err: err}
		}
		saved, err := svc.List(ctx)
		return Result{Saved: saved, ListErr: err}
	})
}

// BeginDuplicate prepares a job that copies a saved invoice under a new
// identity. On success Finish opens the copy, unsaved, in create mode.
func (c *Controller) BeginDuplicate(id string) (*Job, error) {
	if c.busy {
		return nil, ErrBusy
	}
	if c.mode != ModeList {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.mode, ModeCreate)
	}

	svc := c.svc
	return c.begin(OpDuplicate, func(ctx context.Context) Result {
		inv, err := svc.Duplicate(ctx, id)
		return Result{Invoice: inv, Err: err}
	})
}

// Finish clears the busy flag and applies a job's result. On error the mode
// and current invoice are left as they were and the error is returned.
func (c *Controller) Finish(res Result) error {
	c.busy = false
	c.pending = OpNone

	if res.Err != nil {
		c.logger.Warn("operation failed", "op", res.Op.String(), "error", res.Err)
		return res.Err
	}

	if res.ListErr != nil {
		c.logger.Warn("list refresh failed", "op", res.Op.String(), "error", res.ListErr)
	} else if res.Saved != nil {
		c.saved = res.Saved
	}

	switch res.Op {
	case OpLoad:
		c.current = res.Invoice
		c.mode = ModeEdit
	case OpDuplicate:
		c.current = res.Invoice
		c.mode = ModeCreate
	}
	return nil
}

func (c *Controller) runNow(ctx context.Context, job *Job, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	res := job.Run(ctx)
	return res, c.Finish(res)
}

// Save validates and persists the current invoice synchronously
func (c *Controller) Save(ctx context.Context) error {
	job, err := c.BeginSave()
	_, err = c.runNow(ctx, job, err)
	return err
}

// Export writes the current invoice synchronously and returns the file path
func (c *Controller) Export(ctx context.Context, format export.Format) (string, error) {
	job, err := c.BeginExport(format)
	res, err := c.runNow(ctx, job, err)
	return res.Path, err
}

// LoadFromFile imports a JSON document synchronously
func (c *Controller) LoadFromFile(ctx context.Context, path string) error {
	job, err := c.BeginLoadFromFile(path)
	_, err = c.runNow(ctx, job, err)
	return err
}

// Refresh reloads the saved list synchronously
func (c *Controller) Refresh(ctx context.Context) error {
	job, err := c.BeginRefresh()
	_, err = c.runNow(ctx, job, err)
	return err
}

// DeleteInvoice removes a saved invoice synchronously and reloads the list
func (c *Controller) DeleteInvoice(ctx context.Context, id string) error {
	job, err := c.BeginDelete(id)
	_, err = c.runNow(ctx, job, err)
	return err
}

// Duplicate copies a saved invoice synchronously and opens it in create mode
func (c *Controller) Duplicate(ctx context.Context, id string) error {
	job, err := c.BeginDuplicate(id)
	_, err = c.runNow(ctx, job, err)
	return err
}
