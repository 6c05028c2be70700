package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/andy/invoicer/internal/controller"
	"github.com/andy/invoicer/internal/domain"
)

// startJob runs a prepared controller job off the event loop. A Begin error
// is reported as an ErrorMsg instead.
func startJob(job *controller.Job, err error) tea.Cmd {
	if err != nil {
		return func() tea.Msg { return ErrorMsg{Err: err} }
	}
	return func() tea.Msg {
		return jobDoneMsg{res: job.Run(context.Background())}
	}
}

// errorCmd reports err on the notice line
func errorCmd(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

// describeError turns an error into the text shown to the user
func describeError(err error) string {
	var verr *domain.ValidationError
	var serr *domain.StorageError
	var perr *domain.ParseError
	switch {
	case errors.As(err, &verr):
		return "Cannot save: " + verr.Error()
	case errors.As(err, &serr):
		return "Could not save to storage: " + serr.Err.Error()
	case errors.As(err, &perr):
		return "Could not read invoice file: " + perr.Error()
	case errors.Is(err, controller.ErrBusy):
		return "Please wait, another operation is still running"
	default:
		return err.Error()
	}
}

// describeResult is the success notice for a finished job
func describeResult(res controller.Result) string {
	msg := describeOp(res)
	if res.ListErr != nil && msg != "" {
		msg += "; list refresh failed"
	}
	return msg
}

func describeOp(res controller.Result) string {
	switch res.Op {
	case controller.OpSave:
		return fmt.Sprintf("Saved %s", res.Invoice.InvoiceNumber)
	case controller.OpExport:
		return "Exported to " + res.Path
	case controller.OpLoad:
		return fmt.Sprintf("Loaded invoice as %s", res.Invoice.InvoiceNumber)
	case controller.OpDelete:
		return "Invoice deleted"
	case controller.OpDuplicate:
		return fmt.Sprintf("Duplicated as %s (unsaved)", res.Invoice.InvoiceNumber)
	default:
		return ""
	}
}

// parseAmount reads a non-negative decimal from a text field; blank is zero
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
