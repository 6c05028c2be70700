package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/controller"
	"github.com/andy/invoicer/internal/domain"
)

func newTestModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = filepath.Join(root, "invoicer.db")
	cfg.Invoice.OutputDir = filepath.Join(root, "exports")
	cfg.Log.File = ""

	a, err := app.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	m := New(a)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), a
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m Model, k string) (Model, tea.Cmd) {
	next, cmd := m.Update(keyPress(k))
	return next.(Model), cmd
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = press(m, string(r))
	}
	return m
}

// runCmd executes cmd and flattens batches into the produced messages
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestNewInvoiceOpensEditor(t *testing.T) {
	m, a := newTestModel(t)
	assert.Equal(t, ScreenInvoices, m.currentScreen())

	m, _ = press(m, "n")
	assert.Equal(t, controller.ModeCreate, a.Controller.Mode())
	assert.Equal(t, ScreenEditor, m.currentScreen())

	m = typeText(m, "Acme")
	assert.Equal(t, "Acme", a.Controller.Current().CustomerName)

	m, _ = press(m, "esc")
	assert.Equal(t, controller.ModeList, a.Controller.Mode())
	assert.Equal(t, ScreenInvoices, m.currentScreen())
}

func TestEditorSave(t *testing.T) {
	m, a := newTestModel(t)

	m, _ = press(m, "n")
	m = typeText(m, "Acme")
	m, _ = press(m, "tab")
	m = typeText(m, "0100")
	m, _ = press(m, "tab")
	m, _ = press(m, "tab")
	m = typeText(m, "Main St")
	m, _ = press(m, "tab") // notes
	m, _ = press(m, "tab") // shipping
	m = typeText(m, "5")
	m, _ = press(m, "tab") // first item description
	m = typeText(m, "Widget")
	m, _ = press(m, "tab")
	m = typeText(m, "2")
	m, _ = press(m, "tab")
	m = typeText(m, "10")

	assert.Equal(t, "25", a.Controller.Current().TotalAmount.String())

	m, cmd := press(m, "ctrl+s")
	assert.True(t, a.Controller.Busy())

	var done *jobDoneMsg
	for _, msg := range runCmd(cmd) {
		if d, ok := msg.(jobDoneMsg); ok {
			done = &d
		}
	}
	require.NotNil(t, done)
	require.NoError(t, done.res.Err)

	next, _ := m.Update(*done)
	m = next.(Model)
	assert.False(t, a.Controller.Busy())
	assert.Nil(t, m.err)
	assert.Contains(t, m.notice, "Saved")
	require.Len(t, a.Controller.Saved(), 1)
	assert.Equal(t, "Acme", a.Controller.Saved()[0].CustomerName)
}

func TestEditorSaveValidationError(t *testing.T) {
	m, a := newTestModel(t)

	m, _ = press(m, "n")
	m, cmd := press(m, "ctrl+s")
	assert.False(t, a.Controller.Busy())

	for _, msg := range runCmd(cmd) {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	require.Error(t, m.err)
	assert.Contains(t, describeError(m.err), "Cannot save")
	assert.Empty(t, a.Controller.Saved())
}

func TestReportsOverlay(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(m, "r")
	assert.Equal(t, ScreenReports, m.currentScreen())

	m, _ = press(m, "esc")
	assert.Equal(t, ScreenInvoices, m.currentScreen())

	m, _ = press(m, ",")
	assert.Equal(t, ScreenSettings, m.currentScreen())
}

func TestQuitFromList(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := press(m, "q")
	msgs := runCmd(cmd)
	assert.Contains(t, msgs, tea.QuitMsg{})
}

func TestViewShowsHeader(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "invoicer - Invoices")
}

func TestDescribeResult_ListRefreshFailed(t *testing.T) {
	res := controller.Result{
		Op:      controller.OpSave,
		Invoice: &domain.Invoice{InvoiceNumber: "INV-1"},
		ListErr: errors.New("disk I/O error"),
	}
	assert.Equal(t, "Saved INV-1; list refresh failed", describeResult(res))

	res.ListErr = nil
	assert.Equal(t, "Saved INV-1", describeResult(res))
}
