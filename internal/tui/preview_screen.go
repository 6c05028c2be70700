package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/controller"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
)

const previewWrap = 80

// PreviewModel renders the current invoice read-only, the same layout the
// document exports use
type PreviewModel struct {
	app      *app.App
	ctrl     *controller.Controller
	viewport viewport.Model
	ready    bool
}

// NewPreviewModel creates the preview screen
func NewPreviewModel(a *app.App) *PreviewModel {
	return &PreviewModel{app: a, ctrl: a.Controller}
}

func (m *PreviewModel) Init() tea.Cmd {
	return nil
}

// render lays out inv into the viewport. Falls back to plain text when the
// markdown renderer fails.
func (m *PreviewModel) render(inv *domain.Invoice, width, height int) {
	if inv == nil {
		return
	}
	if height < 5 {
		height = 5
	}
	wrap := previewWrap
	if width > 0 && width < wrap {
		wrap = width
	}

	p := m.app.Exporter.Preview(inv)
	content := ""
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		content, err = r.Render(export.Markdown(p))
	}
	if err != nil {
		for _, line := range export.TextLines(p) {
			content += line + "\n"
		}
	}

	m.viewport = viewport.New(wrap, height)
	m.viewport.SetContent(content)
	m.ready = true
}

func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if f, ok := exportFormatFor(keyMsg); ok {
		return m, startJob(m.ctrl.BeginExport(f))
	}

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Edit):
		return m, errorCmd(m.ctrl.BackToEdit())
	case key.Matches(keyMsg, DefaultKeyMap.Back):
		return m, errorCmd(m.ctrl.BackToList())
	case key.Matches(keyMsg, DefaultKeyMap.Save):
		return m, startJob(m.ctrl.BeginSave())
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(keyMsg)
	return m, cmd
}

func (m *PreviewModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	return titleStyle.Render("Preview") + "\n" +
		m.viewport.View() + "\n" +
		helpStyle.Render("  e: edit  p/g/j/x: export pdf/png/json/xlsx  ctrl+s: save  esc: list")
}
