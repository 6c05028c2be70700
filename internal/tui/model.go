package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/controller"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenInvoices Screen = iota
	ScreenEditor
	ScreenPreview
	ScreenReports
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenInvoices:
		return "Invoices"
	case ScreenEditor:
		return "Editor"
	case ScreenPreview:
		return "Preview"
	case ScreenReports:
		return "Reports"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model. The controller's mode decides which
// of the list, editor and preview screens is shown; reports and settings
// are opened on top of the list.
type Model struct {
	app    *app.App
	ctrl   *controller.Controller
	width  int
	height int

	invoices *InvoicesModel
	editor   *EditorModel
	preview  *PreviewModel

	// Screen models (lazy initialized)
	reports  tea.Model
	settings tea.Model

	// ScreenInvoices when no overlay is open
	overlay Screen

	// last observed controller state, used to reload the editor and preview
	lastMode controller.Mode
	lastID   string

	spinner  spinner.Model
	spinning bool

	notice  string
	err     error
	quitMsg string // shown when quit is blocked
}

// New creates a new root model
func New(a *app.App) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	return Model{
		app:      a,
		ctrl:     a.Controller,
		invoices: NewInvoicesModel(a),
		editor:   NewEditorModel(a),
		preview:  NewPreviewModel(a),
		overlay:  ScreenInvoices,
		lastMode: a.Controller.Mode(),
		spinner:  sp,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.invoices.Init()
}

// currentScreen derives the visible screen from the controller mode
func (m *Model) currentScreen() Screen {
	switch m.ctrl.Mode() {
	case controller.ModeCreate, controller.ModeEdit:
		return ScreenEditor
	case controller.ModePreview:
		return ScreenPreview
	default:
		return m.overlay
	}
}

// openOverlay lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) openOverlay(screen Screen) tea.Cmd {
	m.overlay = screen
	switch screen {
	case ScreenReports:
		if m.reports == nil {
			m.reports = NewReportsModel(m.app)
			return m.reports.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenSettings:
		if m.settings == nil {
			m.settings = NewSettingsModel(m.app)
			return m.settings.Init()
		}
	case ScreenInvoices:
		return func() tea.Msg { return RefreshDataMsg{} }
	}
	return nil
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global keys (q, r, ",") are passed to the screen instead.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) screenModel(s Screen) tea.Model {
	switch s {
	case ScreenInvoices:
		return m.invoices
	case ScreenEditor:
		return m.editor
	case ScreenPreview:
		return m.preview
	case ScreenReports:
		return m.reports
	case ScreenSettings:
		return m.settings
	}
	return nil
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screenModel(m.currentScreen()).(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.observe())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.ctrl.Mode() == controller.ModePreview {
			m.preview.render(m.ctrl.Current(), m.contentWidth(), m.previewHeight())
		}
		return nil

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			m.spinning = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case jobDoneMsg:
		if err := m.ctrl.Finish(msg.res); err != nil {
			m.err = err
			m.notice = ""
			return nil
		}
		m.err = nil
		m.notice = describeResult(msg.res)
		return nil

	case ErrorMsg:
		m.err = msg.Err
		m.notice = ""
		return nil

	case SwitchScreenMsg:
		if m.ctrl.Mode() != controller.ModeList {
			return nil
		}
		return m.openOverlay(msg.Screen)

	case tea.KeyMsg:
		m.quitMsg = ""
		m.notice = ""
		m.err = nil

		if key.Matches(msg, DefaultKeyMap.Force) {
			return tea.Quit
		}

		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				if m.ctrl.Busy() {
					m.quitMsg = "An operation is still running. Wait for it to finish before quitting."
					return nil
				}
				return tea.Quit

			case m.currentScreen() == ScreenInvoices && key.Matches(msg, DefaultKeyMap.Reports):
				return m.openOverlay(ScreenReports)

			case m.currentScreen() == ScreenInvoices && key.Matches(msg, DefaultKeyMap.Settings):
				return m.openOverlay(ScreenSettings)

			case m.overlay != ScreenInvoices && m.ctrl.Mode() == controller.ModeList &&
				key.Matches(msg, DefaultKeyMap.Back):
				return m.openOverlay(ScreenInvoices)
			}
		}
	}

	// Route message to current screen
	var cmd tea.Cmd
	switch m.currentScreen() {
	case ScreenInvoices:
		_, cmd = m.invoices.Update(msg)
	case ScreenEditor:
		_, cmd = m.editor.Update(msg)
	case ScreenPreview:
		_, cmd = m.preview.Update(msg)
	case ScreenReports:
		if m.reports != nil {
			m.reports, cmd = m.reports.Update(msg)
		}
	case ScreenSettings:
		if m.settings != nil {
			m.settings, cmd = m.settings.Update(msg)
		}
	}
	return cmd
}

// observe reacts to controller changes made during the last update: it
// reloads the editor or preview when the mode or current invoice changed and
// starts the spinner when a job began.
func (m *Model) observe() tea.Cmd {
	var cmds []tea.Cmd

	mode := m.ctrl.Mode()
	current := m.ctrl.Current()
	id := ""
	if current != nil {
		id = current.ID
	}

	if mode != m.lastMode || id != m.lastID {
		switch mode {
		case controller.ModeCreate, controller.ModeEdit:
			cmds = append(cmds, m.editor.load(current, 0))
		case controller.ModePreview:
			m.preview.render(current, m.contentWidth(), m.previewHeight())
		case controller.ModeList:
			m.overlay = ScreenInvoices
		}
		m.lastMode, m.lastID = mode, id
	}

	if m.ctrl.Busy() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *Model) contentWidth() int {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) previewHeight() int {
	return m.height - 14
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	screen := m.currentScreen()

	// Header
	header := headerStyle.Render(fmt.Sprintf("invoicer - %s", screen.String()))

	// Footer with navigation keys
	footerText := "[N]ew  [E]dit  [V]iew  [R]eports  [,] Settings  [Q]uit"
	if screen != ScreenInvoices {
		footerText = "[esc] Back  [ctrl+c] Quit"
	}
	footer := footerStyle.Render(footerText)

	content := "Loading..."
	if sm := m.screenModel(screen); sm != nil {
		content = sm.View()
	}

	// Status line: busy spinner, then warnings, errors and notices
	status := ""
	switch {
	case m.ctrl.Busy():
		status = "\n" + m.spinner.View() + " " + busyLabel(m.ctrl.Pending())
	case m.quitMsg != "":
		status = warningStyle.Render("\n" + m.quitMsg)
	case m.err != nil:
		status = errorStyle.Render("\nError: " + describeError(m.err))
	case m.notice != "":
		status = successStyle.Render("\n" + m.notice)
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, status, divider, footer)

	// Wrap in border, sized to terminal
	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

func busyLabel(op controller.Op) string {
	switch op {
	case controller.OpSave:
		return "Saving..."
	case controller.OpExport:
		return "Exporting..."
	case controller.OpLoad:
		return "Loading file..."
	case controller.OpDelete:
		return "Deleting..."
	case controller.OpDuplicate:
		return "Duplicating..."
	default:
		return "Loading..."
	}
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
