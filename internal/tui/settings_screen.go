package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/domain"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldSellerName = iota
	settingsFieldSellerPhone
	settingsFieldSellerAddress
	settingsFieldSellerEmail
	settingsFieldPrefix
	settingsFieldCurrency
	settingsFieldOutputDir
	settingsFieldCount
)

var settingsLabels = []string{
	"Business Name:", "Business Phone:", "Business Address:", "Business Email:",
	"Number Prefix:", "Currency:", "Output Directory:",
}

type settingsSavedMsg struct {
	cfg *config.Config
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func newSettingsField(placeholder, value string, limit, width int) textinput.Model {
	f := textinput.New()
	f.Placeholder = placeholder
	f.CharLimit = limit
	f.Width = width
	f.SetValue(value)
	return f
}

func (m *SettingsModel) initForm() {
	cfg := m.app.Config
	m.fields = make([]textinput.Model, settingsFieldCount)
	m.fields[settingsFieldSellerName] = newSettingsField("Acme Trading", cfg.Seller.Name, 100, 40)
	m.fields[settingsFieldSellerPhone] = newSettingsField("+20 100 000 0000", cfg.Seller.Phone, 40, 30)
	m.fields[settingsFieldSellerAddress] = newSettingsField("Street, City", cfg.Seller.Address, 200, 60)
	m.fields[settingsFieldSellerEmail] = newSettingsField("billing@example.com", cfg.Seller.Email, 100, 40)
	m.fields[settingsFieldPrefix] = newSettingsField("INV", cfg.Invoice.NumberPrefix, 20, 20)
	m.fields[settingsFieldCurrency] = newSettingsField(domain.DefaultCurrency, cfg.Invoice.Currency, 3, 10)
	m.fields[settingsFieldOutputDir] = newSettingsField("/path/to/invoices", cfg.Invoice.OutputDir, 256, 60)

	m.fieldFocus = settingsFieldSellerName
	m.fields[m.fieldFocus].Focus()
}

// formConfig validates the form and returns an updated copy of the config
func (m *SettingsModel) formConfig() (*config.Config, error) {
	value := func(i int) string { return strings.TrimSpace(m.fields[i].Value()) }

	next := *m.app.Config
	next.Seller = config.SellerConfig{
		Name:    value(settingsFieldSellerName),
		Phone:   value(settingsFieldSellerPhone),
		Address: value(settingsFieldSellerAddress),
		Email:   value(settingsFieldSellerEmail),
	}

	prefix := value(settingsFieldPrefix)
	if prefix == "" {
		return nil, fmt.Errorf("invoice prefix is required")
	}
	currency := strings.ToUpper(value(settingsFieldCurrency))
	if !domain.KnownCurrency(currency) {
		return nil, fmt.Errorf("unknown currency code %q", currency)
	}
	outputDir := value(settingsFieldOutputDir)
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	next.Invoice.NumberPrefix = prefix
	next.Invoice.Currency = currency
	next.Invoice.OutputDir = outputDir
	return &next, nil
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	next, err := m.formConfig()
	if err != nil {
		m.err = err
		return nil
	}
	path := m.app.ConfigPath
	return func() tea.Msg {
		if err := next.Save(path); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}
		return settingsSavedMsg{cfg: next}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		if msg.String() == "enter" {
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		*m.app.Config = *msg.cfg
		m.app.ApplyConfig()
		m.mode = settingsModeView
		m.statusMsg = "Settings saved"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += successStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config
	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		if value == "" {
			value = subtitleStyle.Render("(not set)")
		} else {
			value = valueStyle.Render(value)
		}
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), value)
	}

	s += subtitleStyle.Render("  Business Details") + "\n\n"
	s += row("Name:", cfg.Seller.Name)
	s += row("Phone:", cfg.Seller.Phone)
	s += row("Address:", cfg.Seller.Address)
	s += row("Email:", cfg.Seller.Email)

	s += "\n" + subtitleStyle.Render("  Invoice Settings") + "\n\n"
	s += row("Number Prefix:", cfg.Invoice.NumberPrefix)
	s += row("Currency:", cfg.Invoice.Currency)
	s += row("Output Directory:", cfg.Invoice.OutputDir)
	s += row("Database:", cfg.Storage.Path)

	s += "\n" + helpStyle.Render("  enter: edit settings  esc: back")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	for i, label := range settingsLabels {
		indicator := "  "
		style := labelStyle
		if i == m.fieldFocus {
			indicator = "> "
			style = focusedLabel
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, style.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}
