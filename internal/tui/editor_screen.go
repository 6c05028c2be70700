package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/controller"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
)

// header field indices; item fields follow, three per row
const (
	fieldCustomer = iota
	fieldPhone
	fieldPhone2
	fieldAddress
	fieldNotes
	fieldShipping
	headerFieldCount
)

const (
	itemFieldDescription = iota
	itemFieldQuantity
	itemFieldPrice
	itemFieldCount
)

var headerLabels = []string{
	"Customer Name *", "Primary Phone *", "Secondary Phone", "Address *", "Notes", "Shipping",
}

type editorPrompt int

const (
	promptNone editorPrompt = iota
	promptLoad
	promptExport
)

type itemRow struct {
	id     string
	fields [itemFieldCount]textinput.Model
}

// EditorModel edits the header and line items of the current invoice.
// Every keystroke is pushed into the controller so totals stay live.
type EditorModel struct {
	app  *app.App
	ctrl *controller.Controller

	header [headerFieldCount]textinput.Model
	items  []itemRow
	focus  int

	// per-field input problems, keyed by focus index
	invalid map[int]string

	prompt      editorPrompt
	promptInput textinput.Model
}

// NewEditorModel creates the invoice editor
func NewEditorModel(a *app.App) *EditorModel {
	return &EditorModel{app: a, ctrl: a.Controller, invalid: make(map[int]string)}
}

// IsCapturingInput is always true: every printable key goes into a field
func (m *EditorModel) IsCapturingInput() bool {
	return true
}

func (m *EditorModel) Init() tea.Cmd {
	return nil
}

func newField(placeholder, value string, limit, width int) textinput.Model {
	f := textinput.New()
	f.Placeholder = placeholder
	f.CharLimit = limit
	f.Width = width
	f.SetValue(value)
	return f
}

// amountText shows zero as an empty field so the placeholder is visible
func amountText(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// load rebuilds every input from inv and focuses the given field
func (m *EditorModel) load(inv *domain.Invoice, focus int) tea.Cmd {
	if inv == nil {
		return nil
	}
	m.header[fieldCustomer] = newField("Customer name", inv.CustomerName, 100, 40)
	m.header[fieldPhone] = newField("Phone", inv.PrimaryPhone, 40, 24)
	m.header[fieldPhone2] = newField("Optional", inv.SecondaryPhone, 40, 24)
	m.header[fieldAddress] = newField("Delivery address", inv.Address, 200, 60)
	m.header[fieldNotes] = newField("Optional", inv.Notes, 500, 60)
	m.header[fieldShipping] = newField("0.00", amountText(inv.ShippingCost), 20, 12)

	m.items = make([]itemRow, len(inv.Items))
	for i, item := range inv.Items {
		m.items[i] = itemRow{id: item.ID}
		m.items[i].fields[itemFieldDescription] = newField("Description", item.Description, 200, 32)
		m.items[i].fields[itemFieldQuantity] = newField("0", amountText(item.Quantity), 12, 8)
		m.items[i].fields[itemFieldPrice] = newField("0.00", amountText(item.UnitPrice), 16, 12)
	}

	m.invalid = make(map[int]string)
	m.prompt = promptNone
	m.focus = 0
	return m.setFocus(focus)
}

func (m *EditorModel) fieldCount() int {
	return headerFieldCount + itemFieldCount*len(m.items)
}

// field returns the input at a focus index
func (m *EditorModel) field(idx int) *textinput.Model {
	if idx < headerFieldCount {
		return &m.header[idx]
	}
	idx -= headerFieldCount
	return &m.items[idx/itemFieldCount].fields[idx%itemFieldCount]
}

// focusedRow returns the item row under the cursor, or -1 in the header
func (m *EditorModel) focusedRow() int {
	if m.focus < headerFieldCount {
		return -1
	}
	return (m.focus - headerFieldCount) / itemFieldCount
}

func (m *EditorModel) setFocus(idx int) tea.Cmd {
	n := m.fieldCount()
	if idx < 0 {
		idx = n - 1
	}
	if idx >= n {
		idx = 0
	}
	m.field(m.focus).Blur()
	m.focus = idx
	return m.field(idx).Focus()
}

// sync pushes the focused field's value into the controller
func (m *EditorModel) sync() error {
	if row := m.focusedRow(); row >= 0 {
		return m.syncItem(row)
	}
	if m.focus == fieldShipping {
		cost, ok := parseAmount(m.header[fieldShipping].Value())
		if !ok {
			m.invalid[fieldShipping] = "must be a non-negative number"
			return nil
		}
		delete(m.invalid, fieldShipping)
		return m.ctrl.SetShipping(cost)
	}
	return m.ctrl.UpdateDetails(domain.Details{
		CustomerName:   m.header[fieldCustomer].Value(),
		PrimaryPhone:   m.header[fieldPhone].Value(),
		SecondaryPhone: m.header[fieldPhone2].Value(),
		Address:        m.header[fieldAddress].Value(),
		Notes:          m.header[fieldNotes].Value(),
	})
}

func (m *EditorModel) syncItem(row int) error {
	r := m.items[row]
	base := headerFieldCount + row*itemFieldCount

	qty, qtyOK := parseAmount(r.fields[itemFieldQuantity].Value())
	price, priceOK := parseAmount(r.fields[itemFieldPrice].Value())
	if !qtyOK {
		m.invalid[base+itemFieldQuantity] = "must be a non-negative number"
	} else {
		delete(m.invalid, base+itemFieldQuantity)
	}
	if !priceOK {
		m.invalid[base+itemFieldPrice] = "must be a non-negative number"
	} else {
		delete(m.invalid, base+itemFieldPrice)
	}
	if !qtyOK || !priceOK {
		return nil
	}
	return m.ctrl.UpdateItem(r.id, r.fields[itemFieldDescription].Value(), qty, price)
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.prompt {
	case promptLoad:
		return m, m.updateLoadPrompt(keyMsg)
	case promptExport:
		return m, m.updateExportPrompt(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Back):
		return m, errorCmd(m.ctrl.BackToList())

	case key.Matches(keyMsg, DefaultKeyMap.Save):
		return m, startJob(m.ctrl.BeginSave())

	case key.Matches(keyMsg, DefaultKeyMap.Preview):
		return m, errorCmd(m.ctrl.Preview())

	case key.Matches(keyMsg, DefaultKeyMap.AddItem):
		if _, err := m.ctrl.AddItem(); err != nil {
			return m, errorCmd(err)
		}
		inv := m.ctrl.Current()
		return m, m.load(inv, headerFieldCount+itemFieldCount*(len(inv.Items)-1))

	case key.Matches(keyMsg, DefaultKeyMap.RemoveItem):
		row := m.focusedRow()
		if row < 0 {
			return m, nil
		}
		if err := m.ctrl.RemoveItem(m.items[row].id); err != nil {
			return m, errorCmd(err)
		}
		return m, m.load(m.ctrl.Current(), m.focus-itemFieldCount)

	case key.Matches(keyMsg, DefaultKeyMap.Load):
		m.prompt = promptLoad
		m.promptInput = newField("/path/to/invoice.json", "", 512, 60)
		return m, m.promptInput.Focus()

	case key.Matches(keyMsg, DefaultKeyMap.Export):
		m.prompt = promptExport
		return m, nil

	case key.Matches(keyMsg, DefaultKeyMap.NextField):
		return m, m.setFocus(m.focus + 1)

	case key.Matches(keyMsg, DefaultKeyMap.PrevField):
		return m, m.setFocus(m.focus - 1)
	}

	var cmd tea.Cmd
	*m.field(m.focus), cmd = m.field(m.focus).Update(keyMsg)
	return m, tea.Batch(cmd, errorCmd(m.sync()))
}

func (m *EditorModel) updateLoadPrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.prompt = promptNone
		return nil
	case "enter":
		path := strings.TrimSpace(m.promptInput.Value())
		m.prompt = promptNone
		if path == "" {
			return nil
		}
		return startJob(m.ctrl.BeginLoadFromFile(path))
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return cmd
}

func (m *EditorModel) updateExportPrompt(msg tea.KeyMsg) tea.Cmd {
	m.prompt = promptNone
	if f, ok := exportFormatFor(msg); ok {
		return startJob(m.ctrl.BeginExport(f))
	}
	return nil
}

// exportFormatFor maps the single-key format choice shared by the editor and preview
func exportFormatFor(msg tea.KeyMsg) (export.Format, bool) {
	switch {
	case key.Matches(msg, DefaultKeyMap.ExportPDF):
		return export.FormatPDF, true
	case key.Matches(msg, DefaultKeyMap.ExportPNG):
		return export.FormatPNG, true
	case key.Matches(msg, DefaultKeyMap.ExportJSON):
		return export.FormatJSON, true
	case key.Matches(msg, DefaultKeyMap.ExportXLSX):
		return export.FormatXLSX, true
	}
	return "", false
}

func (m *EditorModel) View() string {
	inv := m.ctrl.Current()
	if inv == nil {
		return "Loading..."
	}
	currency := m.app.Exporter.Currency

	title := "New Invoice"
	if m.ctrl.Mode() == controller.ModeEdit {
		title = "Edit Invoice"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(title) + "  " + subtitleStyle.Render(inv.InvoiceNumber) + "\n\n")

	for i, label := range headerLabels {
		s.WriteString(m.renderField(i, label) + "\n")
	}

	s.WriteString("\n" + labelStyle.Render(fmt.Sprintf("  %-3s %-34s %-10s %-14s %s", "#", "Description", "Qty", "Unit Price", "Line Total")) + "\n")
	for row, r := range m.items {
		base := headerFieldCount + row*itemFieldCount
		indicator := "  "
		if m.focusedRow() == row {
			indicator = "> "
		}
		lineTotal := ""
		if row < len(inv.Items) {
			lineTotal = domain.FormatMoney(inv.Items[row].LineTotal, currency)
		}
		s.WriteString(fmt.Sprintf("%s%-3d %s %s %s %s\n",
			indicator, row+1,
			r.fields[itemFieldDescription].View(),
			r.fields[itemFieldQuantity].View(),
			r.fields[itemFieldPrice].View(),
			amountStyle.Render(lineTotal),
		))
		for f := 0; f < itemFieldCount; f++ {
			if problem, ok := m.invalid[base+f]; ok {
				s.WriteString(errorStyle.Render("      "+problem) + "\n")
			}
		}
	}

	s.WriteString("\n  " + labelStyle.Render("Total: ") + totalStyle.Render(domain.FormatMoney(inv.TotalAmount, currency)) + "\n")

	switch m.prompt {
	case promptLoad:
		s.WriteString("\n  Load invoice file: " + m.promptInput.View() + "\n")
		s.WriteString(helpStyle.Render("  enter: load  esc: cancel") + "\n")
	case promptExport:
		s.WriteString("\n" + warningStyle.Render("  Export as  p: PDF  g: PNG  j: JSON  x: XLSX  (any other key cancels)") + "\n")
	}

	s.WriteString("\n" + helpStyle.Render("  tab: next field  ctrl+n: add item  ctrl+d: remove item  ctrl+s: save  ctrl+p: preview  ctrl+e: export  ctrl+o: load  esc: list"))
	return s.String()
}

func (m *EditorModel) renderField(idx int, label string) string {
	indicator := "  "
	style := labelStyle
	if idx == m.focus {
		indicator = "> "
		style = focusedLabel
	}
	line := fmt.Sprintf("%s%s %s", indicator, style.Width(17).Render(label), m.header[idx].View())
	if problem, ok := m.invalid[idx]; ok {
		line += "  " + errorStyle.Render(problem)
	}
	return line
}
