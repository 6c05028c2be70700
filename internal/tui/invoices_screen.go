package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/controller"
	"github.com/andy/invoicer/internal/domain"
)

// InvoicesModel lists saved invoices and starts create/edit/view actions
type InvoicesModel struct {
	app    *app.App
	ctrl   *controller.Controller
	cursor int

	// id awaiting delete confirmation
	confirmDelete string
}

// NewInvoicesModel creates the saved-invoices list screen
func NewInvoicesModel(a *app.App) *InvoicesModel {
	return &InvoicesModel{app: a, ctrl: a.Controller}
}

// IsCapturingInput returns true while a delete confirmation is pending
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.confirmDelete != ""
}

func (m *InvoicesModel) Init() tea.Cmd {
	return startJob(m.ctrl.BeginRefresh())
}

func (m *InvoicesModel) selected() *domain.Invoice {
	saved := m.ctrl.Saved()
	if len(saved) == 0 {
		return nil
	}
	if m.cursor >= len(saved) {
		m.cursor = len(saved) - 1
	}
	return saved[m.cursor]
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, startJob(m.ctrl.BeginRefresh())

	case tea.KeyMsg:
		if m.confirmDelete != "" {
			id := m.confirmDelete
			m.confirmDelete = ""
			if msg.String() == "y" || msg.String() == "Y" {
				return m, startJob(m.ctrl.BeginDelete(id))
			}
			return m, nil
		}

		saved := m.ctrl.Saved()
		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(saved)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, errorCmd(m.ctrl.NewInvoice())
		case key.Matches(msg, DefaultKeyMap.Edit), key.Matches(msg, DefaultKeyMap.Select):
			if inv := m.selected(); inv != nil {
				return m, errorCmd(m.ctrl.EditInvoice(inv.ID))
			}
		case key.Matches(msg, DefaultKeyMap.View):
			if inv := m.selected(); inv != nil {
				return m, errorCmd(m.ctrl.ViewInvoice(inv.ID))
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if inv := m.selected(); inv != nil {
				m.confirmDelete = inv.ID
			}
		case key.Matches(msg, DefaultKeyMap.Duplicate):
			if inv := m.selected(); inv != nil {
				return m, startJob(m.ctrl.BeginDuplicate(inv.ID))
			}
		case key.Matches(msg, DefaultKeyMap.Refresh):
			return m, startJob(m.ctrl.BeginRefresh())
		}
	}

	return m, nil
}

func (m *InvoicesModel) View() string {
	saved := m.ctrl.Saved()
	currency := m.app.Exporter.Currency

	var s strings.Builder
	s.WriteString(titleStyle.Render("Saved Invoices") + "\n\n")

	if len(saved) == 0 {
		s.WriteString(subtitleStyle.Render("  No invoices yet. Press 'n' to create one.") + "\n")
		return s.String()
	}

	s.WriteString(subtitleStyle.Render(fmt.Sprintf("  %-24s %-24s %-12s %14s", "Number", "Customer", "Date", "Total")) + "\n")
	for i, inv := range saved {
		indicator := "  "
		style := subtitleStyle.UnsetForeground()
		if i == m.cursor {
			indicator = "> "
			style = selectedStyle
		}
		line := fmt.Sprintf("%s%-24s %-24s %-12s %14s",
			indicator,
			truncateStr(inv.InvoiceNumber, 24),
			truncateStr(inv.DisplayName(), 24),
			inv.CreatedAt.Format("2006-01-02"),
			domain.FormatMoney(inv.TotalAmount, currency),
		)
		s.WriteString(style.Render(line) + "\n")
	}

	summary := domain.Summarize(saved)
	s.WriteString("\n  " + fmt.Sprintf("%d invoice(s)  ", summary.Count) +
		totalStyle.Render(domain.FormatMoney(summary.Total, currency)) + "\n")

	if m.confirmDelete != "" {
		if inv := m.selected(); inv != nil {
			s.WriteString("\n" + warningStyle.Render(fmt.Sprintf("  Delete %s? [y/N]", inv.InvoiceNumber)) + "\n")
		}
	}

	s.WriteString("\n" + helpStyle.Render("  j/k: navigate  n: new  enter/e: edit  v: view  d: delete  D: duplicate  ctrl+r: reload"))
	return s.String()
}
