package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/service"
)

// ReportsModel displays totals per customer and revenue by month
type ReportsModel struct {
	app  *app.App
	year int

	overview *service.Overview
	loading  bool
	err      error
}

type reportsDataMsg struct {
	overview *service.Overview
	err      error
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	return &ReportsModel{
		app:     a,
		year:    time.Now().Year(),
		loading: true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) loadData() tea.Cmd {
	year := m.year
	return func() tea.Msg {
		o, err := m.app.ReportService.GetOverview(context.Background(), year)
		return reportsDataMsg{overview: o, err: err}
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case reportsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.overview = msg.overview
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Left):
			m.year--
			m.loading = true
			return m, m.loadData()

		case key.Matches(msg, DefaultKeyMap.Right):
			if m.year < time.Now().Year() {
				m.year++
				m.loading = true
				return m, m.loadData()
			}
		}
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	if m.loading {
		return titleStyle.Render("Reports") + "\n\n  Loading..."
	}

	if m.err != nil {
		return titleStyle.Render("Reports") + "\n\n" +
			errorStyle.Render(fmt.Sprintf("  Error: %s", describeError(m.err)))
	}

	currency := m.app.Exporter.Currency
	o := m.overview

	var s strings.Builder
	s.WriteString(titleStyle.Render("Reports") + "\n\n")

	s.WriteString(lipgloss.NewStyle().Bold(true).Render("  All Invoices") + "\n")
	s.WriteString(fmt.Sprintf("    Count:  %d\n", o.Count))
	s.WriteString(fmt.Sprintf("    Total:  %s\n\n", totalStyle.Render(domain.FormatMoney(o.Total, currency))))

	s.WriteString(m.renderCustomers(currency))
	s.WriteString(m.renderMonthlyRevenue(currency))

	s.WriteString("\n" + helpStyle.Render("  h/l: prev/next year  esc: back"))
	return s.String()
}

func (m *ReportsModel) renderCustomers(currency string) string {
	o := m.overview
	if len(o.ByCustomer) == 0 {
		return ""
	}

	s := lipgloss.NewStyle().Bold(true).Render("  By Customer") + "\n"
	for _, cs := range o.ByCustomer {
		s += fmt.Sprintf("    %-24s %3d  %s\n",
			truncateStr(cs.Customer, 24),
			cs.Count,
			amountStyle.Render(domain.FormatMoney(cs.Total, currency)),
		)
	}
	return s + "\n"
}

func (m *ReportsModel) renderMonthlyRevenue(currency string) string {
	s := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  Revenue by Month (%d)", m.year),
	) + "\n"

	maxRevenue := decimal.Zero
	for _, revenue := range m.overview.ByMonth {
		if revenue.GreaterThan(maxRevenue) {
			maxRevenue = revenue
		}
	}

	const maxBar = 25
	yearTotal := decimal.Zero
	for month := time.January; month <= time.December; month++ {
		revenue, ok := m.overview.ByMonth[month]
		if !ok || revenue.IsZero() {
			continue
		}
		yearTotal = yearTotal.Add(revenue)

		barLen := int(revenue.Div(maxRevenue).Mul(decimal.NewFromInt(maxBar)).IntPart())
		bar := lipgloss.NewStyle().Foreground(primaryColor).
			Render(fmt.Sprintf("%-25s", strings.Repeat("█", barLen)))
		s += fmt.Sprintf("    %-4s %s %s\n", month.String()[:3], bar, domain.FormatMoney(revenue, currency))
	}

	if yearTotal.IsZero() {
		s += subtitleStyle.Render("    No revenue recorded") + "\n"
	} else {
		s += "    " + lipgloss.NewStyle().Bold(true).Render(
			fmt.Sprintf("%-30s %s", "Total", domain.FormatMoney(yearTotal, currency)),
		) + "\n"
	}

	return s
}
