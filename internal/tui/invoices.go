package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/clockit/internal/config"
	"github.com/sadopc/clockit/internal/invoice"
	"github.com/sadopc/clockit/internal/store"
)

// invoicesModel shows per-client earnings with a bar chart, previews a
// grouped or itemized invoice for the selected client, and renders the
// preview to PDF. The grouped/itemized choice persists in settings.
type invoicesModel struct {
	store *store.Store
	cfg   *config.Config

	width  int
	height int

	earnings []store.ClientEarnings
	cursor   int
	mode     invoice.Mode
	loadErr  string

	preview  *invoice.Report
	sessions []store.WorkSession

	chart barchart.Model
}

func newInvoicesModel(s *store.Store, cfg *config.Config) invoicesModel {
	m := invoicesModel{
		store: s,
		cfg:   cfg,
		mode:  invoice.ModeGrouped,
		chart: barchart.New(60, 10),
	}
	m.reload()

	// A never-seeded key just means the grouped default; anything else
	// is a real storage failure and gets shown.
	saved, err := s.InvoiceMode()
	switch {
	case err == nil && saved == string(invoice.ModeItemized):
		m.mode = invoice.ModeItemized
	case err != nil && !errors.Is(err, store.ErrNotFound):
		m.loadErr = err.Error()
	}
	return m
}

func (m *invoicesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildChart()
}

func (m invoicesModel) busy() bool {
	return m.preview != nil
}

func (m *invoicesModel) reload() {
	earnings, err := m.store.EarningsByClient()
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.loadErr = ""
	m.earnings = earnings
	if m.cursor >= len(earnings) {
		m.cursor = max(len(earnings)-1, 0)
	}
	m.buildChart()
}

var chartBarStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(colorPrimary),
	lipgloss.NewStyle().Foreground(colorAccent),
	lipgloss.NewStyle().Foreground(colorSuccess),
	lipgloss.NewStyle().Foreground(colorWarning),
	lipgloss.NewStyle().Foreground(colorHighlight),
}

func (m *invoicesModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	m.chart = barchart.New(chartWidth, 10)

	var bars []barchart.BarData
	for i, e := range m.earnings {
		bars = append(bars, barchart.BarData{
			Label: truncate(e.ClientName, 10),
			Values: []barchart.BarValue{{
				Name:  e.ClientName,
				Value: e.TotalEarned,
				Style: chartBarStyles[i%len(chartBarStyles)],
			}},
		})
	}
	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m invoicesModel) update(msg tea.Msg) (invoicesModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.preview != nil {
		return m.updatePreview(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.earnings)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Mode):
		return m.toggleMode()
	case key.Matches(keyMsg, keys.Enter):
		if len(m.earnings) == 0 {
			return m, nil
		}
		return m.openPreview()
	}
	return m, nil
}

func (m invoicesModel) toggleMode() (invoicesModel, tea.Cmd) {
	if m.mode == invoice.ModeGrouped {
		m.mode = invoice.ModeItemized
	} else {
		m.mode = invoice.ModeGrouped
	}
	if err := m.store.SetInvoiceMode(string(m.mode)); err != nil {
		return m, status(err.Error(), true)
	}
	if m.preview != nil {
		return m.openPreviewFor(m.preview.ClientName)
	}
	return m, nil
}

func (m invoicesModel) openPreview() (invoicesModel, tea.Cmd) {
	e := m.earnings[m.cursor]
	sessions, err := m.store.ClientSessions(e.ClientID)
	if err != nil {
		return m, status(err.Error(), true)
	}
	m.sessions = sessions
	return m.buildPreview(e.ClientName)
}

// openPreviewFor rebuilds the preview for the same client after a mode
// toggle, reusing the already-loaded sessions.
func (m invoicesModel) openPreviewFor(clientName string) (invoicesModel, tea.Cmd) {
	return m.buildPreview(clientName)
}

func (m invoicesModel) buildPreview(clientName string) (invoicesModel, tea.Cmd) {
	var r invoice.Report
	if m.mode == invoice.ModeItemized {
		r = invoice.Itemized(clientName, m.sessions)
	} else {
		r = invoice.Grouped(clientName, m.sessions)
	}
	m.preview = &r
	return m, nil
}

func (m invoicesModel) updatePreview(keyMsg tea.KeyMsg) (invoicesModel, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.Back):
		m.preview = nil
		m.sessions = nil
	case key.Matches(keyMsg, keys.Mode):
		return m.toggleMode()
	case key.Matches(keyMsg, keys.Generate):
		return m.generatePDF()
	}
	return m, nil
}

func (m invoicesModel) generatePDF() (invoicesModel, tea.Cmd) {
	r := *m.preview
	currency := m.cfg.Currency
	dir := m.cfg.InvoiceDir
	return m, func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		name := fmt.Sprintf("%s-%s.pdf",
			sanitizeFilename(r.ClientName), time.Now().Format("2006-01-02"))
		path := filepath.Join(dir, name)
		if err := invoice.RenderPDF(r, currency, path); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return invoiceDoneMsg{path: path}
	}
}

func sanitizeFilename(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '-'
		}
		return r
	}, s)
	return strings.Trim(mapped, "-")
}

func (m invoicesModel) view() string {
	if m.preview != nil {
		return m.previewView()
	}

	var b strings.Builder
	modeLabel := mutedStyle.Render("mode: " + string(m.mode))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Invoices"), "  ", modeLabel))
	b.WriteString("\n\n")

	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr))
		b.WriteString("\n")
	}
	if len(m.earnings) == 0 {
		b.WriteString(mutedStyle.Render("no billable work yet"))
		return b.String()
	}

	b.WriteString(m.chart.View())
	b.WriteString("\n\n")

	for i, e := range m.earnings {
		detail := fmt.Sprintf("%.1fh · %d sessions · %s",
			e.TotalHours, e.SessionCount, moneyFor(m.cfg, e.TotalEarned))
		b.WriteString(listLine(i == m.cursor, e.ClientName, detail))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter preview · m grouped/itemized"))
	return b.String()
}

func (m invoicesModel) previewView() string {
	r := m.preview
	var b strings.Builder

	b.WriteString(titleStyle.Render("Invoice preview: " + r.ClientName))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(string(r.Mode)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("No. " + r.Number))
	b.WriteString("\n\n")

	if r.RowCount() == 0 {
		b.WriteString(mutedStyle.Render("no closed sessions for this client"))
		b.WriteString("\n")
	} else if r.Mode == invoice.ModeGrouped {
		for _, row := range r.Grouped {
			b.WriteString(fmt.Sprintf("  %-30s %12s\n",
				truncate(row.Service, 30),
				moneyFor(m.cfg, row.EarnedIncome)))
		}
	} else {
		for _, row := range r.Items {
			b.WriteString(fmt.Sprintf("  %-20s %-28s %12s\n",
				truncate(row.Service, 20),
				mutedStyle.Render(truncate(row.Description, 28)),
				moneyFor(m.cfg, row.EarnedIncome)))
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %-30s %12s\n",
		titleStyle.Render("Total"),
		highlightStyle.Render(moneyFor(m.cfg, r.Total()))))

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("g generate PDF · m grouped/itemized · esc back"))
	return b.String()
}
