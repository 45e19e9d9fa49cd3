package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/clockit/internal/config"
	"github.com/sadopc/clockit/internal/export"
	"github.com/sadopc/clockit/internal/store"
)

// timesheetModel lists closed sessions newest first. Descriptions can be
// amended after the fact and mistaken stamps deleted. The whole sheet
// exports to CSV or JSON.
type timesheetModel struct {
	store *store.Store
	cfg   *config.Config

	width  int
	height int

	sessions []store.WorkSession
	cursor   int
	loadErr  string

	form       *huh.Form
	formDone   func(m *timesheetModel) tea.Cmd
	formActive bool
}

func newTimesheetModel(s *store.Store, cfg *config.Config) timesheetModel {
	m := timesheetModel{store: s, cfg: cfg}
	m.reload()
	return m
}

func (m *timesheetModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timesheetModel) busy() bool {
	return m.formActive
}

func (m *timesheetModel) reload() {
	sessions, err := m.store.ListSessions()
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.loadErr = ""
	m.sessions = sessions
	if m.cursor >= len(sessions) {
		m.cursor = max(len(sessions)-1, 0)
	}
}

func (m timesheetModel) update(msg tea.Msg) (timesheetModel, tea.Cmd) {
	if m.formActive {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Edit):
		if len(m.sessions) == 0 {
			return m, nil
		}
		return m.startDescriptionForm(m.sessions[m.cursor])
	case key.Matches(keyMsg, keys.Delete):
		if len(m.sessions) == 0 {
			return m, nil
		}
		ws := m.sessions[m.cursor]
		if err := m.store.DeleteTimeStamp(ws.ID); err != nil {
			return m, status(err.Error(), true)
		}
		m.reload()
		return m, status("deleted session", false)
	case key.Matches(keyMsg, keys.Export):
		if len(m.sessions) == 0 {
			return m, status("nothing to export", true)
		}
		return m.startExportForm()
	}
	return m, nil
}

func (m timesheetModel) startDescriptionForm(ws store.WorkSession) (timesheetModel, tea.Cmd) {
	description := ws.Description

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("description").Title("Description").Value(&description),
		),
	).WithShowHelp(false)
	m.formActive = true

	id := ws.ID
	m.formDone = func(m *timesheetModel) tea.Cmd {
		if err := m.store.UpdateTimeStampDescription(id, m.form.GetString("description")); err != nil {
			return status(err.Error(), true)
		}
		m.reload()
		return status("description updated", false)
	}
	return m, m.form.Init()
}

func (m timesheetModel) startExportForm() (timesheetModel, tea.Cmd) {
	format := "csv"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("format").
				Title("Export format").
				Options(
					huh.NewOption("CSV", "csv"),
					huh.NewOption("JSON", "json"),
				).
				Value(&format),
		),
	).WithShowHelp(false)
	m.formActive = true

	m.formDone = func(m *timesheetModel) tea.Cmd {
		format := m.form.GetString("format")
		sessions := m.sessions
		return func() tea.Msg {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			path := filepath.Join(home,
				fmt.Sprintf("timesheet-%s.%s", time.Now().Format("2006-01-02"), format))

			if format == "json" {
				err = export.ToJSON(sessions, path)
			} else {
				err = export.ToCSV(sessions, path)
			}
			if err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			return exportDoneMsg{path: path}
		}
	}
	return m, m.form.Init()
}

func (m timesheetModel) updateForm(msg tea.Msg) (timesheetModel, tea.Cmd) {
	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}

	switch m.form.State {
	case huh.StateCompleted:
		done := m.formDone
		m.formActive = false
		m.formDone = nil
		resultCmd := done(&m)
		m.form = nil
		return m, resultCmd
	case huh.StateAborted:
		m.form = nil
		m.formActive = false
		m.formDone = nil
		return m, nil
	}
	return m, cmd
}

func (m timesheetModel) view() string {
	if m.formActive {
		return m.form.View()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Timesheet"))
	b.WriteString("\n\n")

	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr))
		b.WriteString("\n")
	}
	if len(m.sessions) == 0 {
		b.WriteString(mutedStyle.Render("no closed sessions yet"))
		return b.String()
	}

	// Slide the window so the selected row stays visible.
	limit := max(m.height-10, 5)
	start := 0
	if m.cursor >= limit {
		start = m.cursor - limit + 1
	}
	end := min(start+limit, len(m.sessions))

	if start > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  … %d more\n", start)))
	}
	for i := start; i < end; i++ {
		ws := m.sessions[i]
		primary := fmt.Sprintf("%s  %-18s %-14s %s  %s",
			formatStamp(ws.ClockIn),
			truncate(ws.ClientName, 18),
			truncate(ws.ServiceName, 14),
			formatDuration(sessionDuration(ws)),
			moneyFor(m.cfg, ws.EarnedIncome()),
		)
		b.WriteString(listLine(i == m.cursor, primary, truncate(ws.Description, 30)))
	}
	if end < len(m.sessions) {
		b.WriteString(mutedStyle.Render(
			fmt.Sprintf("  … %d more\n", len(m.sessions)-end)))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("e amend description · d delete · E export"))
	return b.String()
}
