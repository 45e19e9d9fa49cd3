package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/clockit/internal/config"
	"github.com/sadopc/clockit/internal/session"
	"github.com/sadopc/clockit/internal/store"
)

type clockPickStage int

const (
	pickNone clockPickStage = iota
	pickClient
	pickService
)

type clockLoadedMsg struct {
	current *store.WorkSession
	recent  []store.WorkSession
	err     error
}

// clockModel is the landing view: the running session readout, the
// two-step client/service picker for clocking in, and the clock-out
// description form.
type clockModel struct {
	store   *store.Store
	manager *session.Manager
	cfg     *config.Config

	width  int
	height int

	current *store.WorkSession
	recent  []store.WorkSession
	loadErr string

	stage        clockPickStage
	pickClients  []store.Client
	pickServices []store.Service
	cursor       int
	picked       store.Client

	form *huh.Form
}

func newClockModel(s *store.Store, mgr *session.Manager, cfg *config.Config) clockModel {
	return clockModel{store: s, manager: mgr, cfg: cfg}
}

func (m *clockModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m clockModel) busy() bool {
	return m.stage != pickNone || m.form != nil
}

func (m clockModel) loadCmd() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		current, err := s.CurrentSession()
		if err != nil {
			return clockLoadedMsg{err: err}
		}
		sessions, err := s.ListSessions()
		if err != nil {
			return clockLoadedMsg{current: current, err: err}
		}
		return clockLoadedMsg{
			current: current,
			recent:  sessions[:min(len(sessions), 5)],
		}
	}
}

func (m *clockModel) apply(msg clockLoadedMsg) {
	if msg.err != nil {
		m.loadErr = msg.err.Error()
		return
	}
	m.loadErr = ""
	m.current = msg.current
	m.recent = msg.recent
}

func (m clockModel) update(msg tea.Msg) (clockModel, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.stage != pickNone {
		return m.updatePicker(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.ClockIn):
		if m.current != nil {
			return m, status("already clocked in, press x to clock out first", true)
		}
		clients, err := m.store.ListClients()
		if err != nil {
			return m, status(err.Error(), true)
		}
		if len(clients) == 0 {
			return m, status("no clients yet, add one in the Clients tab", true)
		}
		m.pickClients = clients
		m.stage = pickClient
		m.cursor = 0
		return m, nil

	case key.Matches(keyMsg, keys.ClockOut):
		if m.current == nil {
			return m, status("not clocked in", true)
		}
		return m.startClockOutForm()
	}
	return m, nil
}

func (m clockModel) updatePicker(msg tea.Msg) (clockModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	limit := len(m.pickClients)
	if m.stage == pickService {
		limit = len(m.pickServices)
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < limit-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Back):
		m.stage = pickNone
		m.cursor = 0
	case key.Matches(keyMsg, keys.Enter):
		return m.pickEnter()
	}
	return m, nil
}

func (m clockModel) pickEnter() (clockModel, tea.Cmd) {
	switch m.stage {
	case pickClient:
		m.picked = m.pickClients[m.cursor]
		services, err := m.store.ListServices()
		if err != nil {
			m.stage = pickNone
			return m, status(err.Error(), true)
		}
		if len(services) == 0 {
			m.stage = pickNone
			return m, status("no services yet, add one in the Services tab", true)
		}
		m.pickServices = services
		m.stage = pickService
		m.cursor = 0
		return m, nil

	case pickService:
		clientID := m.picked.ID
		serviceID := m.pickServices[m.cursor].ID
		m.stage = pickNone
		m.cursor = 0
		mgr := m.manager
		return m, func() tea.Msg {
			ws, err := mgr.ClockIn(clientID, serviceID)
			if errors.Is(err, store.ErrAlreadyClockedIn) {
				return statusMsg{text: "a session is already running", isError: true}
			}
			if err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			return clockedInMsg{session: ws}
		}
	}
	return m, nil
}

func (m clockModel) startClockOutForm() (clockModel, tea.Cmd) {
	desc := ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("What did you work on?").
				Value(&desc),
		),
	).WithShowHelp(false)
	return m, m.form.Init()
}

func (m clockModel) updateForm(msg tea.Msg) (clockModel, tea.Cmd) {
	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}

	switch m.form.State {
	case huh.StateCompleted:
		description := m.form.GetString("description")
		m.form = nil
		mgr := m.manager
		return m, func() tea.Msg {
			ws, err := mgr.ClockOut(description)
			if errors.Is(err, store.ErrNoOpenSession) {
				return statusMsg{text: "not clocked in", isError: true}
			}
			if err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			return clockedOutMsg{session: ws}
		}
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m clockModel) view() string {
	var b strings.Builder

	if m.form != nil {
		b.WriteString(titleStyle.Render("Clock out"))
		b.WriteString("\n\n")
		b.WriteString(m.form.View())
		return b.String()
	}

	if m.stage != pickNone {
		b.WriteString(m.pickerView())
		return b.String()
	}

	b.WriteString(m.readoutView())

	if m.loadErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.loadErr))
	}

	if len(m.recent) > 0 {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("Recent sessions"))
		b.WriteString("\n")
		for _, ws := range m.recent {
			line := fmt.Sprintf("  %s  %-18s %-14s %s  %s",
				formatStamp(ws.ClockIn),
				truncate(ws.ClientName, 18),
				truncate(ws.ServiceName, 14),
				formatDuration(sessionDuration(ws)),
				moneyFor(m.cfg, ws.EarnedIncome()),
			)
			b.WriteString(mutedStyle.Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m clockModel) readoutView() string {
	width := max(m.width-8, 20)

	if m.current == nil {
		content := clockIdleStyle.Width(width - 6).Render(
			"Not clocked in\n\n" + mutedStyle.Render("press s to start a session"))
		return panelStyle.Width(width).Render(content)
	}

	now := time.Now()
	ws := m.current
	readout := clockRunningStyle.Width(width - 6).Render(
		formatDuration(session.Elapsed(ws.ClockIn, now)) + "\n" +
			highlightStyle.Render(moneyFor(m.cfg, session.Earned(ws.ClockIn, ws.Rate, now))))

	header := titleStyle.Render(ws.ClientName) + mutedStyle.Render(" / "+ws.ServiceName)
	since := mutedStyle.Render("since " + formatStamp(ws.ClockIn))

	return activePanelStyle.Width(width).Render(header + "\n" + since + "\n\n" + readout)
}

func (m clockModel) pickerView() string {
	var b strings.Builder
	if m.stage == pickClient {
		b.WriteString(titleStyle.Render("Clock in: pick a client"))
		b.WriteString("\n\n")
		for i, c := range m.pickClients {
			b.WriteString(listLine(i == m.cursor, c.Name, c.Description))
		}
	} else {
		b.WriteString(titleStyle.Render("Clock in: pick a service for " + m.picked.Name))
		b.WriteString("\n\n")
		for i, sv := range m.pickServices {
			b.WriteString(listLine(i == m.cursor, sv.Name,
				moneyFor(m.cfg, sv.Rate)+"/h"))
		}
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter select · esc cancel"))
	return b.String()
}
