// Package tui is the Bubble Tea interface: a tabbed app with a live
// clock view, client and service management, a timesheet, and invoice
// generation.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/clockit/internal/config"
	"github.com/sadopc/clockit/internal/session"
	"github.com/sadopc/clockit/internal/store"
)

// App is the root model. It owns the tab bar, routes messages to the
// active view, and keeps the one-second tick running so the clock view
// can recompute elapsed time and earned income.
type App struct {
	store   *store.Store
	cfg     *config.Config
	manager *session.Manager

	width    int
	height   int
	active   viewState
	showHelp bool

	clock     clockModel
	clients   clientsModel
	services  servicesModel
	timesheet timesheetModel
	invoices  invoicesModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(s *store.Store, cfg *config.Config) App {
	mgr := session.NewManager(s)
	return App{
		store:     s,
		cfg:       cfg,
		manager:   mgr,
		clock:     newClockModel(s, mgr, cfg),
		clients:   newClientsModel(s),
		services:  newServicesModel(s, cfg),
		timesheet: newTimesheetModel(s, cfg),
		invoices:  newInvoicesModel(s, cfg),
		help:      help.New(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.clock.loadCmd(), tickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.clock.setSize(msg.Width, msg.Height)
		a.clients.setSize(msg.Width, msg.Height)
		a.services.setSize(msg.Width, msg.Height)
		a.timesheet.setSize(msg.Width, msg.Height)
		a.invoices.setSize(msg.Width, msg.Height)
		return a, nil

	case tickMsg:
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case clockedInMsg:
		a.clock.current = msg.session
		a.status = "Clocked in: " + msg.session.ClientName + " / " + msg.session.ServiceName
		a.statusError = false
		return a, a.clock.loadCmd()

	case clockedOutMsg:
		a.clock.current = nil
		a.status = "Clocked out of " + msg.session.ClientName + " / " + msg.session.ServiceName
		a.statusError = false
		a.timesheet.reload()
		a.invoices.reload()
		return a, a.clock.loadCmd()

	case invoiceDoneMsg:
		a.status = "Invoice written to " + msg.path
		a.statusError = false
		return a, nil

	case exportDoneMsg:
		a.status = "Timesheet exported to " + msg.path
		a.statusError = false
		return a, nil

	case clockLoadedMsg:
		a.clock.apply(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.routeToActive(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While a form or picker is open the view owns the keyboard,
	// except for ctrl+c.
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.activeViewBusy() {
		return a.routeToActive(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		return a, nil
	case key.Matches(msg, keys.Tab):
		a.active = (a.active + 1) % viewState(len(viewNames))
		return a.onViewEnter()
	case key.Matches(msg, keys.Tab1):
		a.active = viewClock
		return a.onViewEnter()
	case key.Matches(msg, keys.Tab2):
		a.active = viewClients
		return a.onViewEnter()
	case key.Matches(msg, keys.Tab3):
		a.active = viewServices
		return a.onViewEnter()
	case key.Matches(msg, keys.Tab4):
		a.active = viewTimesheet
		return a.onViewEnter()
	case key.Matches(msg, keys.Tab5):
		a.active = viewInvoices
		return a.onViewEnter()
	}

	return a.routeToActive(msg)
}

// onViewEnter refreshes the view the user just switched to.
func (a App) onViewEnter() (tea.Model, tea.Cmd) {
	switch a.active {
	case viewClock:
		return a, a.clock.loadCmd()
	case viewClients:
		a.clients.reload()
	case viewServices:
		a.services.reload()
	case viewTimesheet:
		a.timesheet.reload()
	case viewInvoices:
		a.invoices.reload()
	}
	return a, nil
}

func (a App) activeViewBusy() bool {
	switch a.active {
	case viewClock:
		return a.clock.busy()
	case viewClients:
		return a.clients.busy()
	case viewServices:
		return a.services.busy()
	case viewTimesheet:
		return a.timesheet.busy()
	case viewInvoices:
		return a.invoices.busy()
	}
	return false
}

func (a App) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case viewClock:
		a.clock, cmd = a.clock.update(msg)
	case viewClients:
		a.clients, cmd = a.clients.update(msg)
	case viewServices:
		a.services, cmd = a.services.update(msg)
	case viewTimesheet:
		a.timesheet, cmd = a.timesheet.update(msg)
	case viewInvoices:
		a.invoices, cmd = a.invoices.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")

	switch a.active {
	case viewClock:
		b.WriteString(a.clock.view())
	case viewClients:
		b.WriteString(a.clients.view())
	case viewServices:
		b.WriteString(a.services.view())
	case viewTimesheet:
		b.WriteString(a.timesheet.view())
	case viewInvoices:
		b.WriteString(a.invoices.view())
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())
	return b.String()
}

func (a App) renderHeader() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		if viewState(i) == a.active {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = inactiveTabStyle.Render(name)
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	right := ""
	if ws := a.clock.current; ws != nil {
		now := time.Now()
		right = successStyle.Render("● " +
			formatDuration(session.Elapsed(ws.ClockIn, now)) + "  " +
			moneyFor(a.cfg, session.Earned(ws.ClockIn, ws.Rate, now)))
	}

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (a App) renderFooter() string {
	var b strings.Builder
	if a.status != "" {
		if a.statusError {
			b.WriteString(errorStyle.Render("✗ " + a.status))
		} else {
			b.WriteString(successStyle.Render("✓ " + a.status))
		}
		b.WriteString("\n")
	}
	if a.showHelp {
		b.WriteString(a.help.FullHelpView(keys.FullHelp()))
	} else {
		b.WriteString(footerStyle.Render(a.help.ShortHelpView(keys.ShortHelp())))
	}
	return b.String()
}
