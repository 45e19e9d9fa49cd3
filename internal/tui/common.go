package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/clockit/internal/config"
	"github.com/sadopc/clockit/internal/invoice"
	"github.com/sadopc/clockit/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewClock viewState = iota
	viewClients
	viewServices
	viewTimesheet
	viewInvoices
)

var viewNames = []string{"Clock", "Clients", "Services", "Timesheet", "Invoices"}

// --- Messages ---

type clockedInMsg struct {
	session *store.WorkSession
}

type clockedOutMsg struct {
	session *store.WorkSession
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type invoiceDoneMsg struct {
	path string
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatStamp(millis int64) string {
	if millis == store.OpenClockOut {
		return "—"
	}
	return time.UnixMilli(millis).Local().Format("Jan 02 15:04")
}

func sessionDuration(ws store.WorkSession) time.Duration {
	end := ws.ClockOut
	if ws.Open() {
		end = time.Now().UnixMilli()
	}
	return time.Duration(end-ws.ClockIn) * time.Millisecond
}

// status wraps a message into a command for the root model's footer.
func status(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

func listLine(selected bool, primary, secondary string) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "❯ "
		style = selectedItemStyle
	}
	line := cursor + style.Render(primary)
	if secondary != "" {
		line += "  " + mutedStyle.Render(secondary)
	}
	return line + "\n"
}

func moneyFor(cfg *config.Config, v float64) string {
	return invoice.FormatMoney(cfg.Currency, v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
