package tui

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/clockit/internal/config"
	"github.com/sadopc/clockit/internal/invoice"
	"github.com/sadopc/clockit/internal/session"
	"github.com/sadopc/clockit/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Currency:   "$",
		InvoiceDir: t.TempDir(),
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

// billedSession clocks a full session through the manager so the client
// shows up in earnings and the timesheet.
func billedSession(t *testing.T, s *store.Store, clientName, serviceName, desc string) {
	t.Helper()
	c, err := s.CreateClient(clientName, "")
	if err != nil {
		t.Fatal(err)
	}
	sv, err := s.CreateService(serviceName, "", 50)
	if err != nil {
		t.Fatal(err)
	}
	mgr := session.NewManager(s)
	if _, err := mgr.ClockIn(c.ID, sv.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ClockOut(desc); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{90 * time.Minute, "01:30:00"},
		{25*time.Hour + 6*time.Minute + 7*time.Second, "25:06:07"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatStampOpen(t *testing.T) {
	if got := formatStamp(store.OpenClockOut); got != "—" {
		t.Errorf("open stamp = %q", got)
	}
}

func TestSessionDurationClosed(t *testing.T) {
	ws := store.WorkSession{TimeStamp: store.TimeStamp{
		ClockIn:  0,
		ClockOut: 90 * 60 * 1000,
	}}
	if got := sessionDuration(ws); got != 90*time.Minute {
		t.Errorf("duration = %v, want 90m", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncate("hello world", 8); got != "hello w…" {
		t.Errorf("truncated = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("Acme Corp / EU"); got != "Acme-Corp---EU" {
		t.Errorf("sanitized = %q", got)
	}
}

func TestMinMax(t *testing.T) {
	if min(2, 3) != 2 || min(3, 2) != 2 {
		t.Error("min broken")
	}
	if max(2, 3) != 3 || max(3, 2) != 3 {
		t.Error("max broken")
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 views, got %d", len(viewNames))
	}
	if viewNames[viewClock] != "Clock" || viewNames[viewInvoices] != "Invoices" {
		t.Error("view names out of order")
	}
}

// ============================================================
// Clock model
// ============================================================

func TestClockPickerFlow(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient("Acme", "")
	s.CreateService("Cleaning", "", 25)

	m := newClockModel(s, session.NewManager(s), newTestConfig(t))

	m, _ = m.update(keyRune('s'))
	if m.stage != pickClient {
		t.Fatal("s should open the client picker")
	}
	if !m.busy() {
		t.Fatal("picker should mark the view busy")
	}

	m, _ = m.update(keyEnter)
	if m.stage != pickService {
		t.Fatal("enter should advance to the service picker")
	}
	if m.picked.ID != c.ID {
		t.Fatal("picked client not recorded")
	}

	var cmd tea.Cmd
	m, cmd = m.update(keyEnter)
	if m.stage != pickNone {
		t.Fatal("picker should close after service pick")
	}
	if cmd == nil {
		t.Fatal("expected clock-in command")
	}
	msg, ok := cmd().(clockedInMsg)
	if !ok {
		t.Fatalf("expected clockedInMsg, got %T", cmd())
	}
	if msg.session.ClientName != "Acme" || msg.session.ServiceName != "Cleaning" {
		t.Fatal("session resolved wrong pair")
	}

	running, err := s.IsClockedIn()
	if err != nil {
		t.Fatal(err)
	}
	if !running {
		t.Fatal("store should show an open session")
	}
}

func TestClockPickerCancel(t *testing.T) {
	s := newTestStore(t)
	s.CreateClient("Acme", "")

	m := newClockModel(s, session.NewManager(s), newTestConfig(t))
	m, _ = m.update(keyRune('s'))
	m, _ = m.update(keyEsc)
	if m.stage != pickNone {
		t.Fatal("esc should cancel the picker")
	}
}

func TestClockInWithoutClients(t *testing.T) {
	s := newTestStore(t)
	m := newClockModel(s, session.NewManager(s), newTestConfig(t))

	m, cmd := m.update(keyRune('s'))
	if m.stage != pickNone {
		t.Fatal("picker should not open with no clients")
	}
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatal("expected an error status")
	}
}

func TestClockOutWhileIdle(t *testing.T) {
	s := newTestStore(t)
	m := newClockModel(s, session.NewManager(s), newTestConfig(t))

	_, cmd := m.update(keyRune('x'))
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatal("expected an error status")
	}
}

func TestClockLoadCmd(t *testing.T) {
	s := newTestStore(t)
	billedSession(t, s, "Acme", "Cleaning", "dusting")

	m := newClockModel(s, session.NewManager(s), newTestConfig(t))
	msg, ok := m.loadCmd()().(clockLoadedMsg)
	if !ok {
		t.Fatal("expected clockLoadedMsg")
	}
	if msg.err != nil {
		t.Fatal(msg.err)
	}
	if msg.current != nil {
		t.Fatal("no session should be open")
	}
	if len(msg.recent) != 1 {
		t.Fatalf("recent = %d, want 1", len(msg.recent))
	}

	m.apply(msg)
	view := m.view()
	if !strings.Contains(view, "Acme") {
		t.Error("recent sessions missing from view")
	}
	if !strings.Contains(view, "Not clocked in") {
		t.Error("idle readout missing")
	}
}

// ============================================================
// Clients model
// ============================================================

func TestClientsReloadAndDelete(t *testing.T) {
	s := newTestStore(t)
	s.CreateClient("Acme", "")
	s.CreateClient("Globex", "")

	m := newClientsModel(s)
	if len(m.clients) != 2 {
		t.Fatalf("clients = %d, want 2", len(m.clients))
	}

	m, _ = m.update(keyDown)
	if m.cursor != 1 {
		t.Fatal("cursor should move down")
	}

	m, _ = m.update(keyRune('d'))
	if len(m.clients) != 1 {
		t.Fatalf("clients after delete = %d, want 1", len(m.clients))
	}
	if m.clients[0].Name != "Acme" {
		t.Fatal("wrong client deleted")
	}
}

func TestClientsContactsSubview(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient("Acme", "")
	s.CreateContact(c.ID, "Jane", "Doe", "jane@acme.test", "555-0101")

	m := newClientsModel(s)
	m, _ = m.update(keyEnter)
	if m.selected == nil || m.selected.ID != c.ID {
		t.Fatal("enter should open the contacts subview")
	}
	if !m.busy() {
		t.Fatal("subview should mark the view busy")
	}
	if len(m.contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(m.contacts))
	}
	if !strings.Contains(m.view(), "Jane Doe") {
		t.Error("contact missing from view")
	}

	m, _ = m.update(keyRune('d'))
	if len(m.contacts) != 0 {
		t.Fatal("contact should be deleted")
	}

	m, _ = m.update(keyEsc)
	if m.selected != nil {
		t.Fatal("esc should leave the subview")
	}
}

// ============================================================
// Services model
// ============================================================

func TestServicesReloadAndDelete(t *testing.T) {
	s := newTestStore(t)
	s.CreateService("Cleaning", "", 25)

	m := newServicesModel(s, newTestConfig(t))
	if len(m.services) != 1 {
		t.Fatalf("services = %d, want 1", len(m.services))
	}
	if !strings.Contains(m.view(), "Cleaning") {
		t.Error("service missing from view")
	}

	m, _ = m.update(keyRune('d'))
	if len(m.services) != 0 {
		t.Fatal("service should be deleted")
	}
}

func TestValidRate(t *testing.T) {
	if err := validRate("45.50"); err != nil {
		t.Errorf("valid rate rejected: %v", err)
	}
	if err := validRate(" 45 "); err != nil {
		t.Errorf("padded rate rejected: %v", err)
	}
	if err := validRate("abc"); err == nil {
		t.Error("non-numeric rate accepted")
	}
	if err := validRate("-5"); err == nil {
		t.Error("negative rate accepted")
	}
}

// ============================================================
// Timesheet model
// ============================================================

func TestTimesheetReloadAndDelete(t *testing.T) {
	s := newTestStore(t)
	billedSession(t, s, "Acme", "Cleaning", "dusting")

	m := newTimesheetModel(s, newTestConfig(t))
	m.setSize(80, 24)
	if len(m.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(m.sessions))
	}
	if !strings.Contains(m.view(), "Acme") {
		t.Error("session missing from view")
	}

	m, _ = m.update(keyRune('d'))
	if len(m.sessions) != 0 {
		t.Fatal("session should be deleted")
	}
}

func TestTimesheetCursorStaysVisible(t *testing.T) {
	s := newTestStore(t)
	for i := 1; i <= 7; i++ {
		billedSession(t, s, fmt.Sprintf("Client%d", i), "Cleaning", "")
	}

	m := newTimesheetModel(s, newTestConfig(t))
	m.setSize(80, 12) // window of 5 rows
	if len(m.sessions) != 7 {
		t.Fatalf("sessions = %d, want 7", len(m.sessions))
	}

	// Walk to the bottom; the oldest session is the last row.
	for i := 0; i < 6; i++ {
		m, _ = m.update(keyDown)
	}
	if m.cursor != 6 {
		t.Fatalf("cursor = %d, want 6", m.cursor)
	}

	view := m.view()
	if !strings.Contains(view, "Client1") {
		t.Fatal("selected row scrolled out of the window")
	}
	if !strings.Contains(view, "… 2 more") {
		t.Fatal("hidden newer rows not indicated")
	}
	if strings.Contains(view, "Client7") {
		t.Fatal("window did not scroll past the newest rows")
	}
}

func TestTimesheetExcludesOpenSession(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient("Acme", "")
	sv, _ := s.CreateService("Cleaning", "", 25)
	mgr := session.NewManager(s)
	mgr.ClockIn(c.ID, sv.ID)

	m := newTimesheetModel(s, newTestConfig(t))
	if len(m.sessions) != 0 {
		t.Fatal("open session should not appear in the timesheet")
	}
}

// ============================================================
// Invoices model
// ============================================================

func TestInvoicesDefaultMode(t *testing.T) {
	s := newTestStore(t)
	m := newInvoicesModel(s, newTestConfig(t))
	if m.mode != invoice.ModeGrouped {
		t.Fatalf("default mode = %s, want grouped", m.mode)
	}
}

func TestInvoicesModePersists(t *testing.T) {
	s := newTestStore(t)
	m := newInvoicesModel(s, newTestConfig(t))

	m, _ = m.toggleMode()
	if m.mode != invoice.ModeItemized {
		t.Fatal("toggle should switch to itemized")
	}
	saved, err := s.InvoiceMode()
	if err != nil {
		t.Fatal(err)
	}
	if saved != "itemized" {
		t.Fatalf("persisted mode = %q", saved)
	}

	// A fresh model picks the saved mode back up.
	m2 := newInvoicesModel(s, newTestConfig(t))
	if m2.mode != invoice.ModeItemized {
		t.Fatal("saved mode not restored")
	}
}

func TestInvoicesSettingErrorSurfaced(t *testing.T) {
	s := newTestStore(t)
	s.Close()

	m := newInvoicesModel(s, newTestConfig(t))
	if m.mode != invoice.ModeGrouped {
		t.Fatal("mode should fall back to grouped on failure")
	}
	if m.loadErr == "" {
		t.Fatal("storage failure should be surfaced, not swallowed")
	}
	if !strings.Contains(m.loadErr, "invoice_mode") {
		t.Fatalf("loadErr = %q, want the failing setting named", m.loadErr)
	}
	if !strings.Contains(m.view(), m.loadErr) {
		t.Fatal("view should show the load error")
	}
}

func TestInvoicesPreviewAndPDF(t *testing.T) {
	s := newTestStore(t)
	cfg := newTestConfig(t)
	billedSession(t, s, "Acme", "Cleaning", "dusting")

	m := newInvoicesModel(s, cfg)
	if len(m.earnings) != 1 {
		t.Fatalf("earnings = %d, want 1", len(m.earnings))
	}

	m, _ = m.update(keyEnter)
	if m.preview == nil {
		t.Fatal("enter should build a preview")
	}
	if m.preview.Mode != invoice.ModeGrouped {
		t.Fatal("preview should follow the current mode")
	}
	if !strings.Contains(m.view(), "Cleaning") {
		t.Error("preview missing service row")
	}

	m, _ = m.update(keyRune('m'))
	if m.preview.Mode != invoice.ModeItemized {
		t.Fatal("mode toggle should rebuild the preview")
	}
	if len(m.preview.Items) != 1 || m.preview.Items[0].Description != "dusting" {
		t.Fatal("itemized preview missing the session row")
	}

	_, cmd := m.update(keyRune('g'))
	if cmd == nil {
		t.Fatal("expected a generate command")
	}
	msg, ok := cmd().(invoiceDoneMsg)
	if !ok {
		t.Fatalf("expected invoiceDoneMsg, got %T", cmd())
	}
	info, err := os.Stat(msg.path)
	if err != nil {
		t.Fatalf("invoice file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("invoice file is empty")
	}
}

// ============================================================
// App
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	return NewApp(newTestStore(t), newTestConfig(t))
}

func TestNewApp(t *testing.T) {
	a := newTestApp(t)
	if a.active != viewClock {
		t.Fatal("app should start on the clock view")
	}
	if a.manager == nil {
		t.Fatal("session manager not set")
	}
}

func TestAppLoadingState(t *testing.T) {
	a := newTestApp(t)
	if a.View() != "loading..." {
		t.Fatal("zero-width view should render loading state")
	}
}

func TestAppHeaderContainsAllTabs(t *testing.T) {
	a := newTestApp(t)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a = model.(App)

	header := a.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Errorf("header missing tab %q", name)
		}
	}
}

func TestAppTabSwitching(t *testing.T) {
	a := newTestApp(t)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a = model.(App)

	model, _ = a.Update(keyRune('3'))
	a = model.(App)
	if a.active != viewServices {
		t.Fatal("3 should switch to services")
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a = model.(App)
	if a.active != viewTimesheet {
		t.Fatal("tab should advance to the next view")
	}
}

func TestAppStatusMessage(t *testing.T) {
	a := newTestApp(t)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a = model.(App)

	model, _ = a.Update(statusMsg{text: "something broke", isError: true})
	a = model.(App)
	if !strings.Contains(a.renderFooter(), "something broke") {
		t.Fatal("status missing from footer")
	}
}

func TestAppTickKeepsTicking(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
}

func TestAppClockedInStatus(t *testing.T) {
	a := newTestApp(t)
	ws := &store.WorkSession{ClientName: "Acme", ServiceName: "Cleaning", Rate: 25}
	ws.ClockIn = time.Now().UnixMilli()

	model, _ := a.Update(clockedInMsg{session: ws})
	a = model.(App)
	if a.clock.current == nil {
		t.Fatal("clocked-in session not stored")
	}
	if !strings.Contains(a.status, "Acme") {
		t.Fatal("status should name the client")
	}
}
