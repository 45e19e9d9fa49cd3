package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/clockit/internal/store"
)

// clientsModel lists clients and, one level down, a selected client's
// contacts and billed services.
type clientsModel struct {
	store *store.Store

	width  int
	height int

	clients []store.Client
	cursor  int
	loadErr string

	// contacts subview
	selected       *store.Client
	contacts       []store.Contact
	billedServices []store.Service
	contactCursor  int

	form       *huh.Form
	formDone   func(m *clientsModel) tea.Cmd
	formActive bool
}

func newClientsModel(s *store.Store) clientsModel {
	m := clientsModel{store: s}
	m.reload()
	return m
}

func (m *clientsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m clientsModel) busy() bool {
	return m.formActive || m.selected != nil
}

func (m *clientsModel) reload() {
	clients, err := m.store.ListClients()
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.loadErr = ""
	m.clients = clients
	if m.cursor >= len(clients) {
		m.cursor = max(len(clients)-1, 0)
	}
	if m.selected != nil {
		m.reloadSelected()
	}
}

func (m *clientsModel) reloadSelected() {
	contacts, err := m.store.ListContactsForClient(m.selected.ID)
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	services, err := m.store.ListServicesForClient(m.selected.ID)
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.contacts = contacts
	m.billedServices = services
	if m.contactCursor >= len(contacts) {
		m.contactCursor = max(len(contacts)-1, 0)
	}
}

func (m clientsModel) update(msg tea.Msg) (clientsModel, tea.Cmd) {
	if m.formActive {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.selected != nil {
		return m.updateContacts(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.clients)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		return m.startClientForm(nil)
	case key.Matches(keyMsg, keys.Edit):
		if len(m.clients) == 0 {
			return m, nil
		}
		c := m.clients[m.cursor]
		return m.startClientForm(&c)
	case key.Matches(keyMsg, keys.Delete):
		if len(m.clients) == 0 {
			return m, nil
		}
		c := m.clients[m.cursor]
		if err := m.store.DeleteClient(c.ID); err != nil {
			return m, status(err.Error(), true)
		}
		m.reload()
		return m, status("deleted client "+c.Name, false)
	case key.Matches(keyMsg, keys.Enter):
		if len(m.clients) == 0 {
			return m, nil
		}
		c := m.clients[m.cursor]
		m.selected = &c
		m.contactCursor = 0
		m.reloadSelected()
	}
	return m, nil
}

func (m clientsModel) updateContacts(keyMsg tea.KeyMsg) (clientsModel, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.Back):
		m.selected = nil
		m.contacts = nil
		m.billedServices = nil
	case key.Matches(keyMsg, keys.Up):
		if m.contactCursor > 0 {
			m.contactCursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.contactCursor < len(m.contacts)-1 {
			m.contactCursor++
		}
	case key.Matches(keyMsg, keys.New):
		return m.startContactForm()
	case key.Matches(keyMsg, keys.Delete):
		if len(m.contacts) == 0 {
			return m, nil
		}
		ct := m.contacts[m.contactCursor]
		if err := m.store.DeleteContact(ct.ID); err != nil {
			return m, status(err.Error(), true)
		}
		m.reloadSelected()
		return m, status("deleted contact "+ct.FirstName+" "+ct.LastName, false)
	}
	return m, nil
}

func (m clientsModel) startClientForm(existing *store.Client) (clientsModel, tea.Cmd) {
	name, description := "", ""
	if existing != nil {
		name = existing.Name
		description = existing.Description
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("name").Title("Name").Value(&name),
			huh.NewInput().Key("description").Title("Description").Value(&description),
		),
	).WithShowHelp(false)
	m.formActive = true

	var id int64
	editing := existing != nil
	if editing {
		id = existing.ID
	}
	m.formDone = func(m *clientsModel) tea.Cmd {
		name := m.form.GetString("name")
		description := m.form.GetString("description")
		var err error
		if editing {
			_, err = m.store.UpdateClient(id, name, description)
		} else {
			_, err = m.store.CreateClient(name, description)
		}
		if err != nil {
			return status(err.Error(), true)
		}
		m.reload()
		return status("saved client "+name, false)
	}
	return m, m.form.Init()
}

func (m clientsModel) startContactForm() (clientsModel, tea.Cmd) {
	var first, last, email, number string

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("first").Title("First name").Value(&first),
			huh.NewInput().Key("last").Title("Last name").Value(&last),
			huh.NewInput().Key("email").Title("Email").Value(&email),
			huh.NewInput().Key("number").Title("Phone").Value(&number),
		),
	).WithShowHelp(false)
	m.formActive = true

	clientID := m.selected.ID
	m.formDone = func(m *clientsModel) tea.Cmd {
		_, err := m.store.CreateContact(clientID,
			m.form.GetString("first"),
			m.form.GetString("last"),
			m.form.GetString("email"),
			m.form.GetString("number"),
		)
		if err != nil {
			return status(err.Error(), true)
		}
		m.reloadSelected()
		return status("added contact", false)
	}
	return m, m.form.Init()
}

func (m clientsModel) updateForm(msg tea.Msg) (clientsModel, tea.Cmd) {
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

func (m clientsModel) view() string {
	if m.formActive {
		return m.form.View()
	}
	if m.selected != nil {
		return m.contactsView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Clients"))
	b.WriteString("\n\n")

	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr))
		b.WriteString("\n")
	}
	if len(m.clients) == 0 {
		b.WriteString(mutedStyle.Render("no clients yet, press n to add one"))
		return b.String()
	}

	for i, c := range m.clients {
		b.WriteString(listLine(i == m.cursor, c.Name, c.Description))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter contacts · n new · e edit · d delete"))
	return b.String()
}

func (m clientsModel) contactsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.selected.Name))
	if m.selected.Description != "" {
		b.WriteString(mutedStyle.Render("  " + m.selected.Description))
	}
	b.WriteString("\n\n")

	b.WriteString(accentStyle.Render("Contacts"))
	b.WriteString("\n")
	if len(m.contacts) == 0 {
		b.WriteString(mutedStyle.Render("  none, press n to add one"))
		b.WriteString("\n")
	}
	for i, ct := range m.contacts {
		detail := ct.Email
		if ct.Number != "" {
			if detail != "" {
				detail += " · "
			}
			detail += ct.Number
		}
		b.WriteString(listLine(i == m.contactCursor, ct.FirstName+" "+ct.LastName, detail))
	}

	b.WriteString("\n")
	b.WriteString(accentStyle.Render("Billed services"))
	b.WriteString("\n")
	if len(m.billedServices) == 0 {
		b.WriteString(mutedStyle.Render("  none yet"))
		b.WriteString("\n")
	}
	for _, sv := range m.billedServices {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			normalItemStyle.Render(sv.Name),
			mutedStyle.Render(fmt.Sprintf("%.2f/h", sv.Rate))))
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("n new contact · d delete contact · esc back"))
	return b.String()
}
