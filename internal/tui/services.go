package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/clockit/internal/config"
	"github.com/sadopc/clockit/internal/store"
)

// servicesModel manages the service catalog: name, description, and the
// hourly rate used to price every session billed under the service.
type servicesModel struct {
	store *store.Store
	cfg   *config.Config

	width  int
	height int

	services []store.Service
	cursor   int
	loadErr  string

	form       *huh.Form
	formDone   func(m *servicesModel) tea.Cmd
	formActive bool
}

func newServicesModel(s *store.Store, cfg *config.Config) servicesModel {
	m := servicesModel{store: s, cfg: cfg}
	m.reload()
	return m
}

func (m *servicesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m servicesModel) busy() bool {
	return m.formActive
}

func (m *servicesModel) reload() {
	services, err := m.store.ListServices()
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.loadErr = ""
	m.services = services
	if m.cursor >= len(services) {
		m.cursor = max(len(services)-1, 0)
	}
}

func (m servicesModel) update(msg tea.Msg) (servicesModel, tea.Cmd) {
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
		if m.cursor < len(m.services)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		return m.startForm(nil)
	case key.Matches(keyMsg, keys.Edit):
		if len(m.services) == 0 {
			return m, nil
		}
		sv := m.services[m.cursor]
		return m.startForm(&sv)
	case key.Matches(keyMsg, keys.Delete):
		if len(m.services) == 0 {
			return m, nil
		}
		sv := m.services[m.cursor]
		if err := m.store.DeleteService(sv.ID); err != nil {
			return m, status(err.Error(), true)
		}
		m.reload()
		return m, status("deleted service "+sv.Name, false)
	}
	return m, nil
}

func validRate(s string) error {
	rate, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number, e.g. 45 or 45.50")
	}
	if rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}
	return nil
}

func (m servicesModel) startForm(existing *store.Service) (servicesModel, tea.Cmd) {
	name, description, rate := "", "", ""
	if existing != nil {
		name = existing.Name
		description = existing.Description
		rate = strconv.FormatFloat(existing.Rate, 'f', -1, 64)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("name").Title("Name").Value(&name),
			huh.NewInput().Key("description").Title("Description").Value(&description),
			huh.NewInput().Key("rate").Title("Hourly rate").Value(&rate).Validate(validRate),
		),
	).WithShowHelp(false)
	m.formActive = true

	var id int64
	editing := existing != nil
	if editing {
		id = existing.ID
	}
	m.formDone = func(m *servicesModel) tea.Cmd {
		name := m.form.GetString("name")
		description := m.form.GetString("description")
		rate, _ := strconv.ParseFloat(strings.TrimSpace(m.form.GetString("rate")), 64)
		var err error
		if editing {
			_, err = m.store.UpdateService(id, name, description, rate)
		} else {
			_, err = m.store.CreateService(name, description, rate)
		}
		if err != nil {
			return status(err.Error(), true)
		}
		m.reload()
		return status("saved service "+name, false)
	}
	return m, m.form.Init()
}

func (m servicesModel) updateForm(msg tea.Msg) (servicesModel, tea.Cmd) {
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

func (m servicesModel) view() string {
	if m.formActive {
		return m.form.View()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Services"))
	b.WriteString("\n\n")

	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr))
		b.WriteString("\n")
	}
	if len(m.services) == 0 {
		b.WriteString(mutedStyle.Render("no services yet, press n to add one"))
		return b.String()
	}

	for i, sv := range m.services {
		detail := moneyFor(m.cfg, sv.Rate) + "/h"
		if sv.Description != "" {
			detail += " · " + sv.Description
		}
		b.WriteString(listLine(i == m.cursor, sv.Name, detail))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("n new · e edit · d delete"))
	return b.String()
}
