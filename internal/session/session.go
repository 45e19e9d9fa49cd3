// Package session guards the single-open-session contract and exposes the
// live elapsed/earned-income formulas the UI recomputes on each tick.
package session

import (
	"time"

	"github.com/sadopc/clockit/internal/store"
)

// Manager is the one place callers clock in and out through. It carries no
// timer of its own; the caller's tick drives live recomputation.
type Manager struct {
	store *store.Store
}

func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

func (m *Manager) IsClockedIn() (bool, error) {
	return m.store.IsClockedIn()
}

// Current returns the open session resolved with client and service, or
// nil while idle.
func (m *Manager) Current() (*store.WorkSession, error) {
	return m.store.CurrentSession()
}

// ClockIn opens a session for the pair, creating the client-service
// association on first use. Fails with store.ErrAlreadyClockedIn if a
// session is already running.
func (m *Manager) ClockIn(clientID, serviceID int64) (*store.WorkSession, error) {
	return m.store.ClockIn(clientID, serviceID)
}

// ClockOut closes the open session with the given work description. Fails
// with store.ErrNoOpenSession while idle.
func (m *Manager) ClockOut(description string) (*store.WorkSession, error) {
	return m.store.ClockOut(description)
}

// Elapsed is the running time of a session that clocked in at
// clockInMillis, as of now.
func Elapsed(clockInMillis int64, now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-clockInMillis) * time.Millisecond
}

// Earned is the income accrued so far at the given hourly rate.
func Earned(clockInMillis int64, rate float64, now time.Time) float64 {
	hours := float64(now.UnixMilli()-clockInMillis) / 3_600_000.0
	return hours * rate
}
