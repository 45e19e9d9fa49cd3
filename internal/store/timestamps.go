package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetOrCreateClientService returns the join id for the (client, service)
// pair, creating the row on first use. This is the only place the pair is
// created; the unique constraint keeps it single.
func (s *Store) GetOrCreateClientService(clientID, serviceID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM clients_to_services WHERE client_id = ? AND service_id = ?`,
		clientID, serviceID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup client service: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO clients_to_services (client_id, service_id) VALUES (?, ?)`,
		clientID, serviceID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert client service: %w", err)
	}
	id, _ = res.LastInsertId()
	return id, nil
}

// IsClockedIn reports whether an open time stamp exists anywhere.
func (s *Store) IsClockedIn() (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM time_stamps WHERE clock_out = ?`, OpenClockOut,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count open stamps: %w", err)
	}
	return n > 0, nil
}

// ClockIn opens a session for the pair. The single-open-session invariant
// is enforced here, not left to callers: a second clock-in fails with
// ErrAlreadyClockedIn instead of creating a duplicate open row.
func (s *Store) ClockIn(clientID, serviceID int64) (*WorkSession, error) {
	clockedIn, err := s.IsClockedIn()
	if err != nil {
		return nil, err
	}
	if clockedIn {
		return nil, ErrAlreadyClockedIn
	}

	pairID, err := s.GetOrCreateClientService(clientID, serviceID)
	if err != nil {
		return nil, err
	}

	res, err := s.db.Exec(
		`INSERT INTO time_stamps (client_to_service_id, clock_in, clock_out) VALUES (?, ?, ?)`,
		pairID, time.Now().UnixMilli(), OpenClockOut,
	)
	if err != nil {
		return nil, fmt.Errorf("insert time stamp: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

// ClockOut closes the open session, recording the clock-out time and the
// work description, and returns the session resolved for display.
func (s *Store) ClockOut(description string) (*WorkSession, error) {
	open, err := s.CurrentSession()
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenSession
	}

	_, err = s.db.Exec(
		`UPDATE time_stamps SET clock_out = ?, description = ? WHERE id = ?`,
		time.Now().UnixMilli(), description, open.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("clock out stamp %d: %w", open.ID, err)
	}
	return s.GetSession(open.ID)
}

const sessionQuery = `
	SELECT t.id, t.client_to_service_id, t.clock_in, t.clock_out, t.description,
	       c.id, c.name, sv.id, sv.name, sv.rate
	FROM time_stamps t
	JOIN clients_to_services cs ON cs.id = t.client_to_service_id
	JOIN clients c ON c.id = cs.client_id
	JOIN services sv ON sv.id = cs.service_id`

func scanSession(row interface{ Scan(...any) error }) (*WorkSession, error) {
	w := &WorkSession{}
	err := row.Scan(
		&w.TimeStamp.ID, &w.ClientServiceID, &w.ClockIn, &w.ClockOut, &w.Description,
		&w.ClientID, &w.ClientName, &w.ServiceID, &w.ServiceName, &w.Rate,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CurrentSession returns the open session, or nil if the user is idle.
// If the invariant has somehow been violated, the newest open row wins.
func (s *Store) CurrentSession() (*WorkSession, error) {
	w, err := scanSession(s.db.QueryRow(
		sessionQuery+` WHERE t.clock_out = ? ORDER BY t.id DESC LIMIT 1`, OpenClockOut,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current session: %w", err)
	}
	return w, nil
}

func (s *Store) GetTimeStamp(id int64) (*TimeStamp, error) {
	t := &TimeStamp{}
	err := s.db.QueryRow(
		`SELECT id, client_to_service_id, clock_in, clock_out, description
		 FROM time_stamps WHERE id = ?`, id,
	).Scan(&t.ID, &t.ClientServiceID, &t.ClockIn, &t.ClockOut, &t.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get time stamp %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get time stamp %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) GetSession(id int64) (*WorkSession, error) {
	w, err := scanSession(s.db.QueryRow(sessionQuery+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return w, nil
}

// ListSessions returns all closed sessions, newest first.
func (s *Store) ListSessions() ([]WorkSession, error) {
	return s.querySessions(
		sessionQuery+` WHERE t.clock_out != ? ORDER BY t.id DESC`, OpenClockOut,
	)
}

// ClientSessions returns one client's closed sessions, newest first. This
// is the invoice aggregator's input order.
func (s *Store) ClientSessions(clientID int64) ([]WorkSession, error) {
	return s.querySessions(
		sessionQuery+` WHERE t.clock_out != ? AND cs.client_id = ? ORDER BY t.id DESC`,
		OpenClockOut, clientID,
	)
}

func (s *Store) querySessions(query string, args ...any) ([]WorkSession, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []WorkSession
	for rows.Next() {
		w, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *w)
	}
	return sessions, rows.Err()
}

// UpdateTimeStampDescription amends the description of a closed session.
func (s *Store) UpdateTimeStampDescription(id int64, description string) error {
	res, err := s.db.Exec(
		`UPDATE time_stamps SET description = ? WHERE id = ?`, description, id,
	)
	if err != nil {
		return fmt.Errorf("update time stamp %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update time stamp %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTimeStamp removes one session. The clients_to_services row it
// referenced stays.
func (s *Store) DeleteTimeStamp(id int64) error {
	_, err := s.db.Exec(`DELETE FROM time_stamps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete time stamp %d: %w", id, err)
	}
	return nil
}

// EarningsByClient sums hours and earned income over closed sessions,
// priced at each service's current rate.
func (s *Store) EarningsByClient() ([]ClientEarnings, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name,
		       COALESCE(SUM((t.clock_out - t.clock_in) / 3600000.0), 0),
		       COALESCE(SUM((t.clock_out - t.clock_in) / 3600000.0 * sv.rate), 0),
		       COUNT(t.id)
		FROM time_stamps t
		JOIN clients_to_services cs ON cs.id = t.client_to_service_id
		JOIN clients c ON c.id = cs.client_id
		JOIN services sv ON sv.id = cs.service_id
		WHERE t.clock_out != ?
		GROUP BY c.id
		ORDER BY c.id`, OpenClockOut,
	)
	if err != nil {
		return nil, fmt.Errorf("earnings by client: %w", err)
	}
	defer rows.Close()

	var earnings []ClientEarnings
	for rows.Next() {
		var e ClientEarnings
		if err := rows.Scan(&e.ClientID, &e.ClientName, &e.TotalHours, &e.TotalEarned, &e.SessionCount); err != nil {
			return nil, err
		}
		earnings = append(earnings, e)
	}
	return earnings, rows.Err()
}
