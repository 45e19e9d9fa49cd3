package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func (s *Store) CreateService(name, description string, rate float64) (*Service, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("service name", "must not be empty")
	}
	if rate < 0 {
		return nil, validationErr("service rate", "must not be negative")
	}
	res, err := s.db.Exec(
		`INSERT INTO services (name, description, rate) VALUES (?, ?, ?)`,
		name, description, rate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetService(id)
}

func (s *Store) GetService(id int64) (*Service, error) {
	sv := &Service{}
	err := s.db.QueryRow(
		`SELECT id, name, description, rate FROM services WHERE id = ?`, id,
	).Scan(&sv.ID, &sv.Name, &sv.Description, &sv.Rate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get service %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get service %d: %w", id, err)
	}
	return sv, nil
}

// ListServices returns all services in insertion order.
func (s *Store) ListServices() ([]Service, error) {
	rows, err := s.db.Query(`SELECT id, name, description, rate FROM services ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var sv Service
		if err := rows.Scan(&sv.ID, &sv.Name, &sv.Description, &sv.Rate); err != nil {
			return nil, err
		}
		services = append(services, sv)
	}
	return services, rows.Err()
}

func (s *Store) UpdateService(id int64, name, description string, rate float64) (*Service, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("service name", "must not be empty")
	}
	if rate < 0 {
		return nil, validationErr("service rate", "must not be negative")
	}
	_, err := s.db.Exec(
		`UPDATE services SET name = ?, description = ?, rate = ? WHERE id = ?`,
		name, description, rate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update service %d: %w", id, err)
	}
	return s.GetService(id)
}

// DeleteService removes the service and, by cascade, every
// clients_to_services row referencing it and their time stamps.
func (s *Store) DeleteService(id int64) error {
	_, err := s.db.Exec(`DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete service %d: %w", id, err)
	}
	return nil
}
