package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func (s *Store) CreateClient(name, description string) (*Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("client name", "must not be empty")
	}
	res, err := s.db.Exec(
		`INSERT INTO clients (name, description) VALUES (?, ?)`,
		name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetClient(id)
}

func (s *Store) GetClient(id int64) (*Client, error) {
	c := &Client{}
	err := s.db.QueryRow(
		`SELECT id, name, description FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get client %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client %d: %w", id, err)
	}
	return c, nil
}

// ListClients returns all clients in insertion order.
func (s *Store) ListClients() ([]Client, error) {
	rows, err := s.db.Query(`SELECT id, name, description FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) UpdateClient(id int64, name, description string) (*Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("client name", "must not be empty")
	}
	_, err := s.db.Exec(
		`UPDATE clients SET name = ?, description = ? WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update client %d: %w", id, err)
	}
	return s.GetClient(id)
}

// DeleteClient removes the client; its clients_to_services and
// clients_to_contacts rows cascade, and their time stamps with them.
// Shared services and contacts are left intact.
func (s *Store) DeleteClient(id int64) error {
	_, err := s.db.Exec(`DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	return nil
}

// ListServicesForClient returns the services the client has been billed
// under, in first-use order.
func (s *Store) ListServicesForClient(clientID int64) ([]Service, error) {
	rows, err := s.db.Query(`
		SELECT sv.id, sv.name, sv.description, sv.rate
		FROM clients_to_services cs
		JOIN services sv ON sv.id = cs.service_id
		WHERE cs.client_id = ?
		ORDER BY cs.id`, clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list client services: %w", err)
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
