package store

import (
	"fmt"
	"strings"
)

// CreateContact inserts a contact and its clients_to_contacts join in one
// transaction, so a failure leaves neither row behind.
func (s *Store) CreateContact(clientID int64, first, last, email, number string) (*Contact, error) {
	if strings.TrimSpace(first) == "" {
		return nil, validationErr("first name", "must not be empty")
	}
	if strings.TrimSpace(last) == "" {
		return nil, validationErr("last name", "must not be empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin contact insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO contacts (first_name, last_name, number, email) VALUES (?, ?, ?, ?)`,
		first, last, number, email,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	id, _ := res.LastInsertId()

	if _, err := tx.Exec(
		`INSERT INTO clients_to_contacts (client_id, contact_id) VALUES (?, ?)`,
		clientID, id,
	); err != nil {
		return nil, fmt.Errorf("insert client contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit contact insert: %w", err)
	}

	return &Contact{ID: id, FirstName: first, LastName: last, Number: number, Email: email}, nil
}

// ImportContact creates a contact from an external picker result. If the
// source carries several phone numbers or emails, the first wins and the
// rest are discarded.
func (s *Store) ImportContact(clientID int64, picked PickedContact) (*Contact, error) {
	number, email := "", ""
	if len(picked.PhoneNumbers) > 0 {
		number = picked.PhoneNumbers[0]
	}
	if len(picked.Emails) > 0 {
		email = picked.Emails[0]
	}
	return s.CreateContact(clientID, picked.FirstName, picked.LastName, email, number)
}

func (s *Store) ListContactsForClient(clientID int64) ([]Contact, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.first_name, c.last_name, c.number, c.email
		FROM clients_to_contacts cc
		JOIN contacts c ON c.id = cc.contact_id
		WHERE cc.client_id = ?
		ORDER BY cc.id`, clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list client contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Number, &c.Email); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// DeleteContact removes the contact; join rows cascade. Other clients
// sharing the contact lose it too, matching client-side expectations of a
// single address book row.
func (s *Store) DeleteContact(id int64) error {
	_, err := s.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	return nil
}
