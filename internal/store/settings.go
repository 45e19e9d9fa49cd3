package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Keys of the settings rows seeded by the v1 migration.
const (
	SettingInvoiceMode = "invoice_mode"
	SettingCurrency    = "currency"
)

// GetSetting returns the stored value, or ErrNotFound for a key the
// migration never seeded.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// InvoiceMode is the persisted invoice layout, "grouped" until the user
// switches to itemized.
func (s *Store) InvoiceMode() (string, error) {
	return s.GetSetting(SettingInvoiceMode)
}

func (s *Store) SetInvoiceMode(mode string) error {
	return s.SetSetting(SettingInvoiceMode, mode)
}

// Currency is the symbol stored with the database, kept alongside the
// amounts it formats. The config file value takes precedence when set.
func (s *Store) Currency() (string, error) {
	return s.GetSetting(SettingCurrency)
}

func (s *Store) SetCurrency(symbol string) error {
	return s.SetSetting(SettingCurrency, symbol)
}
