// Package config loads optional settings from
// ~/.config/clockit/config.yaml, falling back to sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/sadopc/clockit/internal/store"
)

type Config struct {
	DBPath     string
	Currency   string
	InvoiceDir string
}

// Load reads config.yaml if present. A missing file is not an error; a
// malformed one is.
func Load() (*Config, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve default db path: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if cfgDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(cfgDir, "clockit"))
	}

	v.SetDefault("db_path", dbPath)
	v.SetDefault("currency", "$")
	v.SetDefault("invoice_dir", filepath.Join(home, "ClientInvoice"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		DBPath:     v.GetString("db_path"),
		Currency:   v.GetString("currency"),
		InvoiceDir: v.GetString("invoice_dir"),
	}, nil
}
