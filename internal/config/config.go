package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level bokfor.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Policy   PolicyConfig   `yaml:"policy"`
}

// DatabaseConfig locates the sqlite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig holds bookkeeping defaults.
type LedgerConfig struct {
	BaseCurrency string `yaml:"base_currency"`
	// ResultAccount receives the net result at year-end closing.
	ResultAccount string `yaml:"result_account"`
}

// PolicyConfig controls posting behavior outside the plain open state.
type PolicyConfig struct {
	// ClosingCorrections permits explicit corrective entries while a
	// fiscal year is in the closing state.
	ClosingCorrections bool `yaml:"closing_corrections"`
}

// Load reads a bokfor.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(dbPath string) *Config {
	return &Config{
		Database: DatabaseConfig{Path: dbPath},
		Ledger: LedgerConfig{
			BaseCurrency:  "SEK",
			ResultAccount: "2099",
		},
		Policy: PolicyConfig{
			ClosingCorrections: false,
		},
	}
}
