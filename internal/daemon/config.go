// Package daemon wires configuration, the sqlite store, the HTTP server and
// the scheduled sweeps into one long-running process.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/mutuelle-network/mutuelle/internal/domain"
)

// Config is the daemon configuration, loaded from a TOML file.
type Config struct {
	Mutuelle MutuelleConfig `toml:"mutuelle"`
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Schedule ScheduleConfig `toml:"schedule"`
}

// MutuelleConfig carries the association parameters. Amounts are decimal
// strings so configuration survives exactly what the ledger stores.
type MutuelleConfig struct {
	RegistrationAmount string `toml:"registration_amount"`
	SolidarityAmount   string `toml:"solidarity_amount"`
	InterestRate       string `toml:"interest_rate"`
	LoanMultiplier     int64  `toml:"loan_multiplier"`
	LoanTermDays       int    `toml:"loan_term_days"`
	PeriodMonths       int    `toml:"period_months"`
}

type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

type DatabaseConfig struct {
	Path string `toml:"path"` // data directory
}

// ScheduleConfig holds the cron specs for the sweeps.
type ScheduleConfig struct {
	StatusSync string `toml:"status_sync"`
	Financial  string `toml:"financial"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Mutuelle: MutuelleConfig{
			RegistrationAmount: "5000",
			SolidarityAmount:   "2000",
			InterestRate:       "5",
			LoanMultiplier:     3,
			LoanTermDays:       60,
			PeriodMonths:       12,
		},
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8990,
			Metrics: true,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(home, ".mutuelle"),
		},
		Schedule: ScheduleConfig{
			StatusSync: "30 6,12,18 * * *",
			Financial:  "0 6 * * *",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// the defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(cfg.Database.Path, "config.toml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Params converts the configured amounts into the core's parameter value.
func (c Config) Params() (domain.Params, error) {
	p := domain.Params{
		LoanMultiplier: c.Mutuelle.LoanMultiplier,
		LoanTermDays:   c.Mutuelle.LoanTermDays,
		PeriodMonths:   c.Mutuelle.PeriodMonths,
	}
	var err error
	if p.RegistrationAmount, err = decimal.NewFromString(c.Mutuelle.RegistrationAmount); err != nil {
		return p, fmt.Errorf("registration_amount: %w", err)
	}
	if p.SolidarityAmount, err = decimal.NewFromString(c.Mutuelle.SolidarityAmount); err != nil {
		return p, fmt.Errorf("solidarity_amount: %w", err)
	}
	if p.InterestRate, err = decimal.NewFromString(c.Mutuelle.InterestRate); err != nil {
		return p, fmt.Errorf("interest_rate: %w", err)
	}
	return p, nil
}

// Addr returns the host:port the API listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
