// Package config loads the papertrade YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"

	defaultDataDir      = "./data"
	defaultJournalDir   = "./wal/ledger"
	defaultTickInterval = 5 * time.Second
	defaultLogLevel     = "info"
	defaultWebAddr      = ":8080"
	defaultCertCacheDir = "cert-cache"
)

var defaultStartingBalance = decimal.NewFromInt(100)

type Config struct {
	DataDir         string
	StartingBalance decimal.Decimal
	TickInterval    time.Duration
	LogLevel        string
	JournalDir      string
	Storage         StorageConfig
	Web             WebConfig
}

type StorageConfig struct {
	Driver      string
	PostgresURL string
}

type WebConfig struct {
	Addr         string
	TLSDomains   []string
	CertCacheDir string
}

// ConfigTmp is the raw YAML shape. Money is kept as a string so it parses exactly.
type ConfigTmp struct {
	DataDir         string        `yaml:"data_dir,omitempty"`
	StartingBalance string        `yaml:"starting_balance,omitempty"`
	TickInterval    time.Duration `yaml:"tick_interval,omitempty"`
	LogLevel        string        `yaml:"log_level,omitempty"`
	JournalDir      string        `yaml:"journal_dir,omitempty"`
	Storage         StorageTmp    `yaml:"storage,omitempty"`
	Web             WebTmp        `yaml:"web,omitempty"`
}

type StorageTmp struct {
	Driver      string `yaml:"driver,omitempty"`
	PostgresURL string `yaml:"postgres_url,omitempty"`
}

type WebTmp struct {
	Addr         string   `yaml:"addr,omitempty"`
	TLSDomains   []string `yaml:"tls_domains,omitempty"`
	CertCacheDir string   `yaml:"cert_cache_dir,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:         defaultDataDir,
		StartingBalance: defaultStartingBalance,
		TickInterval:    defaultTickInterval,
		LogLevel:        defaultLogLevel,
		JournalDir:      defaultJournalDir,
		Storage:         StorageConfig{Driver: DriverFile},
		Web:             WebConfig{Addr: defaultWebAddr, CertCacheDir: defaultCertCacheDir},
	}
}

// Load reads path, or returns defaults when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(f)
}

// Parse decodes YAML, fills in defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var tmp ConfigTmp
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return Config{}, fmt.Errorf("failed to parse yaml config: %w", err)
	}
	return tmp.Config()
}

// Config fills in defaults and validates the raw values.
func (c ConfigTmp) Config() (Config, error) {
	cfg := Default()

	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.StartingBalance != "" {
		balance, err := decimal.NewFromString(c.StartingBalance)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'starting_balance' param in yaml config (must be a decimal), error: %w", err)
		}
		cfg.StartingBalance = balance
	}
	if c.TickInterval != 0 {
		cfg.TickInterval = c.TickInterval
	}
	if c.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(c.LogLevel)
	}
	if c.JournalDir != "" {
		cfg.JournalDir = c.JournalDir
	}
	if c.Storage.Driver != "" {
		cfg.Storage.Driver = strings.ToLower(c.Storage.Driver)
	}
	cfg.Storage.PostgresURL = c.Storage.PostgresURL
	if c.Web.Addr != "" {
		cfg.Web.Addr = c.Web.Addr
	}
	cfg.Web.TLSDomains = c.Web.TLSDomains
	if c.Web.CertCacheDir != "" {
		cfg.Web.CertCacheDir = c.Web.CertCacheDir
	}

	return cfg, cfg.Validate()
}

// Tmp converts the configuration back to its YAML shape.
func (c Config) Tmp() ConfigTmp {
	return ConfigTmp{
		DataDir:         c.DataDir,
		StartingBalance: c.StartingBalance.String(),
		TickInterval:    c.TickInterval,
		LogLevel:        c.LogLevel,
		JournalDir:      c.JournalDir,
		Storage: StorageTmp{
			Driver:      c.Storage.Driver,
			PostgresURL: c.Storage.PostgresURL,
		},
		Web: WebTmp{
			Addr:         c.Web.Addr,
			TLSDomains:   c.Web.TLSDomains,
			CertCacheDir: c.Web.CertCacheDir,
		},
	}
}

// Write stores the configuration as YAML at path.
func Write(path string, c Config) error {
	data, err := yaml.Marshal(c.Tmp())
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// Validate checks ranges and required fields.
func (c Config) Validate() error {
	if c.StartingBalance.IsNegative() {
		return fmt.Errorf("starting_balance must not be negative, got %s", c.StartingBalance)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.Storage.Driver {
	case DriverFile:
		if c.DataDir == "" {
			return fmt.Errorf("data_dir is required for the file storage driver")
		}
	case DriverPostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("storage.postgres_url is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Web.Addr == "" {
		return fmt.Errorf("web.addr is required")
	}
	return nil
}
