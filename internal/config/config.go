package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/gtfoseed/internal/event"
)

// EnvPrefix prefixes every environment override, e.g. SEEDGEN_LOG_LEVEL.
const EnvPrefix = "SEEDGEN_"

// Indexer holds all configuration for the seed indexer.
type Indexer struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// LevelsPath overrides the bundled level catalog. Empty uses the bundled one.
	LevelsPath string `yaml:"levels_path" env:"LEVELS_PATH"`

	// Output
	Format event.Format `yaml:"format" env:"FORMAT"`

	// Worker loop
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"` // default: 100ms
	QueueSize    int           `yaml:"queue_size" env:"QUEUE_SIZE"`
	Workers      int           `yaml:"workers" env:"WORKERS"` // batch mode; 0 = GOMAXPROCS

	// Persistence
	StoreRuns bool           `yaml:"store_runs" env:"STORE_RUNS"`
	Database  DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"DBNAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
	MaxConns int32  `yaml:"max_conns" env:"MAX_CONNS"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultIndexer returns Indexer config with sensible defaults.
func DefaultIndexer() Indexer {
	return Indexer{
		LogLevel:     "info",
		Format:       event.FormatJSON,
		PollInterval: 100 * time.Millisecond,
		QueueSize:    64,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gtfoseed",
			Password: "gtfoseed",
			DBName:   "gtfoseed",
			SSLMode:  "disable",
			MaxConns: 4,
		},
	}
}

// LoadIndexer loads indexer config from a YAML file and applies SEEDGEN_*
// environment overrides on top.
// If the file doesn't exist, returns defaults with overrides applied.
func LoadIndexer(path string) (Indexer, error) {
	cfg := DefaultIndexer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Indexer) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
