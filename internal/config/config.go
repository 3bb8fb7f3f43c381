package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CraftServer holds all configuration for the crafting server.
type CraftServer struct {
	// Logging: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Crafting
	Crafting CraftingConfig `yaml:"crafting"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// CraftingConfig holds tunables for the crafting engines.
type CraftingConfig struct {
	// Seed for the dice roller. Zero means seed from entropy.
	DiceSeed uint64 `yaml:"dice_seed"`

	// SaveIntervalSeconds is how often dirty state is flushed to the
	// database.
	SaveIntervalSeconds int `yaml:"save_interval_seconds"`
}

// Default returns CraftServer config with sensible defaults.
func Default() CraftServer {
	return CraftServer{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "arx",
			Password: "arx",
			DBName:   "arx",
			SSLMode:  "disable",
		},
		Crafting: CraftingConfig{
			SaveIntervalSeconds: 60,
		},
	}
}

// Load loads crafting server config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (CraftServer, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
