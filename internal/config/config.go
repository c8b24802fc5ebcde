// Package config loads arbor settings: built-in defaults, then an optional
// TOML file, then ARBOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreNeo4j  = "neo4j"
)

// Config is the full arbor configuration.
type Config struct {
	Store string      `toml:"store"`
	DB    string      `toml:"db"` // SQLite database path
	Neo4j Neo4jConfig `toml:"neo4j"`
	Log   LogConfig   `toml:"log"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type LogConfig struct {
	Level    string `toml:"level"`
	UseCases bool   `toml:"use_cases"`
}

// Default returns the configuration used when nothing overrides it. home is
// the directory that holds the default database; an empty home keeps the
// database in the working directory.
func Default(home string) Config {
	return Config{
		Store: StoreSQLite,
		DB:    filepath.Join(home, ".arbor", "arbor.db"),
		Neo4j: Neo4jConfig{
			URI:  "neo4j://localhost:7687",
			User: "neo4j",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration for this process. The file comes from
// $ARBOR_CONFIG, else ~/.arbor/config.toml; a missing default file is not an
// error.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg := Default(home)

	path := os.Getenv("ARBOR_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, ".arbor", "config.toml")
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.Store = strings.ToLower(cfg.Store)
	return cfg, cfg.Validate()
}

// mergeFile overlays the TOML file at path. Keys absent from the file keep
// their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("ARBOR_STORE", &c.Store)
	set("ARBOR_DB", &c.DB)
	set("ARBOR_NEO4J_URI", &c.Neo4j.URI)
	set("ARBOR_NEO4J_USER", &c.Neo4j.User)
	set("ARBOR_NEO4J_PASSWORD", &c.Neo4j.Password)
	set("ARBOR_NEO4J_DATABASE", &c.Neo4j.Database)
	set("ARBOR_LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("ARBOR_LOG_USE_CASES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ARBOR_LOG_USE_CASES: %w", err)
		}
		c.Log.UseCases = b
	}
	return nil
}

// Validate rejects unknown store backends and log levels.
func (c Config) Validate() error {
	switch strings.ToLower(c.Store) {
	case StoreSQLite:
		if c.DB == "" {
			return fmt.Errorf("config: db path is required for the sqlite store")
		}
	case StoreNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("config: neo4j.uri is required for the neo4j store")
		}
	default:
		return fmt.Errorf("config: unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreNeo4j)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", l.Level, err)
	}
	return level, nil
}
