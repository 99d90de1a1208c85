package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog sources.
const (
	CatalogBuiltin  = "builtin"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
	CatalogSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Database  DatabaseConfig  `yaml:"database"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AuthConfig is optional: an empty APIKey leaves edit routes open.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type CatalogConfig struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	Migrations string `yaml:"migrations"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MaxSessions   int           `yaml:"max_sessions"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix RPPLANNER_ and underscore-separated paths:
//
//	RPPLANNER_SERVER_HOST, RPPLANNER_SERVER_PORT, RPPLANNER_TAILSCALE_ENABLED,
//	RPPLANNER_AUTH_API_KEY, RPPLANNER_CATALOG_SOURCE, RPPLANNER_CATALOG_PATH,
//	RPPLANNER_DB_HOST, RPPLANNER_DB_PORT, RPPLANNER_DB_NAME,
//	RPPLANNER_DB_USER, RPPLANNER_DB_PASSWORD, RPPLANNER_DB_SSLMODE,
//	RPPLANNER_SQLITE_PATH, RPPLANNER_LOG_LEVEL, RPPLANNER_LOG_FILE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given: builtin
// catalog, in-memory sessions, local HTTP on port 8080.
func Default() *Config {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 8080}}
	applyEnvOverrides(cfg)
	cfg.applyDefaults()
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RPPLANNER_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RPPLANNER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RPPLANNER_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("RPPLANNER_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("RPPLANNER_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("RPPLANNER_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("RPPLANNER_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("RPPLANNER_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("RPPLANNER_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("RPPLANNER_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("RPPLANNER_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("RPPLANNER_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("RPPLANNER_SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	if v := os.Getenv("RPPLANNER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RPPLANNER_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func (c *Config) applyDefaults() {
	if c.Catalog.Source == "" {
		c.Catalog.Source = CatalogBuiltin
	}
	if c.Database.Migrations == "" {
		c.Database.Migrations = "migrations"
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "rpplanner"
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = 2 * time.Hour
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = time.Minute
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 1000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Catalog.Source {
	case CatalogBuiltin:
	case CatalogFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for file catalogs")
		}
	case CatalogPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case CatalogSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required")
		}
	default:
		return fmt.Errorf("catalog.source %q is not one of builtin, file, postgres, sqlite", c.Catalog.Source)
	}
	if c.Session.IdleTimeout < 0 || c.Session.SweepInterval < 0 || c.Session.MaxSessions < 0 {
		return fmt.Errorf("session settings must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
