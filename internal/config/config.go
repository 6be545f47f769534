package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // editor.timezone must resolve without system zoneinfo

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
	Editor    EditorConfig    `yaml:"editor"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AllowedOrigins are browser origins allowed to call the web API
	// cross-origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// APIConfig points at the workout REST backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig controls where the session token is kept between runs.
type AuthConfig struct {
	TokenStore string        `yaml:"token_store"` // sqlite or keyring
	StateDir   string        `yaml:"state_dir"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// EditorConfig tunes the session editor view-model.
type EditorConfig struct {
	DefaultType         string `yaml:"default_type"`
	DefaultLabel        string `yaml:"default_label"`
	NewExerciseCategory string `yaml:"new_exercise_category"`
	TemplatesFile       string `yaml:"templates_file"`
	Timezone            string `yaml:"timezone"`
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

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location loads the editor timezone. An empty name is UTC.
func (e EditorConfig) Location() (*time.Location, error) {
	if e.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(e.Timezone)
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	stateDir := ".liftlog"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".liftlog")
	}
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8090},
		API:    APIConfig{Timeout: 12 * time.Second},
		Auth: AuthConfig{
			TokenStore: "sqlite",
			StateDir:   stateDir,
			TokenTTL:   30 * 24 * time.Hour,
		},
		Database:  DatabaseConfig{Host: "localhost", Port: 5432, Name: "liftlog", User: "liftlog"},
		Tailscale: TailscaleConfig{Hostname: "liftlog", StateDir: filepath.Join(stateDir, "tsnet")},
		Log:       LogConfig{Level: "info"},
		Editor: EditorConfig{
			DefaultType:         "Workout",
			DefaultLabel:        "Workout",
			NewExerciseCategory: "Custom",
		},
	}
}

// Load reads config from a YAML file over Defaults, then applies environment
// variable overrides. An empty path skips the file.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_SERVER_ALLOWED_ORIGINS,
//	LIFTLOG_API_BASE_URL, LIFTLOG_API_TIMEOUT,
//	LIFTLOG_AUTH_TOKEN_STORE, LIFTLOG_AUTH_STATE_DIR,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME,
//	LIFTLOG_LOG_LEVEL, LIFTLOG_LOG_FILE,
//	LIFTLOG_EDITOR_TEMPLATES_FILE, LIFTLOG_EDITOR_TIMEZONE
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("LIFTLOG_SERVER_HOST", &cfg.Server.Host)
	num("LIFTLOG_SERVER_PORT", &cfg.Server.Port)
	if v := os.Getenv("LIFTLOG_SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
			}
		}
	}
	str("LIFTLOG_API_BASE_URL", &cfg.API.BaseURL)
	if v := os.Getenv("LIFTLOG_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	str("LIFTLOG_AUTH_TOKEN_STORE", &cfg.Auth.TokenStore)
	str("LIFTLOG_AUTH_STATE_DIR", &cfg.Auth.StateDir)
	str("LIFTLOG_DB_HOST", &cfg.Database.Host)
	num("LIFTLOG_DB_PORT", &cfg.Database.Port)
	str("LIFTLOG_DB_NAME", &cfg.Database.Name)
	str("LIFTLOG_DB_USER", &cfg.Database.User)
	str("LIFTLOG_DB_PASSWORD", &cfg.Database.Password)
	str("LIFTLOG_DB_SSLMODE", &cfg.Database.SSLMode)
	num("LIFTLOG_DB_MAX_CONNS", &cfg.Database.MaxConns)
	if v := os.Getenv("LIFTLOG_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	str("LIFTLOG_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	str("LIFTLOG_LOG_LEVEL", &cfg.Log.Level)
	str("LIFTLOG_LOG_FILE", &cfg.Log.File)
	str("LIFTLOG_EDITOR_TEMPLATES_FILE", &cfg.Editor.TemplatesFile)
	str("LIFTLOG_EDITOR_TIMEZONE", &cfg.Editor.Timezone)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	switch c.Auth.TokenStore {
	case "sqlite", "keyring":
	default:
		return fmt.Errorf("auth.token_store must be sqlite or keyring, got %q", c.Auth.TokenStore)
	}
	if c.Auth.TokenStore == "sqlite" && c.Auth.StateDir == "" {
		return fmt.Errorf("auth.state_dir is required for the sqlite token store")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if _, err := c.Editor.Location(); err != nil {
		return fmt.Errorf("editor.timezone: %w", err)
	}
	return nil
}

// RequireAPI checks the settings needed by binaries that talk to the backend.
func (c *Config) RequireAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	return nil
}

// RequireDatabase checks the settings needed by the backend server.
func (c *Config) RequireDatabase() error {
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
	return nil
}
