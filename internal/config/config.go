// Package config handles the configuration directory, the optional
// config.toml file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "tasklist"

	// ConfigFile is the optional TOML settings filename.
	ConfigFile = "config.toml"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// LogFile receives logs while the interactive screen owns the terminal.
	LogFile = "tasklist.log"
)

// Backend names accepted by the backend setting.
const (
	BackendFile        = "file"
	BackendSQLite      = "sqlite"
	BackendMySQL       = "mysql"
	BackendGoogleTasks = "googletasks"
)

// Defaults.
const (
	DefaultBackend    = BackendFile
	DefaultFile       = "tasks.json"
	DefaultSQLiteDSN  = "tasks.db"
	DefaultGoogleList = "@default"
	DefaultLogLevel   = "info"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	Backend  string `toml:"backend"`
	LogLevel string `toml:"log_level"`

	File        FileConfig        `toml:"file"`
	SQL         SQLConfig         `toml:"sql"`
	GoogleTasks GoogleTasksConfig `toml:"googletasks"`
}

// FileConfig configures the JSON file store.
type FileConfig struct {
	// Path is the task document; relative paths are resolved against Dir.
	Path string `toml:"path"`
}

// SQLConfig configures the sqlite and mysql stores.
type SQLConfig struct {
	// DSN is a sqlite file path (relative to Dir) or a MySQL DSN.
	DSN string `toml:"dsn"`
}

// GoogleTasksConfig configures the Google Tasks store.
type GoogleTasksConfig struct {
	// List is the task list ID; "@default" is the user's default list.
	List string `toml:"list"`
}

// New creates a Config with defaults for the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasklist or $HOME/.config/tasklist.
// It does not read config.toml; see Load.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:         dir,
		Backend:     DefaultBackend,
		LogLevel:    DefaultLogLevel,
		File:        FileConfig{Path: DefaultFile},
		GoogleTasks: GoogleTasksConfig{List: DefaultGoogleList},
	}, nil
}

// Load builds a Config from defaults, then config.toml in the directory
// (if present), then TASKLIST_* environment variables.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadFile(cfg.ConfigPath()); err != nil {
		return nil, err
	}
	cfg.loadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes path over the current values. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parse %s: unknown key %s", ConfigFile, undecoded[0])
	}
	return nil
}

// loadEnv overrides config from environment variables.
func (c *Config) loadEnv() {
	if v := os.Getenv("TASKLIST_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TASKLIST_FILE"); v != "" {
		c.File.Path = v
	}
	if v := os.Getenv("TASKLIST_DSN"); v != "" {
		c.SQL.DSN = v
	}
	if v := os.Getenv("TASKLIST_GOOGLE_LIST"); v != "" {
		c.GoogleTasks.List = v
	}
	if v := os.Getenv("TASKLIST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the backend and log level names.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMySQL, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	if c.Backend == BackendMySQL && c.SQL.DSN == "" {
		return errors.New("mysql backend requires sql.dsn")
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.toml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// FilePath returns the absolute or Dir-relative task document path.
func (c *Config) FilePath() string {
	return c.resolve(c.File.Path, DefaultFile)
}

// SQLiteDSN returns the sqlite database path.
func (c *Config) SQLiteDSN() string {
	return c.resolve(c.SQL.DSN, DefaultSQLiteDSN)
}

// LogPath returns the log file used by the interactive screen.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

func (c *Config) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "file:") {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
