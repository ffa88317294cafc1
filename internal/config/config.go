package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/fars/internal/fars"
)

// Config holds the connection and display settings for fars.
type Config struct {
	BaseURL       string
	Username      string
	Password      string
	LoginPath     string
	APIPath       string
	SessionCookie string
	CSRFCookie    string
	CSRFField     string
	Bookable      string
	Days          int
	LegacyQuery   bool
	LogDir        string
	LogLevel      string
}

const (
	defaultConfigPath    = "~/.config/fars/config.toml"
	defaultLogDir        = "~/.local/share/fars/logs"
	defaultLoginPath     = "/login/"
	defaultAPIPath       = "/api/"
	defaultSessionCookie = "sessionid"
	defaultCSRFCookie    = "csrftoken"
	defaultCSRFField     = "csrfmiddlewaretoken"
	defaultDays          = 7
	defaultLogLevel      = "info"

	// PasswordEnv overrides the configured password when set.
	PasswordEnv = "FARS_PASSWORD"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the fars config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL       string `toml:"base_url"`
		Username      string `toml:"username"`
		Password      string `toml:"password"`
		LoginPath     string `toml:"login_path"`
		APIPath       string `toml:"api_path"`
		SessionCookie string `toml:"session_cookie"`
		CSRFCookie    string `toml:"csrf_cookie"`
		CSRFField     string `toml:"csrf_field"`
		Bookable      string `toml:"bookable"`
		Days          *int   `toml:"days"`
		LegacyQuery   bool   `toml:"legacy_query"`
		LogDir        string `toml:"log_dir"`
		LogLevel      string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/")
	cfg.Username = strings.TrimSpace(raw.Username)
	cfg.Password = raw.Password
	cfg.LoginPath = orDefault(raw.LoginPath, defaultLoginPath)
	cfg.APIPath = orDefault(raw.APIPath, defaultAPIPath)
	cfg.SessionCookie = orDefault(raw.SessionCookie, defaultSessionCookie)
	cfg.CSRFCookie = orDefault(raw.CSRFCookie, defaultCSRFCookie)
	cfg.CSRFField = orDefault(raw.CSRFField, defaultCSRFField)
	cfg.Bookable = strings.TrimSpace(raw.Bookable)
	if raw.Days != nil {
		cfg.Days = *raw.Days
	}
	cfg.LegacyQuery = raw.LegacyQuery
	cfg.LogDir = mustExpand(orDefault(raw.LogDir, defaultLogDir))
	cfg.LogLevel = orDefault(raw.LogLevel, defaultLogLevel)
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ClientOptions converts the config into fars client options.
func (c Config) ClientOptions() fars.Options {
	return fars.Options{
		BaseURL:       c.BaseURL,
		Username:      c.Username,
		Password:      c.Password,
		LoginPath:     c.LoginPath,
		APIPath:       c.APIPath,
		SessionCookie: c.SessionCookie,
		CSRFCookie:    c.CSRFCookie,
		CSRFField:     c.CSRFField,
		LegacyQuery:   c.LegacyQuery,
	}
}

// LogPath returns the path to the fars log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/fars.log")
	}
	return filepath.Join(c.LogDir, "fars.log")
}

func defaults() Config {
	return Config{
		LoginPath:     defaultLoginPath,
		APIPath:       defaultAPIPath,
		SessionCookie: defaultSessionCookie,
		CSRFCookie:    defaultCSRFCookie,
		CSRFField:     defaultCSRFField,
		Days:          defaultDays,
		LogDir:        mustExpand(defaultLogDir),
		LogLevel:      defaultLogLevel,
	}
}

func (c *Config) applyEnv() {
	if pw, ok := os.LookupEnv(PasswordEnv); ok && pw != "" {
		c.Password = pw
	}
}

func (c Config) validate() error {
	for name, path := range map[string]string{"login_path": c.LoginPath, "api_path": c.APIPath} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s %q must start with /", name, path)
		}
	}
	if !strings.HasSuffix(c.APIPath, "/") {
		return fmt.Errorf("api_path %q must end with /", c.APIPath)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
