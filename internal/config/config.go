// Package config resolves client settings from defaults, an optional YAML
// file and the environment. Command-line flags are applied by the caller,
// which then calls Validate.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvBaseURL           = "SPLITSYNC_BASE_URL"
	EnvTimeout           = "SPLITSYNC_TIMEOUT"
	EnvLogLevel          = "LOG_LEVEL"
	EnvSessionPath       = "SPLITSYNC_SESSION_PATH"
	EnvSessionPassphrase = "SPLITSYNC_SESSION_PASSPHRASE"
	EnvRequestsPerSecond = "SPLITSYNC_RPS"
	EnvBurst             = "SPLITSYNC_BURST"
	EnvHTTP2             = "SPLITSYNC_HTTP2"
)

const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultTimeout  = 15 * time.Second
	DefaultLogLevel = "info"
)

// Config holds client settings.
type Config struct {
	BaseURL  string        `yaml:"base_url" validate:"required,http_url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	LogLevel string        `yaml:"log_level" validate:"oneof=debug info warn error"`

	// SessionPath is the SQLite file holding the token pair. Empty keeps
	// the session in memory only.
	SessionPath string `yaml:"session_path"`
	// SessionPassphrase seals stored tokens when set.
	SessionPassphrase string `yaml:"session_passphrase"`

	// RequestsPerSecond limits outgoing requests. Zero means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=1"`
	HTTP2             bool    `yaml:"http2"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     DefaultTimeout,
		LogLevel:    DefaultLogLevel,
		SessionPath: DefaultSessionPath(),
		Burst:       1,
	}
}

// Dir returns ~/.splitsync, or a relative .splitsync when there is no home.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".splitsync"
	}
	return filepath.Join(home, ".splitsync")
}

// DefaultSessionPath returns ~/.splitsync/session.db.
func DefaultSessionPath() string {
	return filepath.Join(Dir(), "session.db")
}

// DefaultFilePath returns ~/.splitsync/config.yaml.
func DefaultFilePath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load applies the YAML file at path (if it exists) and then the
// environment on top of the defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvSessionPath); v != "" {
		c.SessionPath = v
	}
	if v := getenv(EnvSessionPassphrase); v != "" {
		c.SessionPassphrase = v
	}
	if v := getenv(EnvRequestsPerSecond); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRequestsPerSecond, err)
		}
		c.RequestsPerSecond = rps
	}
	if v := getenv(EnvBurst); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBurst, err)
		}
		c.Burst = burst
	}
	if v := getenv(EnvHTTP2); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHTTP2, err)
		}
		c.HTTP2 = on
	}
	return nil
}

// Validate checks every field and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
