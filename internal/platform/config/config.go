package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL = "http://localhost:8000"
	DefaultTimeout    = 15 * time.Second

	BackendSQLite = "sqlite"
	BackendFile   = "file"

	fileName = "config.yaml"
)

type Config struct {
	StateDir string `yaml:"-"`
	DBPath   string `yaml:"-"`

	APIBaseURL     string        `yaml:"api_base_url"`
	LogLevel       string        `yaml:"log_level"`
	LogPath        string        `yaml:"log_path"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryWait      time.Duration `yaml:"retry_wait"`
	RateLimit      float64       `yaml:"rate_limit"`
	SessionBackend string        `yaml:"session_backend"`

	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

// DefaultStateDir is <user config dir>/healthdash, falling back to ./.healthdash.
func DefaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".healthdash"
	}
	return filepath.Join(dir, "healthdash")
}

// New resolves configuration for stateDir: defaults, then <stateDir>/config.yaml,
// then HEALTHDASH_* and OTEL_* environment variables.
func New(stateDir string) (Config, error) {
	if strings.TrimSpace(stateDir) == "" {
		return Config{}, fmt.Errorf("state dir is required")
	}
	cfg := Config{
		StateDir:       stateDir,
		DBPath:         filepath.Join(stateDir, "healthdash.db"),
		APIBaseURL:     DefaultAPIBaseURL,
		LogLevel:       "info",
		LogPath:        filepath.Join(stateDir, "healthdash.log"),
		Timeout:        DefaultTimeout,
		RetryWait:      200 * time.Millisecond,
		SessionBackend: BackendSQLite,
	}
	if err := cfg.loadFile(filepath.Join(stateDir, fileName)); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HEALTHDASH_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("HEALTHDASH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HEALTHDASH_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("HEALTHDASH_SESSION_BACKEND"); v != "" {
		c.SessionBackend = v
	}
	if v := os.Getenv("HEALTHDASH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HEALTHDASH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("HEALTHDASH_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HEALTHDASH_MAX_RETRIES: %w", err)
		}
		c.MaxRetries = n
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.OTLPEndpoint = v
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		c.OTLPInsecure = true
	}
	return nil
}

// WithAPIBaseURL returns a copy pointing at a different service, as used by --api.
func (c Config) WithAPIBaseURL(raw string) (Config, error) {
	if strings.TrimSpace(raw) == "" {
		return c, nil
	}
	c.APIBaseURL = strings.TrimRight(raw, "/")
	return c, c.Validate()
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http(s) URL", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url %q must use http or https", c.APIBaseURL)
	}
	if c.SessionBackend != BackendSQLite && c.SessionBackend != BackendFile {
		return fmt.Errorf("session backend must be one of: %s, %s", BackendSQLite, BackendFile)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}
