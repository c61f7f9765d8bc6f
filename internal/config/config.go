// Package config provides configuration management for sitedir.
//
// Config file locations (priority order):
//  1. $SITEDIR_CONFIG
//  2. ./sitedir.yaml or ./sitedir.toml
//  3. $XDG_CONFIG_HOME/sitedir/config.yaml
//  4. ~/.config/sitedir/config.yaml
//  5. /etc/sitedir/config.yaml
//
// Files ending in .toml are decoded as TOML, everything else as YAML.
// A handful of environment variables override file values; see ApplyEnv.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// EnvBaseURL overrides directory.base_url
	EnvBaseURL = "SITEDIR_BASE_URL"
	// EnvLogLevel overrides log.level
	EnvLogLevel = "SITEDIR_LOG_LEVEL"
	// EnvVerifyPolicy overrides directory.verify_policy
	EnvVerifyPolicy = "SITEDIR_VERIFY_POLICY"
	// DefaultTokenEnv is read for the bearer token when no token is configured
	DefaultTokenEnv = "SITEDIR_TOKEN"
)

// Load reads the config at path, or searches the standard locations when path
// is empty. Defaults and environment overrides are applied, then the result is
// validated. The returned path is empty when no file was found.
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = FindConfigPath()
	}

	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, path, err
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// LoadFromPath loads config from a specific path without environment overrides
func LoadFromPath(path string) (*Config, string, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// readFile decodes a YAML or TOML file and fills in defaults
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Directory.TokenEnv == "" {
		c.Directory.TokenEnv = DefaultTokenEnv
	}
	if c.Directory.RequestTimeout == 0 {
		c.Directory.RequestTimeout = Duration(15 * time.Second)
	}
	if c.Directory.RowLimit == 0 {
		c.Directory.RowLimit = 500
	}
	if c.Directory.VerifyPolicy == "" {
		c.Directory.VerifyPolicy = PolicyFailOpen
	}
	if c.Directory.MaxConcurrent == 0 {
		c.Directory.MaxConcurrent = 8
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(2 * time.Minute)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// ApplyEnv overrides file values from the environment
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.Directory.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVerifyPolicy)); v != "" {
		// unknown names are kept so Validate reports them
		c.Directory.VerifyPolicy, _ = ParseVerifyPolicy(v)
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	var errs []error
	if c.Directory.BaseURL != "" {
		u, err := url.Parse(c.Directory.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("directory.base_url must be an absolute URL: %q", c.Directory.BaseURL))
		}
	}
	for _, scope := range c.Server.AllowedScopes {
		u, err := url.Parse(scope)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("server.allowed_scopes entries must be absolute URLs: %q", scope))
		}
	}
	if !c.Directory.VerifyPolicy.Valid() {
		errs = append(errs, fmt.Errorf("directory.verify_policy must be %q or %q, got %q",
			PolicyFailOpen, PolicyFailClosed, c.Directory.VerifyPolicy))
	}
	if c.Directory.RowLimit < 0 {
		errs = append(errs, fmt.Errorf("directory.row_limit must not be negative"))
	}
	if c.Directory.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("directory.max_concurrent must not be negative"))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ResolveToken returns the configured bearer token, falling back to TokenEnv
func (c *Config) ResolveToken() string {
	if c.Directory.Token != "" {
		return c.Directory.Token
	}
	if c.Directory.TokenEnv != "" {
		return os.Getenv(c.Directory.TokenEnv)
	}
	return ""
}

// Marshal renders the config as YAML, with the token redacted
func (c *Config) Marshal() ([]byte, error) {
	redacted := *c
	if redacted.Directory.Token != "" {
		redacted.Directory.Token = "********"
	}
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	source := "live directory"
	if c.Directory.Snapshot != "" {
		source = "snapshot " + c.Directory.Snapshot
	}
	summary := fmt.Sprintf("Scope: %s (%s)\n", c.Directory.BaseURL, source)
	summary += fmt.Sprintf("Verify: %s, Concurrency: %d, Row limit: %d, Timeout: %s",
		c.Directory.VerifyPolicy, c.Directory.MaxConcurrent, c.Directory.RowLimit,
		c.Directory.RequestTimeout.Duration())
	return summary
}
