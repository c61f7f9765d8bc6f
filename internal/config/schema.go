package config

import (
	"time"
)

// Config is the persistent configuration for sitedir
type Config struct {
	Directory DirectoryConfig `yaml:"directory" toml:"directory"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// DirectoryConfig controls how the directory is read and resolved
type DirectoryConfig struct {
	// BaseURL is the default scope to resolve
	BaseURL string `yaml:"base_url" toml:"base_url"`
	// Token is the bearer token; TokenEnv names an environment variable holding it
	Token    string `yaml:"token,omitempty" toml:"token"`
	TokenEnv string `yaml:"token_env,omitempty" toml:"token_env"`
	// RequestTimeout bounds each directory request
	RequestTimeout Duration `yaml:"request_timeout" toml:"request_timeout"`
	// RowLimit caps search results per hub
	RowLimit int `yaml:"row_limit" toml:"row_limit"`
	// VerifyPolicy decides hub verification when the identity record is unreachable
	VerifyPolicy VerifyPolicy `yaml:"verify_policy" toml:"verify_policy"`
	// MaxConcurrent limits how many hubs are resolved at once
	MaxConcurrent int `yaml:"max_concurrent" toml:"max_concurrent"`
	// Highlight lists hub IDs or URLs to flag in the tree
	Highlight []string `yaml:"highlight,omitempty" toml:"highlight"`
	// Snapshot, when set, reads from a local SQLite snapshot instead of the live directory
	Snapshot string `yaml:"snapshot,omitempty" toml:"snapshot"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string   `yaml:"addr" toml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout" toml:"write_timeout"`
	CORSOrigins  []string `yaml:"cors_origins,omitempty" toml:"cors_origins"`
	// AllowedScopes lists extra scope URLs clients may request; the scheme and
	// host of each entry, and of directory.base_url, are accepted
	AllowedScopes []string `yaml:"allowed_scopes,omitempty" toml:"allowed_scopes"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Duration wraps time.Duration for YAML and TOML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by TOML)
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
