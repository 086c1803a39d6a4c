// Package config loads and validates the YAML application
// configuration. ${VAR} references are expanded from the environment
// before parsing.
package config

import (
	"os"
	"strings"

	"github.com/yanun0323/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

// Config is the root configuration of the reference-data service.
type Config struct {
	// Culture is the current culture tag, e.g. "en-US".
	Culture string `yaml:"culture"`

	// CultureFallback is the ordered list of cultures consulted when a
	// text group has no row for the current culture.
	CultureFallback []string `yaml:"culture_fallback"`

	// TimeZoneMode is "utc" or "local" and controls how incoming
	// timestamps are interpreted at the manager boundary.
	TimeZoneMode string `yaml:"time_zone_mode"`

	Store StoreConfig `yaml:"store"`

	// Providers is the registry of data-provider names; every
	// provider-scoped store partition is migrated per entry.
	Providers []string `yaml:"providers"`
}

// StoreConfig locates the embedded database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config yaml")
	}
	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates. This
// is the entry point binaries use; validation failures are fatal.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Culture == "" {
		c.Culture = "en"
	}
	if len(c.CultureFallback) == 0 {
		c.CultureFallback = []string{"en"}
	}
	if c.TimeZoneMode == "" {
		c.TimeZoneMode = "utc"
	}
}

// Validate fails fast on configuration errors; nothing is checked
// lazily at use sites.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Culture); err != nil {
		return errors.Wrapf(exception.ErrConfiguration, "culture %q", c.Culture)
	}
	if len(c.CultureFallback) == 0 {
		return errors.Wrap(exception.ErrConfiguration, "empty culture fallback list")
	}
	for _, culture := range c.CultureFallback {
		if _, err := language.Parse(culture); err != nil {
			return errors.Wrapf(exception.ErrConfiguration, "fallback culture %q", culture)
		}
	}

	if _, err := c.Mode(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.Wrap(exception.ErrConfiguration, "empty store path")
	}

	seen := make(map[string]struct{}, len(c.Providers))
	for _, provider := range c.Providers {
		if strings.TrimSpace(provider) == "" {
			return errors.Wrap(exception.ErrConfiguration, "empty provider name")
		}
		if _, dup := seen[provider]; dup {
			return errors.Wrapf(exception.ErrConfiguration, "duplicate provider %q", provider)
		}
		seen[provider] = struct{}{}
	}
	return nil
}

// Mode parses the configured time-zone mode.
func (c *Config) Mode() (enum.TimeZoneMode, error) {
	switch strings.ToLower(c.TimeZoneMode) {
	case "utc":
		return enum.TimeZoneUTC, nil
	case "local":
		return enum.TimeZoneLocal, nil
	default:
		return 0, errors.Wrapf(exception.ErrConfiguration, "time zone mode %q", c.TimeZoneMode)
	}
}

// CurrentTag returns the parsed current culture. Call after Validate.
func (c *Config) CurrentTag() language.Tag {
	return language.Make(c.Culture)
}

// FallbackTags returns the parsed fallback cultures in order.
func (c *Config) FallbackTags() []language.Tag {
	tags := make([]language.Tag, 0, len(c.CultureFallback))
	for _, culture := range c.CultureFallback {
		tags = append(tags, language.Make(culture))
	}
	return tags
}
