package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. Nested keys are joined with a
// double underscore: DAILYBRIEF_PATHS__BRIEF -> paths.brief.
const EnvPrefix = "DAILYBRIEF_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DAILYBRIEF_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[LogFormat]bool{
	LogText: true,
	LogJSON: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if IsURL(c.Source) {
		if _, err := url.ParseRequestURI(c.Source); err != nil {
			return fmt.Errorf("invalid source URL %q: %w", c.Source, err)
		}
	} else if info, err := os.Stat(c.Source); err != nil || !info.IsDir() {
		return fmt.Errorf("source %q must be an http(s) URL or an existing directory", c.Source)
	}

	for name, p := range map[string]string{
		"paths.brief":       c.Paths.Brief,
		"paths.jargon":      c.Paths.Jargon,
		"paths.lab":         c.Paths.Lab,
		"paths.manifest":    c.Paths.Manifest,
		"paths.archive_dir": c.Paths.ArchiveDir,
	} {
		if p == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if _, err := c.FetchTimeout(); err != nil {
		return err
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of text, json", c.Log.Format)
	}

	if c.Site.MaxConcurrency < 0 {
		return fmt.Errorf("site.max_concurrency must be non-negative")
	}

	for _, pattern := range c.Watch.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid watch pattern %q", pattern)
		}
	}
	if _, err := c.WatchDebounce(); err != nil {
		return err
	}

	return nil
}

// FetchTimeout parses fetch.timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid fetch.timeout %q: must be a positive duration", c.Fetch.Timeout)
	}
	return d, nil
}

// WatchDebounce parses watch.debounce. Empty means no debounce.
func (c *Config) WatchDebounce() (time.Duration, error) {
	if c.Watch.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid watch.debounce %q", c.Watch.Debounce)
	}
	return d, nil
}

// IsURL reports whether source names an http(s) location.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
