package config

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// Config is the top-level dailybrief configuration, corresponding to .dailybrief.yml.
type Config struct {
	// Source is the static host root: an http(s) base URL or a local directory.
	Source string       `yaml:"source" koanf:"source"`
	Paths  PathsConfig  `yaml:"paths" koanf:"paths"`
	Server ServerConfig `yaml:"server" koanf:"server"`
	Fetch  FetchConfig  `yaml:"fetch" koanf:"fetch"`
	Log    LogConfig    `yaml:"log" koanf:"log"`
	Site   SiteConfig   `yaml:"site" koanf:"site"`
	Render RenderConfig `yaml:"render" koanf:"render"`
	Watch  WatchConfig  `yaml:"watch" koanf:"watch"`
}

// PathsConfig holds document paths relative to Source.
type PathsConfig struct {
	Brief      string `yaml:"brief" koanf:"brief"`
	Jargon     string `yaml:"jargon" koanf:"jargon"`
	Lab        string `yaml:"lab" koanf:"lab"`
	Manifest   string `yaml:"manifest" koanf:"manifest"`
	ArchiveDir string `yaml:"archive_dir" koanf:"archive_dir"`
}

// ServerConfig holds live server settings.
type ServerConfig struct {
	Port int `yaml:"port" koanf:"port"`
}

// FetchConfig holds document source settings.
type FetchConfig struct {
	Timeout string `yaml:"timeout" koanf:"timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}

// SiteConfig holds static site generation settings.
type SiteConfig struct {
	OutputDir      string `yaml:"output_dir" koanf:"output_dir"`
	MaxConcurrency int    `yaml:"max_concurrency" koanf:"max_concurrency"`
}

// RenderConfig holds presentation settings.
type RenderConfig struct {
	Markdown     bool   `yaml:"markdown" koanf:"markdown"`
	PageTemplate string `yaml:"page_template" koanf:"page_template"`
}

// WatchConfig lists the globs that trigger a rebuild or reload.
type WatchConfig struct {
	Include  []string `yaml:"include" koanf:"include"`
	Debounce string   `yaml:"debounce" koanf:"debounce"`
}
