package config

// DefaultWatchInclude are the globs watched for data changes by default.
var DefaultWatchInclude = []string{
	"data/*.json",
	"data/archive/*.json",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source: ".",
		Paths: PathsConfig{
			Brief:      "./data/daily_brief.json",
			Jargon:     "./data/jargon_buster.json",
			Lab:        "./data/lab_report.json",
			Manifest:   "./data/manifest.json",
			ArchiveDir: "./data/archive",
		},
		Server: ServerConfig{Port: 8080},
		Fetch:  FetchConfig{Timeout: "10s"},
		Log:    LogConfig{Level: "info", Format: LogText},
		Site: SiteConfig{
			OutputDir:      "public",
			MaxConcurrency: 5,
		},
		Watch: WatchConfig{
			Include:  DefaultWatchInclude,
			Debounce: "500ms",
		},
	}
}
