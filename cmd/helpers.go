package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ziadkadry99/dailybrief/internal/config"
	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/logging"
	"github.com/ziadkadry99/dailybrief/internal/page"
	"github.com/ziadkadry99/dailybrief/internal/viewer"
	"github.com/ziadkadry99/dailybrief/internal/watch"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `dailybrief init` to create a config file", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the default.
func newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// buildSource opens the configured document source. metrics may be nil.
func buildSource(cfg *config.Config, metrics *fetch.Metrics) (fetch.Source, error) {
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, err
	}
	src, err := fetch.New(cfg.Source, timeout)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	return fetch.Instrumented(src, metrics), nil
}

// viewerOptions maps the config onto viewer options.
func viewerOptions(cfg *config.Config, logger *slog.Logger) viewer.Options {
	return viewer.Options{
		BriefPath:    cfg.Paths.Brief,
		JargonPath:   cfg.Paths.Jargon,
		LabPath:      cfg.Paths.Lab,
		ManifestPath: cfg.Paths.Manifest,
		ArchiveDir:   cfg.Paths.ArchiveDir,
		Markdown:     cfg.Render.Markdown,
		Logger:       logger,
	}
}

// loadTemplate reads the configured host page, or the embedded one when
// none is configured.
func loadTemplate(cfg *config.Config) ([]byte, error) {
	if cfg.Render.PageTemplate == "" {
		return page.DefaultHost(), nil
	}
	data, err := os.ReadFile(cfg.Render.PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("reading page template: %w", err)
	}
	return data, nil
}

// localRoot returns the source directory, or "" for a remote source.
func localRoot(cfg *config.Config) string {
	if config.IsURL(cfg.Source) {
		return ""
	}
	return cfg.Source
}

// newWatcher watches the local source directory with the configured globs.
func newWatcher(cfg *config.Config, logger *slog.Logger) (*watch.Watcher, error) {
	root := localRoot(cfg)
	if root == "" {
		return nil, fmt.Errorf("--watch needs a local source directory, got %s", cfg.Source)
	}
	debounce, err := cfg.WatchDebounce()
	if err != nil {
		return nil, err
	}
	return watch.New(root, watch.Options{
		Include:  cfg.Watch.Include,
		Debounce: debounce,
		Logger:   logger,
	})
}
