package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// DefaultPath is where init writes the configuration.
const DefaultPath = ".dailybrief.yml"

// detectSource returns the first directory below the working directory that
// looks like a static host root, that is one containing data/daily_brief.json.
func detectSource() string {
	for _, candidate := range []string{".", "site", "docs", "public"} {
		if _, err := os.Stat(filepath.Join(candidate, "data", "daily_brief.json")); err == nil {
			return candidate
		}
	}
	return "."
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to dailybrief! Let's configure your viewer.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Where the JSON documents live.
	sourcePrompt := promptui.Prompt{
		Label:   "Brief source (http(s) base URL or directory)",
		Default: detectSource(),
		Validate: func(s string) error {
			if IsURL(s) {
				return nil
			}
			if info, err := os.Stat(s); err != nil || !info.IsDir() {
				return fmt.Errorf("not a URL or directory")
			}
			return nil
		},
	}
	source, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	cfg.Source = source

	// 2. Markdown bodies.
	mdPrompt := promptui.Select{
		Label: "Render story bodies as markdown?",
		Items: []string{"no: plain text, as published", "yes: goldmark with code highlighting"},
	}
	mdIdx, _, err := mdPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("markdown selection: %w", err)
	}
	cfg.Render.Markdown = mdIdx == 1

	// 3. Static output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for the static site",
		Default: cfg.Site.OutputDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	cfg.Site.OutputDir = outputDir

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Live server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be 1-65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 5. Log format.
	formatPrompt := promptui.Select{
		Label: "Log format",
		Items: []string{string(LogText), string(LogJSON)},
	}
	_, format, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}
	cfg.Log.Format = LogFormat(format)

	// 6. Extra watch patterns.
	watchPrompt := promptui.Prompt{
		Label:   "Extra watch globs (comma-separated, leave blank for defaults)",
		Default: "",
	}
	watchStr, err := watchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("watch patterns: %w", err)
	}
	if watchStr != "" {
		cfg.Watch.Include = append(append([]string{}, DefaultWatchInclude...), splitAndTrim(watchStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
