package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dailybrief/internal/page"
	"github.com/ziadkadry99/dailybrief/internal/viewer"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the brief page once",
	Long:  `Fetches the brief, panels and manifest and writes the rendered page to stdout or a file.`,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("source", viewer.LatestValue, "brief to render: latest or an archive document path")
	renderCmd.Flags().StringP("out", "o", "", "write the page to this file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	src, err := buildSource(cfg, nil)
	if err != nil {
		return err
	}
	tmpl, err := loadTemplate(cfg)
	if err != nil {
		return err
	}
	doc, err := page.New(tmpl)
	if err != nil {
		return fmt.Errorf("parsing page template: %w", err)
	}
	if err := doc.Validate(); err != nil {
		logger.Warn("page template is incomplete", "error", err)
	}

	source, _ := cmd.Flags().GetString("source")
	opts := viewerOptions(cfg, logger)
	opts.Source = source
	v := viewer.New(doc, src, opts)
	if !v.Allowed(source) {
		return fmt.Errorf("unknown brief source %q: use latest or %s", source, v.ArchivePath("YYYY-MM-DD"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	v.Load(ctx)

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return doc.Render(cmd.OutOrStdout())
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := doc.Render(f); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info("page written", "path", out)
	return nil
}
