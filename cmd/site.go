package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/dailybrief/internal/progress"
	"github.com/ziadkadry99/dailybrief/internal/site"
	"github.com/ziadkadry99/dailybrief/internal/watch"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Generate the static brief website",
	Long: `Pre-renders index.html for the latest brief and one page per archived day,
with a story search index. The day selector links between the pages, so the
site works without JavaScript-driven fetching.`,
	RunE: runSite,
}

func init() {
	siteCmd.Flags().String("output", "", "override output directory (defaults to site.output_dir)")
	siteCmd.Flags().Bool("serve", false, "start a local HTTP server after generating")
	siteCmd.Flags().Int("port", 0, "port for the local server (defaults to server.port)")
	siteCmd.Flags().Bool("open", false, "open browser automatically when serving")
	siteCmd.Flags().Bool("watch", false, "regenerate when data files change")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
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

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.Site.OutputDir
	}

	generator := site.NewSiteGenerator(src, outputDir, viewerOptions(cfg, logger))
	generator.Template = tmpl
	generator.MaxConcurrency = cfg.Site.MaxConcurrency
	generator.Reporter = progress.NewReporter(os.Stderr)
	generator.Logger = logger

	serve, _ := cmd.Flags().GetBool("serve")
	watchData, _ := cmd.Flags().GetBool("watch")

	var w *watch.Watcher
	if watchData {
		w, err = newWatcher(cfg, logger)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pageCount, err := generator.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generating site: %w", err)
	}
	fmt.Printf("Static site generated: %s (%d pages)\n", outputDir, pageCount)

	if !serve && !watchData {
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)

	if watchData {
		generator.Reporter = progress.Nop{}

		eg.Go(func() error {
			err := w.Run(ctx, func(changed []string) {
				logger.Info("data changed, regenerating", "files", changed)
				if _, err := generator.Generate(ctx); err != nil {
					logger.Error("regenerating site", "error", err)
				}
			})
			return ignoreCanceled(err)
		})
	}

	if serve {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}
		openBrowser, _ := cmd.Flags().GetBool("open")
		eg.Go(func() error {
			if err := site.Serve(ctx, outputDir, port, openBrowser, logger); err != nil {
				return fmt.Errorf("serving site: %w", err)
			}
			return nil
		})
	}

	return eg.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
