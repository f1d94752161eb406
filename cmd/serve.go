package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the brief page live",
	Long: `Starts an HTTP server that renders the brief page on each request, with
JSON APIs for the manifest and briefs, Prometheus metrics on /metrics, and
optional live reload when data files change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (defaults to server.port)")
	serveCmd.Flags().Bool("watch", false, "reload open pages when data files change")
	serveCmd.Flags().Bool("cors-all", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	metrics := fetch.NewMetrics()
	src, err := buildSource(cfg, metrics)
	if err != nil {
		return err
	}
	tmpl, err := loadTemplate(cfg)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Server.Port
	}
	watchData, _ := cmd.Flags().GetBool("watch")
	allowAll, _ := cmd.Flags().GetBool("cors-all")

	srv, err := server.New(server.Config{
		Port:     port,
		DataDir:  localRoot(cfg),
		Template: tmpl,
		Options:  viewerOptions(cfg, logger),
		Live:     watchData,
		AllowAll: allowAll,
	}, src, metrics, logger)
	if err != nil {
		return err
	}

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchData {
		w, err := newWatcher(cfg, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			_ = w.Run(ctx, srv.Hub().Reload)
		}()
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "dailybrief %s serving %s on http://localhost:%d\n", Version, cfg.Source, port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
