package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/mapscrape/api"
	"github.com/use-agent/mapscrape/cache"
	"github.com/use-agent/mapscrape/scraper"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the scraping HTTP API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger(cfg.Log, os.Stdout)
		slog.Info("mapscrape starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"mode", cfg.Server.Mode,
			"maxPages", cfg.Browser.MaxPages,
		)

		// ── 1. Initialise scraper (launches browser) ────────────────
		sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			return fmt.Errorf("failed to initialise scraper: %w", err)
		}
		defer sc.Close()

		// ── 2. Cache + router ───────────────────────────────────────
		cc := cache.New(cfg.Cache.MaxEntries)
		router := api.NewRouter(sc, cfg, cc, time.Now())

		// ── 3. Start HTTP server ────────────────────────────────────
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		// ── 4. Graceful shutdown ────────────────────────────────────
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			slog.Info("shutdown signal received", "signal", sig.String())
		case err := <-errCh:
			return fmt.Errorf("HTTP server error: %w", err)
		}

		// Give in-flight requests 5 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}

		// sc.Close() runs via defer and kills Chrome.
		slog.Info("mapscrape stopped")
		return nil
	},
}
