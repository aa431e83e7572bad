package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nodepulse/nodepulse/server/internal/alerts"
	"github.com/nodepulse/nodepulse/server/internal/api"
	"github.com/nodepulse/nodepulse/server/internal/auth"
	"github.com/nodepulse/nodepulse/server/internal/config"
	"github.com/nodepulse/nodepulse/server/internal/metrics"
	"github.com/nodepulse/nodepulse/server/internal/receiver"
	"github.com/nodepulse/nodepulse/server/internal/store"
	"github.com/nodepulse/nodepulse/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve the dashboard static files from this directory (e.g. ui/dist); leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("nodepulse-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"snapshot_ttl", cfg.Server.Snapshot.TTL,
		"alert_rules", len(cfg.Server.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Snapshot store with background TTL eviction.
	st := store.New(cfg.Server.Snapshot.TTL)
	go st.Run(ctx)

	// Alerts engine — evaluates rules on every incoming snapshot.
	alertEngine := alerts.New(cfg.Server.Alerts)

	// Server metrics, sampled from the store and alert engine on scrape.
	m := metrics.New(st.Count, alertEngine.FiringCount)

	// WebSocket hub — broadcasts snapshots to UI clients every 5 seconds.
	hub := ws.New(st, 5*time.Second)
	go hub.Run(ctx)

	// API key middleware guards the agent-facing ingest endpoint and the REST
	// API. /metrics and /ws/stream stay open for scrapers and the dashboard.
	guard := auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)

	apiMux := http.NewServeMux()
	apiMux.Handle("/api/v1/ingest", receiver.New(st, alertEngine, m))
	apiMux.Handle("/api/", api.New(st, alertEngine))

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", guard(apiMux))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", m.Handler())

	// Optional: serve the pre-built dashboard from a local directory.
	// Usage:  ./bin/nodepulse-server -config config/server.yaml -ui-dir ui/dist
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// SPA fallback: if the requested file doesn't exist, serve index.html.
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("nodepulse-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
