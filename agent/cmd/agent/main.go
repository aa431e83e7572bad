package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/config"
	"github.com/nodepulse/nodepulse/agent/internal/health"
	"github.com/nodepulse/nodepulse/agent/internal/probe"
	"github.com/nodepulse/nodepulse/agent/internal/report"
	"github.com/nodepulse/nodepulse/agent/internal/security"
	"github.com/nodepulse/nodepulse/agent/internal/shipper"
	"github.com/nodepulse/nodepulse/pkg/types"
)

// certCheckEvery is how many probe cycles pass between TLS certificate
// checks. Cert expiry moves on a scale of days, not probe intervals.
const certCheckEvery = 60

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("nodepulse-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"server_endpoint", cfg.Agent.ServerEndpoint,
		"nodes", len(cfg.Agent.Nodes),
		"probe_interval", cfg.Agent.ProbeInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := probe.Options{
		RequestDelay:     cfg.Agent.RequestDelay,
		RateLimitSamples: cfg.Agent.RateLimitSamples,
		LatencySamples:   cfg.Agent.LatencySamples,
		CadenceBlocks:    cfg.Agent.CadenceBlocks,
	}

	// Build prober + engine pairs from the initial config.
	// Hot-reload updates logging only; rebuilding probers on reload is T-future.
	type pipeline struct {
		node   config.Node
		prober *probe.Prober
		engine *health.Engine
		certs  []types.CertStatus
		cycles int
	}
	var pipelines []*pipeline
	for _, node := range cfg.Agent.Nodes {
		p, err := probe.New(node, opts)
		if err != nil {
			slog.Error("skipping node — could not build prober", "node", node.ID, "err", err)
			continue
		}
		pipelines = append(pipelines, &pipeline{
			node:   node,
			prober: p,
			engine: health.NewEngine(node.ExpectedBlockTime),
		})
		slog.Info("registered node", "id", node.ID, "network", node.Network, "endpoint", node.ExecutionEndpoint)
	}

	if len(pipelines) == 0 {
		slog.Warn("no nodes configured — agent will idle")
	}

	// Watch config file for hot-reload (logs only in this phase).
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded", "nodes", len(updated.Agent.Nodes))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Start the HTTP shipper — runs until ctx is cancelled.
	ship := shipper.New(cfg.Agent)
	go ship.Run(ctx)

	var rep *report.Writer
	if cfg.Agent.Report.Path != "" {
		rep = report.NewWriter(cfg.Agent.Report.Path)
		slog.Info("flat-file report enabled", "path", cfg.Agent.Report.Path)
	}

	// Probe loop: poll every ProbeInterval, score each node, ship.
	go func() {
		ticker := time.NewTicker(cfg.Agent.ProbeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				for _, p := range pipelines {
					if p.cycles%certCheckEvery == 0 {
						p.certs = security.CheckNode(ctx, p.node)
					}
					p.cycles++

					cycle := p.prober.Probe(ctx)
					res := p.engine.Process(cycle, t)
					ship.Ship(shipper.ToSnapshot(res, p.node.Network, p.certs))
					if rep != nil {
						if err := rep.Append(res); err != nil {
							slog.Warn("report append failed", "err", err)
						}
					}
					slog.Debug("shipped snapshot",
						"node", p.node.ID,
						"tier", res.Report.Tier,
						"score", res.Report.Score,
					)
				}
			}
		}
	}()

	<-ctx.Done()
	slog.Info("nodepulse-agent shutting down")
}
