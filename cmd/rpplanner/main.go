package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/rpplanner/internal/config"
	"github.com/claude/rpplanner/internal/mcp"
	"github.com/claude/rpplanner/internal/metrics"
	"github.com/claude/rpplanner/internal/planner"
	"github.com/claude/rpplanner/internal/server"
	"github.com/claude/rpplanner/internal/session"
	"github.com/claude/rpplanner/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	migrateOnly := flag.Bool("migrate-only", false, "run catalog migrations and exit")
	flag.Parse()

	// Load config
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	log, logCloser, err := cfg.Log.NewLogger(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	log.Info("RP Planner starting", "version", Version, "catalog", cfg.Catalog.Source)

	if *migrateOnly {
		if cfg.Catalog.Source != config.CatalogPostgres {
			log.Error("migrate-only requires catalog.source postgres")
			os.Exit(1)
		}
		if err := storage.RunMigrations(cfg.Database.DSN(), cfg.Database.Migrations); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Load catalog
	cat, err := storage.LoadCatalog(ctx, cfg, log)
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "muscles", len(cat.Muscles()), "exercises", len(cat.Exercises()))

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager("rpplanner", "planner", reg)

	// Sessions
	sessions := session.NewManager(cat, session.Options{
		IdleTimeout:   cfg.Session.IdleTimeout,
		SweepInterval: cfg.Session.SweepInterval,
		MaxSessions:   cfg.Session.MaxSessions,
	}, log)
	m.TrackSessions(sessions.Len)
	go sessions.Run(ctx)

	svc := planner.New(cat, sessions, m, log)

	// Create server
	srv := server.New(svc, server.Options{
		APIKey:   cfg.Auth.APIKey,
		Metrics:  m,
		Gatherer: reg,
	}, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcp.New(svc, Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped", "sessions_dropped", sessions.Len())
}
