// Command rpplanner-mcp serves the planner tools over MCP stdio, either on an
// in-process planner or against a running rpplanner server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/rpplanner/internal/config"
	"github.com/claude/rpplanner/internal/mcp"
	"github.com/claude/rpplanner/internal/planner"
	"github.com/claude/rpplanner/internal/session"
	"github.com/claude/rpplanner/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	remote := flag.String("remote", "", "base URL of an rpplanner server, e.g. http://localhost:8080")
	apiKey := flag.String("api-key", os.Getenv("RPPLANNER_AUTH_API_KEY"), "API key for the remote server")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var p mcp.Planner
	if *remote != "" {
		p = mcp.NewHTTPClient(*remote, *apiKey)
		log.Info("using remote planner", "url", *remote)
	} else {
		svc, err := localPlanner(ctx, *configPath, log)
		if err != nil {
			log.Error("failed to start planner", "error", err)
			os.Exit(1)
		}
		p = svc
	}

	s := mcp.New(p, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func localPlanner(ctx context.Context, configPath string, log *slog.Logger) (*planner.Service, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	cat, err := storage.LoadCatalog(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	sessions := session.NewManager(cat, stdioSessionOptions(cfg.Session), log)

	svc := planner.New(cat, sessions, nil, log)
	if err := svc.EnsureSession(ctx, planner.DefaultSession); err != nil {
		return nil, err
	}
	return svc, nil
}

// stdioSessionOptions keeps sessions for the life of the process: the stdio
// client is the only user, and its plan must not vanish between tool calls.
func stdioSessionOptions(c config.SessionConfig) session.Options {
	return session.Options{MaxSessions: c.MaxSessions, KeepIdle: true}
}
