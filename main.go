// Stash MCP Server - A Model Context Protocol server for the Stash media organizer
// Provides tools, resources and prompts for exploring performers, scenes, studios and tags
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/olgasafonova/stash-mcp-server/internal/base"
	"github.com/olgasafonova/stash-mcp-server/internal/config"
	"github.com/olgasafonova/stash-mcp-server/internal/connection"
	"github.com/olgasafonova/stash-mcp-server/tracing"
)

const (
	ServerName    = "stash-mcp-server"
	ServerVersion = "1.0.0"
)

// flags override the matching configuration values when set
type flags struct {
	envFile   string
	transport string
	addr      string
	logLevel  string
}

func (f flags) apply(cfg *config.Config) {
	if f.transport != "" {
		cfg.Transport = f.transport
	}
	if f.addr != "" {
		cfg.HTTPAddr = f.addr
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          ServerName,
		Short:        "MCP server for the Stash media organizer",
		Version:      ServerVersion,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "dotenv file to read (ignored when missing)")
	cmd.Flags().StringVar(&f.transport, "transport", "", "transport: stdio or http (default from MCP_TRANSPORT)")
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address for the http transport (default from MCP_HTTP_ADDR)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error (default from LOG_LEVEL)")
	return cmd
}

func run(ctx context.Context, f flags) error {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logging goes to stderr; stdout carries the stdio MCP transport
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tcfg := tracing.DefaultConfig()
	tcfg.ServiceName = ServerName
	tcfg.ServiceVersion = ServerVersion
	tcfg.Enabled = cfg.Tracing.Enabled
	tcfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tcfg.Environment = cfg.Tracing.Environment
	tcfg.SampleRate = cfg.Tracing.SampleRate
	shutdownTracing, err := tracing.Setup(ctx, tcfg)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	mgr := connection.NewManager(connection.Config{
		Endpoint: cfg.Endpoint,
		Attempts: cfg.ConnectRetries,
		Delay:    cfg.ConnectDelay,
	}, connection.StashDialer(cfg.Endpoint, cfg.APIKey, logger,
		base.WithLogger(logger),
		base.WithTimeout(cfg.Timeout),
		base.WithMaxConcurrent(cfg.MaxConcurrent),
		base.WithRateLimit(cfg.RateLimit, cfg.MaxConcurrent),
	), logger)
	defer mgr.Disconnect()

	// A failed first connect is not fatal; tools retry on first use
	if mgr.Connect(ctx) == nil {
		logger.Warn("Initial connection to Stash failed, continuing without a connection",
			"endpoint", cfg.Endpoint)
	}

	server := newServer(cfg, mgr, logger)
	logger.Info("Starting Stash MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"transport", cfg.Transport,
		"endpoint", cfg.Endpoint,
	)

	if cfg.Transport == config.TransportHTTP {
		return serveHTTP(ctx, server, cfg, mgr.IsConnected, logger)
	}
	err = server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
