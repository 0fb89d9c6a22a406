package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/stash-mcp-server/internal/catalog"
	"github.com/olgasafonova/stash-mcp-server/internal/config"
	"github.com/olgasafonova/stash-mcp-server/internal/transport"
	"github.com/olgasafonova/stash-mcp-server/prompts"
	"github.com/olgasafonova/stash-mcp-server/resources"
	"github.com/olgasafonova/stash-mcp-server/tools"
)

// toolCategories orders the tool listing in the server instructions
var toolCategories = []string{"performers", "scenes", "analysis", "system"}

// instructions describes the server to clients, listing the registered tools by category
func instructions() string {
	var b strings.Builder
	b.WriteString("Stash MCP Server provides read-only access to a Stash media organizer.\n\nAvailable tools:\n")
	for _, category := range toolCategories {
		fmt.Fprintf(&b, "%s:\n", category)
		for _, spec := range tools.ToolsByCategory(category) {
			fmt.Fprintf(&b, "- %s: %s\n", spec.Name, spec.Title)
		}
	}
	b.WriteString(`
Resources live under stash:// (performer/all, performer/{name}, performer/stats,
studio/all, studio/{name}, studio/stats, tag/all, tag/{name}, tag/stats, ...).

Prompts: analyze-performer, library-insights, recommend-scenes, discover-performers.

Configure via environment variables:
- STASH_ENDPOINT: Stash server URL (default http://localhost:9999)
- STASH_API_KEY: Stash API key (required)`)
	return b.String()
}

// newServer builds the MCP server with every tool, resource and prompt
func newServer(cfg *config.Config, conn tools.Connection, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions(),
	})

	service := catalog.NewService(conn, logger, catalog.Options{
		PerformerCacheSize:  cfg.PerformerCacheSize,
		PerformersCacheSize: cfg.PerformersCacheSize,
		ScenesCacheSize:     cfg.ScenesCacheSize,
	})
	tools.NewHandlerRegistry(service, conn, tools.Settings{
		MaxBatchPerformers: cfg.MaxBatchPerformers,
		Ratings:            cfg.Ratings,
	}, logger).RegisterAll(server)
	resources.NewHandler(conn, cfg.FavoritesOnly, logger).Register(server)
	prompts.Register(server, logger)

	return server
}

// serveHTTP serves the streamable HTTP transport until ctx is done
func serveHTTP(ctx context.Context, server *mcp.Server, cfg *config.Config, connected func() bool, logger *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	router := transport.NewRouter(handler, transport.Options{
		RateLimit: cfg.HTTPRateLimit,
		RateBurst: cfg.HTTPRateBurst,
		Connected: connected,
	}, logger)
	defer router.Close()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP transport listening",
			"addr", cfg.HTTPAddr,
			"mcp", transport.MCPPath,
			"metrics", transport.MetricsPath,
			"health", transport.HealthPath,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down HTTP transport")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
