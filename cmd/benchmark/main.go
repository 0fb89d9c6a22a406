package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/olgasafonova/stash-mcp-server/internal/base"
	"github.com/olgasafonova/stash-mcp-server/internal/catalog"
	"github.com/olgasafonova/stash-mcp-server/internal/config"
	"github.com/olgasafonova/stash-mcp-server/internal/connection"
)

// measure times a first call and a repeated call with the same arguments
func measure(label string, call func() (int, error)) {
	fmt.Printf("%s:\n", label)

	start := time.Now()
	n, err := call()
	if err != nil {
		fmt.Printf("   Error: %v\n\n", err)
		return
	}
	firstCall := time.Since(start)
	fmt.Printf("   First call (network):  %v (%d records)\n", firstCall, n)

	start = time.Now()
	_, _ = call()
	secondCall := time.Since(start)
	fmt.Printf("   Second call (cached):  %v\n", secondCall)
	if secondCall > 0 {
		fmt.Printf("   Speedup: %.0fx faster\n", float64(firstCall)/float64(secondCall))
	}
	fmt.Println()
}

func main() {
	envFile := ".env"
	if len(os.Args) > 1 {
		envFile = os.Args[1]
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()

	mgr := connection.NewManager(connection.Config{
		Endpoint: cfg.Endpoint,
		Attempts: cfg.ConnectRetries,
		Delay:    cfg.ConnectDelay,
	}, connection.StashDialer(cfg.Endpoint, cfg.APIKey, logger,
		base.WithLogger(logger),
		base.WithTimeout(cfg.Timeout),
	), logger)
	defer mgr.Disconnect()

	if mgr.Connect(ctx) == nil {
		fmt.Printf("Could not connect to Stash at %s\n", cfg.Endpoint)
		os.Exit(1)
	}
	service := catalog.NewService(mgr, logger, catalog.Options{})

	fmt.Println("Stash MCP Server - Cache Performance")
	fmt.Println("====================================")
	fmt.Println()

	measure("1. Performers (favorites only)", func() (int, error) {
		performers, err := service.Performers(ctx, catalog.PerformerQuery{FavoritesOnly: true})
		return len(performers), err
	})

	var sample string
	if performers, err := service.Performers(ctx, catalog.PerformerQuery{FavoritesOnly: true}); err == nil && len(performers) > 0 {
		sample = performers[0].Name
	}
	if sample != "" {
		measure(fmt.Sprintf("2. PerformerInfo (%s)", sample), func() (int, error) {
			p, err := service.PerformerInfo(ctx, sample)
			if p == nil {
				return 0, err
			}
			return 1, err
		})
	} else {
		fmt.Println("2. PerformerInfo: skipped, no favorite performers")
		fmt.Println()
	}

	measure("3. Scenes (organized only)", func() (int, error) {
		scenes, err := service.Scenes(ctx, catalog.SceneQuery{OrganizedOnly: true})
		return len(scenes), err
	})

	printStats(service.CacheStats())

	service.ClearCaches()
	measure("4. Performers after clearing the caches", func() (int, error) {
		performers, err := service.Performers(ctx, catalog.PerformerQuery{FavoritesOnly: true})
		return len(performers), err
	})
	printStats(service.CacheStats())
}

func printStats(stats catalog.CacheReport) {
	fmt.Println("=== Cache Statistics ===")
	fmt.Printf("   %-22s hits=%d misses=%d size=%d/%d\n", catalog.PerformerCache,
		stats.Performer.Hits, stats.Performer.Misses, stats.Performer.CurrSize, stats.Performer.MaxSize)
	fmt.Printf("   %-22s hits=%d misses=%d size=%d/%d\n", catalog.PerformersCache,
		stats.Performers.Hits, stats.Performers.Misses, stats.Performers.CurrSize, stats.Performers.MaxSize)
	fmt.Printf("   %-22s hits=%d misses=%d size=%d/%d\n", catalog.ScenesCache,
		stats.Scenes.Hits, stats.Scenes.Misses, stats.Scenes.CurrSize, stats.Scenes.MaxSize)
	fmt.Println()
}
