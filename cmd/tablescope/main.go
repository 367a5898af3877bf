package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tablescope/tablescope/internal/core/config"
	"github.com/tablescope/tablescope/internal/dashboard"
	"github.com/tablescope/tablescope/internal/sentiment"
	"github.com/tablescope/tablescope/internal/serpapi"
	"github.com/tablescope/tablescope/internal/server"
)

func main() {
	configPath := flag.String("config", "tablescope.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"addr", fmtAddr(cfg.Server.Host, cfg.Server.Port),
		"place_id", cfg.SerpAPI.PlaceID,
		"upstream_timeout", cfg.SerpAPI.EffectiveTimeout(),
	)

	// 2. Initialize Sentiment Lexicon
	lexicon, err := sentiment.LoadLexicon(cfg.Sentiment.LexiconDir)
	if err != nil {
		slog.Error("Failed to load sentiment lexicon", "error", err)
		os.Exit(1)
	}
	classifier := sentiment.NewClassifier(lexicon)

	// 3. Initialize Upstream Client
	client := serpapi.NewClient(cfg.SerpAPI)

	// 4. Initialize Dashboard Service (query API)
	dashboardSvc := dashboard.NewService(client, classifier, cfg.SerpAPI.MaxPageSize)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode)
	dashboardSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
