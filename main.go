// Package main provides the entry point for the article registry service.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/yourusername/article-registry/internal/config"
	"github.com/yourusername/article-registry/internal/di"
	"github.com/yourusername/article-registry/internal/export"
	"github.com/yourusername/article-registry/internal/logging"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	exportPath := flag.String("export", "", "Write the articles as CSV to this path and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	if *exportPath != "" {
		if err := runExport(cfg, logger, *exportPath); err != nil {
			log.Fatalf("Failed to export articles: %v", err)
		}
		return
	}

	application, cleanup, err := di.InitializeApp(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Serving articles",
		"addr", cfg.Server.Addr,
		"backend", cfg.Storage.Backend,
		"path", cfg.Storage.Path,
		"serialize_writes", cfg.Storage.SerializeWrites)

	if err := application.Run(ctx); err != nil {
		logger.Error("Application runtime error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func runExport(cfg *config.Config, logger *slog.Logger, path string) error {
	store, cleanup, err := di.InitializeStore(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	doc := store.Load(context.Background())
	if err := export.WriteCSVFile(path, doc); err != nil {
		return err
	}

	logger.Info("Exported articles", "path", path, "articles", len(doc.Articles))
	return nil
}
