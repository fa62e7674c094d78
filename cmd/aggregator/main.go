package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nairobell/aggregator/internal/aggregate"
	"nairobell/aggregator/internal/config"
	"nairobell/aggregator/internal/database"
	"nairobell/aggregator/internal/export"
	"nairobell/aggregator/internal/fetch"
	"nairobell/aggregator/internal/server"
	"nairobell/aggregator/internal/sources"
	"nairobell/aggregator/internal/storage"
	"nairobell/aggregator/internal/trends"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	cfg := config.DefaultConfig()

	aggregateCmd := flag.NewFlagSet("aggregate", flag.ExitOnError)
	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)

	var aggLogLevel, serveLogLevel string
	var intervalMinutes int
	var resetDB bool

	for _, cmd := range []*flag.FlagSet{aggregateCmd, serveCmd} {
		cmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("NAIROBELL_DB_PATH", config.DefaultDBPath),
			"Path to the SQLite cache database (env: NAIROBELL_DB_PATH)")
		cmd.StringVar(&cfg.SourcesPath, "sources", config.GetEnvString("NAIROBELL_SOURCES_PATH", ""),
			"Path to a YAML source registry, empty for the built-in one (env: NAIROBELL_SOURCES_PATH)")
		cmd.StringVar(&cfg.ExportPath, "export", config.GetEnvString("NAIROBELL_EXPORT_PATH", config.DefaultExportPath),
			"Path for the JSON snapshot export, empty to disable (env: NAIROBELL_EXPORT_PATH)")
	}

	aggregateCmd.BoolVar(&resetDB, "reset", false,
		"Delete the cache database before running")
	aggregateCmd.StringVar(&aggLogLevel, "log-level", config.GetEnvString("NAIROBELL_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NAIROBELL_LOG_LEVEL)")

	serveCmd.StringVar(&serveLogLevel, "log-level", config.GetEnvString("NAIROBELL_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NAIROBELL_LOG_LEVEL)")
	serveCmd.StringVar(&cfg.ServerHost, "host", config.GetEnvString("NAIROBELL_HOST", config.DefaultServerHost),
		"Host to bind the server to (env: NAIROBELL_HOST)")
	serveCmd.IntVar(&cfg.ServerPort, "port", config.GetEnvInt("NAIROBELL_PORT", config.DefaultServerPort),
		"Port to listen on (env: NAIROBELL_PORT)")
	serveCmd.IntVar(&intervalMinutes, "interval", config.GetEnvInt("NAIROBELL_INTERVAL", config.DefaultIntervalMinutes),
		"Interval in minutes between aggregation runs (env: NAIROBELL_INTERVAL)")
	serveCmd.IntVar(&cfg.RetentionDays, "retention", config.GetEnvInt("NAIROBELL_RETENTION_DAYS", config.DefaultRetentionDays),
		"Number of days to retain cached articles (env: NAIROBELL_RETENTION_DAYS)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "aggregate":
		aggregateCmd.Parse(os.Args[2:])
		applyLogLevel(cfg, aggLogLevel)

		if resetDB {
			if err := database.DeleteDB(cfg.DBPath); err != nil {
				log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to reset database")
				os.Exit(1)
			}
			log.Info().Str("path", cfg.DBPath).Msg("Database reset")
		}

		if err := runAggregate(cfg); err != nil {
			log.Error().Err(err).Msg("Aggregation failed")
			os.Exit(1)
		}

	case "serve":
		serveCmd.Parse(os.Args[2:])
		applyLogLevel(cfg, serveLogLevel)
		cfg.Interval = time.Duration(intervalMinutes) * time.Minute

		if err := runServe(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: aggregator [command] [options]")
	fmt.Println("Commands: aggregate, serve")
	fmt.Println("\nFor command-specific options, use: aggregator [command] -h")
}

func applyLogLevel(cfg *config.Config, levelStr string) {
	if level, err := zerolog.ParseLevel(levelStr); err == nil {
		cfg.LogLevel = level
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
}

// newService wires the fetcher, store and registry into an aggregation
// service. The returned close function releases the database.
func newService(cfg *config.Config) (*aggregate.Service, storage.ArticleStore, func(), error) {
	registry, err := sources.Load(cfg.SourcesPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load source registry: %w", err)
	}

	db, err := database.NewDB(database.NewConfig(cfg.DBPath))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := storage.New(db)
	fetcher := fetch.New(fetch.Config{})
	svc := aggregate.NewService(fetcher, store, registry, aggregate.Config{
		MaxConcurrent:  cfg.MaxConcurrent,
		FallbackMaxAge: cfg.FallbackMaxAge,
	})

	return svc, store, func() { db.Close() }, nil
}

// runAggregate executes a single aggregation run, exports the snapshot
// and prints a short trending summary.
func runAggregate(cfg *config.Config) error {
	svc, _, closeDB, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	articles, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	if len(articles) == 0 {
		log.Warn().Msg("No fresh articles, trying cached batch")
		articles = svc.Cached(ctx)
	}
	if len(articles) == 0 {
		log.Error().Msg("No articles available")
		return nil
	}

	if cfg.ExportPath != "" {
		if err := export.WriteSnapshot(cfg.ExportPath, articles); err != nil {
			return fmt.Errorf("failed to export snapshot: %w", err)
		}
	}

	topics := trends.ExtractTopics(articles, trends.DefaultTopN)
	log.Info().Msg("Top trending topics:")
	for i, topic := range topics {
		if i >= 5 {
			break
		}
		log.Info().Str("topic", topic.Word).Int("mentions", topic.Count).Msg("Trending")
	}

	fmt.Printf("Fetched %d articles\n", len(articles))
	return nil
}

// runServe starts the API server with its periodic refresh loop, plus a
// daily retention purge on the article cache.
func runServe(cfg *config.Config) error {
	svc, store, closeDB, err := newService(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	purgeCtx, cancelPurge := context.WithCancel(context.Background())
	defer cancelPurge()
	go purgeLoop(purgeCtx, store, cfg.RetentionDays)

	srv := server.New(svc, server.Config{
		ListenAddr:      cfg.ListenAddr(),
		APIKey:          cfg.APIKey,
		RefreshInterval: cfg.Interval,
		ExportPath:      cfg.ExportPath,
	})

	return srv.Run(log.Logger)
}

// purgeLoop drops cache rows past the retention window once a day.
func purgeLoop(ctx context.Context, store storage.ArticleStore, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purgeCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if _, err := store.PurgeOlderThan(purgeCtx, retention); err != nil {
				log.Error().Err(err).Msg("Failed to purge old articles")
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
