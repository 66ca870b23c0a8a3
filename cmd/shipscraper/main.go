package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shipscraper/internal/api"
	"shipscraper/internal/config"
	"shipscraper/internal/crawler"
	"shipscraper/internal/fetch"
	"shipscraper/internal/monitoring"
	"shipscraper/internal/scrape"
	"shipscraper/internal/storage"
)

var (
	// flags
	overwrite   bool
	strictViews bool
	workers     int
)

var rootCmd = &cobra.Command{
	Use:   "shipscraper <destination>",
	Short: "Scrape the pledge-vehicle wiki listing and its ship images into two CSV datasets",
	Args:  cobra.ExactArgs(1),
	RunE:  run,

	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVar(&overwrite, "overwrite", false, "re-download images that already exist")
	rootCmd.Flags().BoolVar(&strictViews, "strict-views", false, "abort the run on the first unrecognized view token")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "number of crawl workers (overrides CRAWL_WORKERS)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration, flags win over the environment
	cfg, err := config.Load()
	if err != nil {
		logger.Error("could not load config", zap.Error(err))
		return err
	}
	if workers > 0 {
		cfg.CrawlWorkers = workers
	}
	if strictViews {
		cfg.StrictViews = true
	}

	destination := args[0]
	if err := os.MkdirAll(destination, 0o755); err != nil {
		logger.Error("could not create destination", zap.String("dir", destination), zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional stores
	var (
		cache      fetch.PageCache
		redisStore *storage.RedisStore
		pgSink     *storage.PostgresSink
	)
	if cfg.RedisAddr != "" {
		redisStore = storage.NewRedisStore(cfg.RedisAddr, time.Duration(cfg.CacheTTLHours)*time.Hour)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, running without page cache", zap.Error(err))
			redisStore = nil
		} else {
			cache = redisStore
		}
	}
	if cfg.PostgresURL != "" {
		pgSink, err = storage.NewPostgresSink(cfg.PostgresURL)
		if err != nil {
			logger.Error("failed to connect to postgres", zap.Error(err))
			return err
		}
		defer pgSink.Close()
	}

	metrics := monitoring.NewMetrics()
	client := fetch.NewClient(cfg, cache, metrics, logger)

	// Primary dataset first: a broken listing page aborts the run before
	// any crawling starts.
	ships, err := scrape.BuildShips(ctx, client, cfg)
	if err != nil {
		logger.Error("failed to build ships dataset", zap.Error(err))
		return err
	}
	logger.Info("ships table extracted", zap.Int("ships", ships.Len()))

	imagesDir := filepath.Join(destination, "images")
	coreCrawler, err := crawler.New(cfg, client, metrics, logger, imagesDir, overwrite)
	if err != nil {
		logger.Error("failed to initialize crawler", zap.Error(err))
		return err
	}

	// Optional status server for the duration of the crawl
	var server *api.Server
	if cfg.StatusPort != "" {
		server = api.NewServer(cfg, coreCrawler.Progress(), pgSink, redisStore, metrics, logger)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("status server stopped", zap.Error(err))
			}
		}()
		logger.Info("status server started", zap.String("port", cfg.StatusPort))
	}

	images, err := coreCrawler.Run(ctx, ships)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("status server forced to shutdown", zap.Error(err))
		}
	}

	if err != nil {
		logger.Error("crawl failed", zap.Error(err))
		return err
	}

	if err := storage.ExportCSV(destination, ships, images); err != nil {
		logger.Error("failed to export datasets", zap.Error(err))
		return err
	}
	if pgSink != nil {
		if err := pgSink.SaveDatasets(ctx, ships, images); err != nil {
			logger.Error("failed to save datasets to postgres", zap.Error(err))
			return err
		}
	}

	snap := coreCrawler.Progress().Snapshot()
	logger.Info("run complete",
		zap.String("destination", destination),
		zap.Int64("ships", snap.ShipsTotal),
		zap.Int64("ships_failed", snap.ShipsFailed),
		zap.Int64("images_downloaded", snap.ImagesDownloaded),
		zap.Int64("images_skipped", snap.ImagesSkipped),
	)
	return nil
}
