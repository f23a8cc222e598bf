package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"photoapp/annotation"
	"photoapp/catalog"
	"photoapp/config"
	"photoapp/db"
	"photoapp/handlers"
	"photoapp/log"
	"photoapp/models"
	"photoapp/storage"
	"photoapp/vision"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "photoapp",
	Short: "Photo catalog server with automatic image labels",
	Long: `Stores user images in an object store, keeps users and assets in a
relational database and labels images with a vision service on request.

Configuration is read from PHOTOAPP_* environment variables and, optionally,
from the file given with --config.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		if _, err = openDB(cfg, logger); err != nil {
			return err
		}
		logger.Info("migration done")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err = log.Initialize(cfg.LogLevel, cfg.DebugMode); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log.DefaultLogger(), nil
}

func openDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	conn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err = models.Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.Panic("Sentry initialization failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	conn, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	bucket := storage.BucketFrom(cfg)
	store, err := storage.New(bucket)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	visionSession, err := storage.NewSession(cfg.VisionRegion, cfg.S3Key, cfg.S3Secret)
	if err != nil {
		return fmt.Errorf("vision session: %w", err)
	}

	cat := catalog.New(conn, store, catalog.Options{
		PageSize:     cfg.PageSize,
		StoreTimeout: cfg.StoreTimeout,
	}, logger.Named("catalog"))
	pipeline := annotation.NewPipeline(conn, store, vision.NewRekognition(visionSession, cfg.VisionRegion), annotation.Options{
		Bucket:        store.Bucket(),
		MaxLabels:     cfg.VisionMaxLabels,
		MinConfidence: cfg.VisionMinConfidence,
		Timeout:       cfg.VisionTimeout,
		InlineImages:  !bucket.IsS3(),
		StoreTimeout:  cfg.StoreTimeout,
	}, logger.Named("annotation"))

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.New(conn, cat, pipeline, logger.Named("http")).Router(cfg.DebugMode)

	logger.Info("server starting",
		zap.String("address", cfg.BindAddress),
		zap.Strings("tls_domains", cfg.TLSDomains),
		zap.String("bucket", store.Bucket()))
	if len(cfg.TLSDomains) > 0 {
		err = autotls.Run(router, cfg.TLSDomains...)
	} else {
		err = router.Run(cfg.BindAddress)
	}
	logger.Error("server stopped", zap.Error(err))
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
