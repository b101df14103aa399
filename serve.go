package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/mailer"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/ratelimit"
	"github.com/Zachkp/portfolio/internal/storage"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.App.Version = versionOr(cfg.App.Version)

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cat, err := loadCatalog(cfg.App.CatalogPath)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		return err
	}

	met := metrics.New()
	svc := contact.NewService(m, cfg.App.OwnerName,
		contact.WithArchive(db),
		contact.WithObserver(met),
		contact.WithLogger(logger),
	)

	uploader, closeStorage, err := newUploader(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	limiter, closeLimiter, err := newLimiter(ctx, cfg.Limits, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	hasher, err := newHasher(cfg.DB.VisitorSalt)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Options{
		Config:   cfg,
		Logger:   logger,
		Catalog:  cat,
		Contact:  svc,
		Limiter:  limiter,
		Store:    db,
		Hasher:   hasher,
		Uploader: uploader,
		Metrics:  met,
	})
	if err != nil {
		return err
	}

	scheduler, err := startCleanup(cfg.DB, db, logger)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", httpServer.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func versionOr(configured string) string {
	if version != "dev" {
		return version
	}
	return configured
}

func newHasher(salt string) (*store.Hasher, error) {
	if salt != "" {
		return store.NewHasher(salt), nil
	}
	return store.NewRandomHasher()
}

// newUploader picks the blob and document stores for project files. The local
// backend keeps file metadata in the site database.
func newUploader(ctx context.Context, cfg *config.Config, db *store.DB, logger *zap.Logger) (*storage.Uploader, func(), error) {
	switch cfg.Storage.Backend {
	case "firebase":
		fb, err := storage.NewFirebase(ctx, storage.FirebaseConfig{
			ProjectID:       cfg.Storage.ProjectID,
			Bucket:          cfg.Storage.Bucket,
			CredentialsPath: cfg.Storage.CredentialsPath,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("file storage", zap.String("backend", "firebase"), zap.String("bucket", cfg.Storage.Bucket))
		closeFn := func() {
			if err := fb.Close(); err != nil {
				logger.Warn("close firebase", zap.Error(err))
			}
		}
		return storage.NewUploader(fb.Blobs, fb.Documents, storage.Options{}, logger), closeFn, nil
	default:
		logger.Info("file storage", zap.String("backend", "local"), zap.String("dir", cfg.Server.UploadsDir))
		blobs := storage.NewLocalStore(cfg.Server.UploadsDir, "/uploads")
		return storage.NewUploader(blobs, db.Documents(), storage.Options{}, logger), func() {}, nil
	}
}

// newLimiter shares contact rate limits through Redis when REDIS_URL is set.
func newLimiter(ctx context.Context, cfg config.LimitConfig, logger *zap.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemory(cfg.ContactPerMin, cfg.ContactBurst), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// Redis limiting fails open, so an unreachable server is not fatal.
		logger.Warn("redis not reachable at startup", zap.Error(err))
	}

	logger.Info("contact rate limit", zap.String("backend", "redis"), zap.String("addr", opts.Addr))
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
	return ratelimit.NewRedis(client, cfg.ContactPerMin, cfg.ContactBurst), closeFn, nil
}

// startCleanup deletes visitor rows older than the retention window on the
// configured schedule. An empty schedule disables it.
func startCleanup(cfg config.DBConfig, db *store.DB, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if cfg.CleanupSchedule == "" {
		return c, nil
	}

	_, err := c.AddFunc(cfg.CleanupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := db.CleanupVisitors(ctx, cfg.Retention)
		if err != nil {
			logger.Error("scheduled visitor cleanup", zap.Error(err))
			return
		}
		logger.Info("scheduled visitor cleanup", zap.Int64("deleted", n))
	})
	if err != nil {
		return nil, fmt.Errorf("CLEANUP_SCHEDULE %q: %w", cfg.CleanupSchedule, err)
	}

	c.Start()
	logger.Info("visitor cleanup scheduled", zap.String("schedule", cfg.CleanupSchedule), zap.Duration("retention", cfg.Retention))
	return c, nil
}
