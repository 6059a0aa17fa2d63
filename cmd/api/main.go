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

	"telemarketing_backend/internal/adapters/storage"
	"telemarketing_backend/internal/events"
	apphttp "telemarketing_backend/internal/http"
	"telemarketing_backend/internal/http/router"
	"telemarketing_backend/internal/imports"
	"telemarketing_backend/internal/imports/ingest"
	"telemarketing_backend/internal/imports/service"
	"telemarketing_backend/internal/imports/session"
	"telemarketing_backend/internal/leads"
	"telemarketing_backend/internal/scheduler"
	"telemarketing_backend/platform/config"
	"telemarketing_backend/platform/db"
	"telemarketing_backend/platform/logger"
	"telemarketing_backend/platform/redisx"
	"telemarketing_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	health := map[string]apphttp.HealthChecker{"database": db.NewPoolAdapter(pool)}

	sessions, closeSessions := initSessionStore(ctx, cfg, log, health)
	if closeSessions != nil {
		defer closeSessions()
	}

	expiry, closeScheduler := initArchiveScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	archive := initArchive(ctx, cfg, log)

	aliases, err := loadAliases(cfg)
	if err != nil {
		log.Error("failed to load import aliases", "error", err)
		panic("failed to load import aliases: " + err.Error())
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, eventBus, val, log)

	importsModule := imports.NewModule(imports.Deps{
		Pool:     pool,
		Sessions: sessions,
		Archive:  archive,
		Bucket:   cfg.GetMinioBucketLeadImports(),
		Expiry:   expiry,
		Aliases:  aliases,
		Bus:      eventBus,
		Val:      val,
		Config:   cfg,
		Log:      log,
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			importsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}

	// Let in-flight event handlers finish before the pool closes.
	eventBus.Wait()
	log.Info("server stopped")
}

// initSessionStore uses Redis when configured so previews survive restarts and
// are shared between API replicas. Without Redis previews live in process memory.
func initSessionStore(ctx context.Context, cfg config.RedisConfig, log *logger.Logger, health map[string]apphttp.HealthChecker) (session.Store, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; import previews are kept in memory")
		return session.NewMemoryStore(), nil
	}

	client, err := redisx.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	health["redis"] = redisx.NewHealth(client)
	log.Info("redis preview store initialized")

	return session.NewRedisStore(client), func() {
		_ = client.Close()
	}
}

func initArchiveScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ArchiveExpiryScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; archive expiry disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize archive expiry scheduler", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initArchive returns nil when MinIO is not configured; uploads are then not archived.
func initArchive(ctx context.Context, cfg *config.Config, log *logger.Logger) service.Archive {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; lead import uploads are not archived")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, cfg.GetMinioBucketLeadImports())
	log.Info("storage service initialized", "leadImportsBucket", cfg.GetMinioBucketLeadImports())
	return storageSvc
}

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, bucket string) {
	if err := withRetry(ctx, log, "ensure lead-imports bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func loadAliases(cfg config.ImportConfig) (ingest.AliasTable, error) {
	path := cfg.GetImportAliasesFile()
	if path == "" {
		return ingest.DefaultAliases(), nil
	}
	return ingest.LoadAliasFile(path)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
