package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/godilite/survey-table/internal/config"
	handler "github.com/godilite/survey-table/internal/grpc"
	"github.com/godilite/survey-table/internal/repository"
	"github.com/godilite/survey-table/internal/service"
	"github.com/godilite/survey-table/internal/source"
	"github.com/godilite/survey-table/internal/table"
	"github.com/godilite/survey-table/internal/web"
	"github.com/godilite/survey-table/internal/widget"
	"github.com/godilite/survey-table/pkg/cache"
	dbbuilder "github.com/godilite/survey-table/pkg/database"
	grpcsrv "github.com/godilite/survey-table/pkg/grpc/server"
)

const (
	shutdownTimeout = 10 * time.Second
	stateKeyPrefix  = "survey-table:"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	loader     *source.Loader
	registry   *widget.Registry
	grpcServer *grpcsrv.Server
	httpServer *web.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("database directory: %w", err)
		}
	}
	dbPool, err := dbbuilder.Open(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithSchema(repository.Schema),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	sheets := source.NewSheetsClient(cfg.SpreadsheetID, cfg.GoogleAPIKey, logger,
		source.WithBaseURL(cfg.SheetsBaseURL),
		source.WithRange(cfg.SheetRange),
	)
	loaderOpts := []source.LoaderOption{
		source.WithSnapshots(repository.NewSnapshotRepository(dbPool)),
		source.WithLoadTimeout(cfg.LoadTimeout),
	}

	var storage table.Storage = table.NewMemoryStorage()
	var cacheClient *cache.Cache
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		loaderOpts = append(loaderOpts, source.WithCache(cacheClient, sheets.Key(), cfg.SourceCacheTTL))
		storage = cache.NewStateStorage(cacheClient, stateKeyPrefix)
	} else {
		logger.Info("REDIS_ADDR not set, view state kept in memory")
	}

	loader := source.NewLoader(sheets, logger, loaderOpts...)

	registry := widget.NewRegistry(logger)
	for _, id := range cfg.WidgetIDs {
		w := widget.New(ctx, id, loader, storage, logger, widget.WithPageSize(cfg.PageSize))
		if err := registry.Add(w); err != nil {
			logger.Warn("skipping widget", zap.String("widget", id), zap.Error(err))
		}
	}

	summaries := service.NewSummaryService(registry, logger)
	grpcHandlers := handler.NewTableHandlers(registry, summaries, logger, 0)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
	)
	if err != nil {
		if cacheClient != nil {
			cacheClient.Close()
		}
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterTableServiceServer(s, grpcHandlers)
	})

	httpServer := web.New(web.Config{Port: cfg.HTTPPort, AllowAll: cfg.CORSAllowAll}, registry, summaries, logger)

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		loader:     loader,
		registry:   registry,
		grpcServer: grpcServer,
		httpServer: httpServer,
	}, nil
}

// Run loads the widgets, starts both servers and blocks until ctx is done or
// a shutdown signal is received.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.registry.RefreshAll(ctx); err != nil {
		a.logger.Warn("initial load interrupted", zap.Error(err))
	}

	a.grpcServer.Start()
	if err := a.httpServer.Start(); err != nil {
		a.shutdown()
		return err
	}

	<-ctx.Done()
	a.logger.Info("application shutting down")
	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}
	a.loader.Close()

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}
	_ = a.logger.Sync()
}
