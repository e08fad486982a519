package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/passarei/backend/internal/db"
	apphttp "github.com/passarei/backend/internal/http"
	"github.com/passarei/backend/internal/jobs"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/platform/rediscache"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Cache    *rediscache.Cache

	advanceWorker *jobs.AdvanceWorker
	cleanupWorker *jobs.TokenCleanupWorker
	cancel        context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	cache := rediscache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if cache != nil {
		if err := cache.Ping(context.Background()); err != nil {
			log.Warn("Redis unreachable, continuing without cache", "error", err)
			cache = nil
		}
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, cache)
	handlerset := wireHandlers(log, serviceset)
	middlewareset := wireMiddleware(log, serviceset)
	server := wireRouter(log, handlerset, middlewareset)

	var advanceWorker *jobs.AdvanceWorker
	if cfg.AdvanceWorkerEnabled {
		advanceWorker = jobs.NewAdvanceWorker(log, serviceset.Progression, cfg.Progression.BatchCheckInterval)
	}
	cleanupWorker := jobs.NewTokenCleanupWorker(log, reposet.UserToken, cfg.TokenCleanupInterval)

	return &App{
		Log:           log,
		DB:            theDB,
		Server:        server,
		Cfg:           cfg,
		Repos:         reposet,
		Services:      serviceset,
		Cache:         cache,
		advanceWorker: advanceWorker,
		cleanupWorker: cleanupWorker,
	}, nil
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.advanceWorker != nil {
		a.advanceWorker.Start(ctx)
	}
	if a.cleanupWorker != nil {
		a.cleanupWorker.Start(ctx)
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
