package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/data/db"
	"github.com/yungbote/marmora-backend/internal/http"
	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/envutil"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService    *db.Service
	server       *http.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Base is the logger, config and database shared by every command.
type Base struct {
	Log       *logger.Logger
	Cfg       Config
	DB        *gorm.DB
	dbService *db.Service
}

func NewBase() (*Base, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	dbs, err := db.NewService(log, db.Config{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		Host:         cfg.PostgresHost,
		Port:         cfg.PostgresPort,
		User:         cfg.PostgresUser,
		Password:     cfg.PostgresPass,
		Name:         cfg.PostgresName,
		SSLMode:      cfg.PostgresSSL,
		SQLitePath:   cfg.SQLitePath,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &Base{Log: log, Cfg: cfg, DB: dbs.DB(), dbService: dbs}, nil
}

func (b *Base) Migrate() error {
	return b.dbService.AutoMigrateAll()
}

func (b *Base) Close() {
	if b == nil {
		return
	}
	if b.dbService != nil {
		_ = b.dbService.Close()
	}
	if b.Log != nil {
		b.Log.Sync()
	}
}

func New() (*App, error) {
	base, err := NewBase()
	if err != nil {
		return nil, err
	}
	log, cfg := base.Log, base.Cfg

	if err := base.Migrate(); err != nil {
		base.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	clients, err := wireClients(log, cfg)
	if err != nil {
		base.Close()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	reposet := wireRepos(base.DB, log)

	serviceset, err := wireServices(base.DB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		base.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, base.DB, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset)
	router, err := wireRouter(log, cfg, clients, metrics, handlerset, middleware)
	if err != nil {
		clients.Close()
		base.Close()
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           base.DB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		dbService:    base.dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the mail workers and the cache invalidation forwarder.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.Notifier != nil {
		a.Services.Notifier.Start(ctx)
	}
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.applyInvalidation); err != nil {
			a.Log.Warn("Invalidation forwarder not started", "error", err)
		}
	}
}

func (a *App) applyInvalidation(m redis.Invalidation) {
	switch m.Scope {
	case services.ScopeSettings:
		a.Services.Settings.Invalidate(context.Background())
	case services.ScopeContent:
		a.Services.Content.Invalidate(m.Key)
	default:
		a.Log.Debug("Ignoring invalidation", "scope", m.Scope)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if addr == "" {
		addr = a.Cfg.Addr
	}
	a.server = &http.Server{Engine: a.Router}
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.server.Run(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Notifier != nil {
		a.Services.Notifier.Wait()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
