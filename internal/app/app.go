package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/zitaharry/ai-podcast-saas/internal/config"
	"github.com/zitaharry/ai-podcast-saas/internal/data/db"
	"github.com/zitaharry/ai-podcast-saas/internal/observability"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime/bus"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	DB       *gorm.DB
	Router   *gin.Engine
	SSEHub   *realtime.SSEHub
	Bus      bus.Bus
	Temporal temporalsdkclient.Client
	Worker   *temporalworker.Runner
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
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

	cfg, err := config.Load()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.Service.Name,
		Environment: cfg.Service.Environment,
		Version:     cfg.Service.Version,
	})

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

	sseHub := realtime.NewSSEHub(log)

	clientset, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	tcfg := temporalx.LoadConfig()
	serviceset, err := wireServices(theDB, log, cfg, tcfg, reposet, clientset, sseHub)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, sseHub)
	mw := wireMiddleware(log, cfg)
	router := wireRouter(log, metrics, handlerset, mw)

	return &App{
		Log:      log,
		Cfg:      cfg,
		DB:       theDB,
		Router:   router,
		SSEHub:   sseHub,
		Bus:      clientset.Bus,
		Temporal: clientset.Temporal,
		Worker:   serviceset.Worker,
		Metrics:  metrics,

		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background pieces: the Temporal worker, the Redis SSE
// forwarder, and the metrics collectors. The HTTP listener is Run.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Worker != nil {
		go func() {
			if err := a.Worker.Start(ctx); err != nil {
				a.Log.Error("Temporal worker exited", "error", err)
			}
		}()
	}
	if a.Bus != nil {
		if err := a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			a.Log.Warn("SSE bus forwarder failed to start; events stay node-local", "error", err)
		}
	}
	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.Server.MetricsAddr)
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	}
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Server.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.Temporal != nil {
		a.Temporal.Close()
	}
	if a.otelShutdown != nil {
		shutdownCtx, cancel := context.WithCancel(context.Background())
		_ = a.otelShutdown(shutdownCtx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
