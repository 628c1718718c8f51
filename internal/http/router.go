package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/zitaharry/ai-podcast-saas/internal/http/handlers"
	"github.com/zitaharry/ai-podcast-saas/internal/http/middleware"
	"github.com/zitaharry/ai-podcast-saas/internal/observability"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	Metrics         *observability.Metrics
	AuthMiddleware  *middleware.AuthMiddleware
	HealthHandler   *handlers.HealthHandler
	ProjectHandler  *handlers.ProjectHandler
	RetryHandler    *handlers.RetryHandler
	RealtimeHandler *handlers.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware("podcastai"))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.Metrics(cfg.Metrics))
	router.Use(middleware.RequestLogger(cfg.Log))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	{
		api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)

		api.POST("/projects", cfg.ProjectHandler.Create)
		api.GET("/projects/:id", cfg.ProjectHandler.Get)
		api.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
		api.GET("/projects/:id/transcript", cfg.ProjectHandler.GetTranscript)
		api.POST("/projects/:id/process", cfg.ProjectHandler.Process)

		api.POST("/projects/:id/tasks/:task/retry", cfg.RetryHandler.RetryTask)
		api.POST("/projects/:id/generate-missing", cfg.RetryHandler.GenerateMissing)
	}

	return router
}
