package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/zitaharry/ai-podcast-saas/internal/http"
	"github.com/zitaharry/ai-podcast-saas/internal/observability"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

func wireRouter(log *logger.Logger, metrics *observability.Metrics, handlers Handlers, mw Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		AuthMiddleware:  mw.Auth,
		HealthHandler:   handlers.Health,
		ProjectHandler:  handlers.Project,
		RetryHandler:    handlers.Retry,
		RealtimeHandler: handlers.Realtime,
	})
}
