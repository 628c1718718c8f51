package app

import (
	httpH "github.com/zitaharry/ai-podcast-saas/internal/http/handlers"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Project  *httpH.ProjectHandler
	Retry    *httpH.RetryHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, svcs Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Project:  httpH.NewProjectHandler(log, svcs.Project),
		Retry:    httpH.NewRetryHandler(log, svcs.Retry),
		Realtime: httpH.NewRealtimeHandler(log, hub),
	}
}
