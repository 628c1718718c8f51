package app

import (
	"github.com/zitaharry/ai-podcast-saas/internal/config"
	httpMW "github.com/zitaharry/ai-podcast-saas/internal/http/middleware"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg config.Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.Auth.JWTSecret),
	}
}
