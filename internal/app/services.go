package app

import (
	"gorm.io/gorm"

	"github.com/zitaharry/ai-podcast-saas/internal/config"
	"github.com/zitaharry/ai-podcast-saas/internal/entitlement"
	"github.com/zitaharry/ai-podcast-saas/internal/generation"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime"
	"github.com/zitaharry/ai-podcast-saas/internal/services"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx/pipeline"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx/temporalworker"
)

type Services struct {
	Entitlements *entitlement.Resolver
	Project      *services.ProjectService
	Retry        *services.RetryService
	Worker       *temporalworker.Runner
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg config.Config,
	tcfg temporalx.Config,
	repos Repos,
	clients Clients,
	hub *realtime.SSEHub,
) (Services, error) {
	log.Info("Wiring services...")

	resolver := entitlement.NewResolver(repos.Subscriptions, log)
	registry := generation.NewRegistry(clients.OpenAI, log)

	var emit services.SSEEmitter
	if clients.Bus != nil {
		emit = &services.RedisEmitter{Bus: clients.Bus}
	} else {
		emit = &services.HubEmitter{Hub: hub}
	}
	notifier := services.NewPipelineNotifier(emit)

	projectSvc := services.NewProjectService(log, repos.Projects, repos.Transcripts, clients.Store, clients.Temporal, tcfg)
	retrySvc := services.NewRetryService(log, repos.Projects, resolver, clients.Temporal, tcfg)

	var worker *temporalworker.Runner
	if clients.Temporal != nil {
		acts := &pipeline.Activities{
			Log:          log,
			DB:           db,
			Projects:     repos.Projects,
			Transcripts:  repos.Transcripts,
			Entitlements: resolver,
			Tasks:        registry,
			Transcriber:  clients.Transcriber,
			Store:        clients.Store,
			Notify:       notifier,
		}
		w, err := temporalworker.NewRunner(log, clients.Temporal, acts)
		if err != nil {
			return Services{}, err
		}
		worker = w
	} else {
		log.Warn("TEMPORAL_ADDRESS not set; processing pipeline disabled")
	}

	return Services{
		Entitlements: resolver,
		Project:      projectSvc,
		Retry:        retrySvc,
		Worker:       worker,
	}, nil
}
