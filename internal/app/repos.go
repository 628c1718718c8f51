package app

import (
	"gorm.io/gorm"

	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/projects"
	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/subscriptions"
	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/transcripts"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

type Repos struct {
	Projects      projects.ProjectRepo
	Transcripts   transcripts.TranscriptRepo
	Subscriptions subscriptions.SubscriptionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Projects:      projects.NewProjectRepo(db, log),
		Transcripts:   transcripts.NewTranscriptRepo(db, log),
		Subscriptions: subscriptions.NewSubscriptionRepo(db, log),
	}
}
