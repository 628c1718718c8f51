package app

import (
	"context"
	"os"
	"strings"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/zitaharry/ai-podcast-saas/internal/platform/gcp"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/openai"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime/bus"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx"
	"github.com/zitaharry/ai-podcast-saas/internal/transcription"
)

type Clients struct {
	OpenAI      openai.Client
	Transcriber transcription.Transcriber
	Store       gcp.AudioStore
	Temporal    temporalsdkclient.Client
	Bus         bus.Bus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	transcriber, err := transcription.NewFromEnv(log)
	if err != nil {
		return Clients{}, err
	}

	// The bucket is optional: projects can reference externally hosted audio.
	var store gcp.AudioStore
	if strings.TrimSpace(os.Getenv("AUDIO_GCS_BUCKET_NAME")) != "" {
		store, err = gcp.NewAudioStore(log)
		if err != nil {
			return Clients{}, err
		}
	} else {
		log.Warn("AUDIO_GCS_BUCKET_NAME not set; uploads disabled, audio refs must be URLs")
	}

	tcfg := temporalx.LoadConfig()
	if tcfg.Address != "" {
		if err := temporalx.EnsureNamespace(context.Background(), tcfg, log); err != nil {
			return Clients{}, err
		}
	}
	tc, err := temporalx.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	var sseBus bus.Bus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		sseBus, err = bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, err
		}
	} else {
		log.Warn("REDIS_ADDR not set; SSE events stay node-local")
	}

	return Clients{
		OpenAI:      ai,
		Transcriber: transcriber,
		Store:       store,
		Temporal:    tc,
		Bus:         sseBus,
	}, nil
}
