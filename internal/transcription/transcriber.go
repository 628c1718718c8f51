package transcription

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/envutil"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/transcription/assemblyai"
	"github.com/zitaharry/ai-podcast-saas/internal/transcription/gcpspeech"
)

// Transcriber is the external transcription provider boundary. Implementations
// always request full feature extraction (word timing, speaker diarization,
// topic chapters where the provider supports them) regardless of plan tier:
// tier only gates UI visibility of speaker data, never its capture.
type Transcriber interface {
	Transcribe(ctx context.Context, projectID uuid.UUID, audioURL string) (*domain.Transcript, error)
}

// NewFromEnv selects the provider via TRANSCRIBE_PROVIDER. AssemblyAI is the
// default; GCP Speech is the fallback provider (no topic chapters, so the
// chapter-anchored tasks will precondition-fail on its transcripts).
func NewFromEnv(log *logger.Logger) (Transcriber, error) {
	provider := envutil.Str("TRANSCRIBE_PROVIDER", "assemblyai")
	switch provider {
	case "assemblyai":
		return assemblyai.NewClient(log)
	case "gcp_speech":
		return gcpspeech.NewClient(log)
	default:
		return nil, fmt.Errorf("unknown TRANSCRIBE_PROVIDER %q", provider)
	}
}
