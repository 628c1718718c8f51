package assemblyai

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
)

// Normalize converts the provider's settled response into the canonical
// transcript record. Chapters with neither headline nor summary are dropped
// so the chapter precondition checks see only usable entries.
func Normalize(projectID uuid.UUID, wire *wireTranscript) *domain.Transcript {
	t := &domain.Transcript{
		ID:                uuid.New(),
		ProjectID:         projectID,
		Text:              strings.TrimSpace(wire.Text),
		Language:          wire.LanguageCode,
		Provider:          "assemblyai",
		AudioDurationSecs: wire.AudioDuration,
		CreatedAt:         time.Now().UTC(),
	}

	segments := make([]domain.Segment, 0, len(wire.Words))
	for _, w := range wire.Words {
		word := strings.TrimSpace(w.Text)
		if word == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:       word,
			Word:       word,
			StartMS:    w.Start,
			EndMS:      w.End,
			Confidence: w.Confidence,
		})
	}

	utterances := make([]domain.Utterance, 0, len(wire.Utterances))
	for _, u := range wire.Utterances {
		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}
		utterances = append(utterances, domain.Utterance{
			Speaker:    speakerLabel(u.Speaker),
			Text:       text,
			StartMS:    u.Start,
			EndMS:      u.End,
			Confidence: u.Confidence,
		})
	}

	chapters := make([]domain.Chapter, 0, len(wire.Chapters))
	for _, ch := range wire.Chapters {
		headline := strings.TrimSpace(ch.Headline)
		summary := strings.TrimSpace(ch.Summary)
		if headline == "" && summary == "" {
			continue
		}
		chapters = append(chapters, domain.Chapter{
			Headline: headline,
			Summary:  summary,
			Gist:     strings.TrimSpace(ch.Gist),
			StartMS:  ch.Start,
			EndMS:    ch.End,
		})
	}

	t.Segments = datatypes.NewJSONType(segments)
	t.Utterances = datatypes.NewJSONType(utterances)
	t.Chapters = datatypes.NewJSONType(chapters)
	return t
}

func speakerLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Speaker"
	}
	// Providers emit bare labels like "A"/"B"; keep anything richer as-is.
	if len(raw) == 1 {
		return "Speaker " + raw
	}
	return raw
}
