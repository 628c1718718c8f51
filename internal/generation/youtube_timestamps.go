package generation

import (
	"context"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/generation/prompts"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/openai"
)

type youtubeTimestampsTask struct {
	ai  openai.Client
	log *logger.Logger
}

func (*youtubeTimestampsTask) Name() domain.TaskName { return domain.TaskYouTubeTimestamps }

func (*youtubeTimestampsTask) Validate(t *domain.Transcript) error {
	return requireChapters(domain.TaskYouTubeTimestamps, t)
}

func (s *youtubeTimestampsTask) Run(ctx context.Context, t *domain.Transcript) (datatypes.JSON, error) {
	obj, err := s.ai.GenerateJSON(ctx, prompts.System(), prompts.YouTubeTimestampsUser(t, FormatHHMMSS), "youtube_timestamps", prompts.YouTubeTimestampsSchema())
	if err != nil {
		return nil, classifyAIError(domain.TaskYouTubeTimestamps, err)
	}

	var out domain.YouTubeTimestamps
	if err := decodeInto(domain.TaskYouTubeTimestamps, obj, &out); err != nil {
		return nil, err
	}
	if err := normalizeYouTubeChapters(&out); err != nil {
		return nil, err
	}
	return marshalArtifact(domain.TaskYouTubeTimestamps, out)
}

// normalizeYouTubeChapters sorts chapters chronologically and pins the first
// to 00:00:00, which YouTube requires before it renders a chapter list.
func normalizeYouTubeChapters(yt *domain.YouTubeTimestamps) error {
	type timed struct {
		sec int64
		ch  domain.YouTubeChapter
	}
	usable := make([]timed, 0, len(yt.Chapters))
	for _, ch := range yt.Chapters {
		ch.Timestamp = strings.TrimSpace(ch.Timestamp)
		ch.Title = strings.TrimSpace(ch.Title)
		if ch.Title == "" {
			continue
		}
		sec, err := ParseHHMMSS(ch.Timestamp)
		if err != nil {
			return faults.Validationf(string(domain.TaskYouTubeTimestamps), "chapter %q: %v", ch.Title, err)
		}
		usable = append(usable, timed{sec: sec, ch: ch})
	}
	if len(usable) == 0 {
		return faults.Validationf(string(domain.TaskYouTubeTimestamps), "no usable chapters")
	}

	sort.SliceStable(usable, func(i, j int) bool { return usable[i].sec < usable[j].sec })

	out := make([]domain.YouTubeChapter, 0, len(usable))
	for _, u := range usable {
		out = append(out, u.ch)
	}
	out[0].Timestamp = "00:00:00"
	yt.Chapters = out
	return nil
}
