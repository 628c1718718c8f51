package generation

import (
	"context"

	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/generation/prompts"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/openai"
)

type titlesTask struct {
	ai  openai.Client
	log *logger.Logger
}

func (*titlesTask) Name() domain.TaskName { return domain.TaskTitles }

func (*titlesTask) Validate(t *domain.Transcript) error {
	return requireText(domain.TaskTitles, t)
}

func (s *titlesTask) Run(ctx context.Context, t *domain.Transcript) (datatypes.JSON, error) {
	obj, err := s.ai.GenerateJSON(ctx, prompts.System(), prompts.TitlesUser(t), "episode_titles", prompts.TitlesSchema())
	if err != nil {
		return nil, classifyAIError(domain.TaskTitles, err)
	}

	var out domain.Titles
	if err := decodeInto(domain.TaskTitles, obj, &out); err != nil {
		return nil, err
	}
	out.Titles = dedupeStrings(trimNonEmpty(out.Titles))
	if len(out.Titles) < 3 {
		return nil, faults.Validationf(string(domain.TaskTitles), "got %d usable titles, want at least 3", len(out.Titles))
	}
	if len(out.Titles) > 8 {
		out.Titles = out.Titles[:8]
	}
	return marshalArtifact(domain.TaskTitles, out)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
