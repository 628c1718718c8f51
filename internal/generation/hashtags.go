package generation

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/generation/prompts"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/openai"
)

const maxHashtags = 30

type hashtagsTask struct {
	ai  openai.Client
	log *logger.Logger
}

func (*hashtagsTask) Name() domain.TaskName { return domain.TaskHashtags }

func (*hashtagsTask) Validate(t *domain.Transcript) error {
	return requireText(domain.TaskHashtags, t)
}

func (s *hashtagsTask) Run(ctx context.Context, t *domain.Transcript) (datatypes.JSON, error) {
	obj, err := s.ai.GenerateJSON(ctx, prompts.System(), prompts.HashtagsUser(t), "episode_hashtags", prompts.HashtagsSchema())
	if err != nil {
		return nil, classifyAIError(domain.TaskHashtags, err)
	}

	var out domain.Hashtags
	if err := decodeInto(domain.TaskHashtags, obj, &out); err != nil {
		return nil, err
	}
	out.Hashtags = NormalizeHashtags(out.Hashtags)
	if len(out.Hashtags) == 0 {
		return nil, faults.Validationf(string(domain.TaskHashtags), "no usable hashtags")
	}
	return marshalArtifact(domain.TaskHashtags, out)
}

// NormalizeHashtags enforces one canonical shape per tag: a single leading
// '#', no internal whitespace, deduped case-insensitively, capped in count.
// Order is preserved (the model ranks by relevance).
func NormalizeHashtags(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		tag := strings.TrimSpace(raw)
		tag = strings.TrimLeft(tag, "#")
		tag = strings.Join(strings.Fields(tag), "")
		if tag == "" {
			continue
		}
		tag = "#" + tag
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
		if len(out) == maxHashtags {
			break
		}
	}
	return out
}
