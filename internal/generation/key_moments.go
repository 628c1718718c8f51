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

type keyMomentsTask struct {
	ai  openai.Client
	log *logger.Logger
}

func (*keyMomentsTask) Name() domain.TaskName { return domain.TaskKeyMoments }

// Key moments anchor to chapter offsets; a transcript without chapters cannot
// satisfy them.
func (*keyMomentsTask) Validate(t *domain.Transcript) error {
	return requireChapters(domain.TaskKeyMoments, t)
}

func (s *keyMomentsTask) Run(ctx context.Context, t *domain.Transcript) (datatypes.JSON, error) {
	obj, err := s.ai.GenerateJSON(ctx, prompts.System(), prompts.KeyMomentsUser(t, FormatHHMMSS), "key_moments", prompts.KeyMomentsSchema())
	if err != nil {
		return nil, classifyAIError(domain.TaskKeyMoments, err)
	}

	var out domain.KeyMoments
	if err := decodeInto(domain.TaskKeyMoments, obj, &out); err != nil {
		return nil, err
	}
	if err := validateKeyMoments(&out); err != nil {
		return nil, err
	}
	return marshalArtifact(domain.TaskKeyMoments, out)
}

func validateKeyMoments(km *domain.KeyMoments) error {
	usable := make([]domain.KeyMoment, 0, len(km.Moments))
	for _, m := range km.Moments {
		m.Timestamp = strings.TrimSpace(m.Timestamp)
		m.Title = strings.TrimSpace(m.Title)
		m.Description = strings.TrimSpace(m.Description)
		if m.Title == "" {
			continue
		}
		if _, err := ParseHHMMSS(m.Timestamp); err != nil {
			return faults.Validationf(string(domain.TaskKeyMoments), "moment %q: %v", m.Title, err)
		}
		usable = append(usable, m)
	}
	if len(usable) == 0 {
		return faults.Validationf(string(domain.TaskKeyMoments), "no usable moments")
	}
	km.Moments = usable
	return nil
}
