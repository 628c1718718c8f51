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

type summaryTask struct {
	ai  openai.Client
	log *logger.Logger
}

func (*summaryTask) Name() domain.TaskName { return domain.TaskSummary }

func (*summaryTask) Validate(t *domain.Transcript) error {
	return requireText(domain.TaskSummary, t)
}

func (s *summaryTask) Run(ctx context.Context, t *domain.Transcript) (datatypes.JSON, error) {
	obj, err := s.ai.GenerateJSON(ctx, prompts.System(), prompts.SummaryUser(t), "episode_summary", prompts.SummarySchema())
	if err != nil {
		return nil, classifyAIError(domain.TaskSummary, err)
	}

	var out domain.Summary
	if err := decodeInto(domain.TaskSummary, obj, &out); err != nil {
		return nil, err
	}
	if err := validateSummary(&out); err != nil {
		return nil, err
	}
	return marshalArtifact(domain.TaskSummary, out)
}

func validateSummary(s *domain.Summary) error {
	s.Full = strings.TrimSpace(s.Full)
	s.TLDR = strings.TrimSpace(s.TLDR)
	s.Bullets = trimNonEmpty(s.Bullets)
	s.Insights = trimNonEmpty(s.Insights)

	if s.Full == "" || s.TLDR == "" {
		return faults.Validationf(string(domain.TaskSummary), "empty full summary or tldr")
	}
	if n := len(s.Bullets); n < 5 || n > 7 {
		return faults.Validationf(string(domain.TaskSummary), "got %d bullets, want 5-7", n)
	}
	if n := len(s.Insights); n < 3 || n > 5 {
		return faults.Validationf(string(domain.TaskSummary), "got %d insights, want 3-5", n)
	}
	return nil
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
