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

const (
	twitterMaxChars = 280
	twitterEllipsis = "..."
)

type socialPostsTask struct {
	ai  openai.Client
	log *logger.Logger
}

func (*socialPostsTask) Name() domain.TaskName { return domain.TaskSocialPosts }

func (*socialPostsTask) Validate(t *domain.Transcript) error {
	return requireText(domain.TaskSocialPosts, t)
}

func (s *socialPostsTask) Run(ctx context.Context, t *domain.Transcript) (datatypes.JSON, error) {
	obj, err := s.ai.GenerateJSON(ctx, prompts.System(), prompts.SocialPostsUser(t), "social_posts", prompts.SocialPostsSchema())
	if err != nil {
		return nil, classifyAIError(domain.TaskSocialPosts, err)
	}

	var out domain.SocialPosts
	if err := decodeInto(domain.TaskSocialPosts, obj, &out); err != nil {
		return nil, err
	}

	out.Twitter = TruncateTweet(strings.TrimSpace(out.Twitter))
	out.LinkedIn = strings.TrimSpace(out.LinkedIn)
	out.Instagram = strings.TrimSpace(out.Instagram)

	if out.Twitter == "" && out.LinkedIn == "" && out.Instagram == "" {
		return nil, faults.Validationf(string(domain.TaskSocialPosts), "all posts empty")
	}
	return marshalArtifact(domain.TaskSocialPosts, out)
}

// TruncateTweet enforces the platform limit after generation rather than
// trusting the model to count. Overlong posts are cut to 277 runes plus an
// ellipsis marker so the result lands exactly at the 280 cap.
func TruncateTweet(post string) string {
	runes := []rune(post)
	if len(runes) <= twitterMaxChars {
		return post
	}
	keep := twitterMaxChars - len([]rune(twitterEllipsis))
	return string(runes[:keep]) + twitterEllipsis
}
