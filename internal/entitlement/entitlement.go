package entitlement

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/subscriptions"
	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

// Tier is the subscription level. Ordered: free < pro < ultra.
type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierUltra Tier = "ultra"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierFree:
		return TierFree, nil
	case TierPro:
		return TierPro, nil
	case TierUltra:
		return TierUltra, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

func rank(t Tier) int {
	switch t {
	case TierUltra:
		return 2
	case TierPro:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether t satisfies the predicate tier.
func (t Tier) AtLeast(predicate Tier) bool {
	return rank(t) >= rank(predicate)
}

// EntitledTasks returns the ordered generation tasks the tier unlocks.
// The mapping is monotonic: free ⊆ pro ⊆ ultra. Transcription is never
// gated by tier and is not part of this set.
func EntitledTasks(t Tier) []domain.TaskName {
	tasks := []domain.TaskName{domain.TaskSummary}
	if t.AtLeast(TierPro) {
		tasks = append(tasks, domain.TaskSocialPosts, domain.TaskTitles, domain.TaskHashtags)
	}
	if t.AtLeast(TierUltra) {
		tasks = append(tasks, domain.TaskKeyMoments, domain.TaskYouTubeTimestamps)
	}
	return tasks
}

// Entitles reports whether the tier unlocks the named task.
func Entitles(t Tier, task domain.TaskName) bool {
	for _, name := range EntitledTasks(t) {
		if name == task {
			return true
		}
	}
	return false
}

// Resolver answers tier questions against the subscription store. Every call
// reads fresh state so a plan upgrade is reflected on the next invocation.
type Resolver struct {
	subs subscriptions.SubscriptionRepo
	log  *logger.Logger
}

func NewResolver(subs subscriptions.SubscriptionRepo, baseLog *logger.Logger) *Resolver {
	return &Resolver{subs: subs, log: baseLog.With("service", "EntitlementResolver")}
}

func (r *Resolver) ResolveTier(dbc dbctx.Context, userID uuid.UUID) (Tier, error) {
	sub, err := r.subs.GetByUser(dbc, userID)
	if err != nil {
		return TierFree, err
	}
	if sub == nil {
		return TierFree, nil
	}
	tier, err := ParseTier(sub.Tier)
	if err != nil {
		r.log.Warn("Subscription row carries unknown tier; treating as free", "user_id", userID, "tier", sub.Tier)
		return TierFree, nil
	}
	return tier, nil
}

// Has is the external entitlement-source contract: a fresh tier-predicate
// check per invocation, no caching.
func (r *Resolver) Has(dbc dbctx.Context, userID uuid.UUID, predicate Tier) (bool, error) {
	tier, err := r.ResolveTier(dbc, userID)
	if err != nil {
		return false, err
	}
	return tier.AtLeast(predicate), nil
}

// InferOriginalTier reconstructs which tier was active when a project was
// originally processed by inspecting which artifacts are present. Heuristic:
// a user who ran partial retries across plan changes can produce overlapping
// artifact sets, so prefer explicit tier records when a caller has them.
func InferOriginalTier(p *domain.Project) Tier {
	if p == nil {
		return TierFree
	}
	if p.HasArtifact(domain.TaskKeyMoments) || p.HasArtifact(domain.TaskYouTubeTimestamps) {
		return TierUltra
	}
	if p.HasArtifact(domain.TaskSocialPosts) || p.HasArtifact(domain.TaskTitles) || p.HasArtifact(domain.TaskHashtags) {
		return TierPro
	}
	return TierFree
}
