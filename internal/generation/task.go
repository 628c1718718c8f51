package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/httpx"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/openai"
)

// Task is one independent content generation unit. Tasks read the transcript,
// never mutate it, and never see each other's output. Validate gates execution
// on transcript features; Run produces the whole artifact payload.
type Task interface {
	Name() domain.TaskName
	Validate(t *domain.Transcript) error
	Run(ctx context.Context, t *domain.Transcript) (datatypes.JSON, error)
}

// Registry resolves task names to implementations. The set is fixed at
// construction; tier gating happens in the entitlement layer, not here.
type Registry struct {
	tasks map[domain.TaskName]Task
}

func NewRegistry(ai openai.Client, baseLog *logger.Logger) *Registry {
	log := baseLog.With("service", "GenerationRegistry")
	all := []Task{
		&summaryTask{ai: ai, log: log},
		&socialPostsTask{ai: ai, log: log},
		&titlesTask{ai: ai, log: log},
		&hashtagsTask{ai: ai, log: log},
		&keyMomentsTask{ai: ai, log: log},
		&youtubeTimestampsTask{ai: ai, log: log},
	}
	m := make(map[domain.TaskName]Task, len(all))
	for _, t := range all {
		m[t.Name()] = t
	}
	return &Registry{tasks: m}
}

func (r *Registry) Get(name domain.TaskName) (Task, error) {
	t, ok := r.tasks[name]
	if !ok {
		return nil, fmt.Errorf("no task registered for %q", name)
	}
	return t, nil
}

// classifyAIError maps provider-call failures onto the fault taxonomy:
// transient HTTP conditions re-attempt, everything else surfaces once.
func classifyAIError(task domain.TaskName, err error) error {
	if httpx.IsRetryableError(err) {
		return faults.Network(string(task), err)
	}
	return faults.Provider(string(task), err)
}

// decodeInto round-trips the provider's generic JSON object into the typed
// artifact struct.
func decodeInto(task domain.TaskName, obj map[string]any, out any) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return faults.Validationf(string(task), "re-encode provider output: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return faults.Validationf(string(task), "provider output shape: %v", err)
	}
	return nil
}

func marshalArtifact(task domain.TaskName, v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, faults.Validationf(string(task), "encode artifact: %v", err)
	}
	return datatypes.JSON(raw), nil
}

func requireText(task domain.TaskName, t *domain.Transcript) error {
	if !t.HasText() {
		return faults.Preconditionf(string(task), "transcript has no text")
	}
	return nil
}

func requireChapters(task domain.TaskName, t *domain.Transcript) error {
	if err := requireText(task, t); err != nil {
		return err
	}
	if !t.HasChapters() {
		return faults.Preconditionf(string(task), "transcript has no topic chapters")
	}
	return nil
}
