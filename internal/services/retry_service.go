package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"golang.org/x/sync/errgroup"

	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/projects"
	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/entitlement"
	"github.com/zitaharry/ai-podcast-saas/internal/observability"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx/pipeline"
)

// GenerateMissingResult reports one generateMissingForTier invocation. Tasks
// settle independently; a failure in one never aborts its siblings.
type GenerateMissingResult struct {
	Tier      string                     `json:"tier"`
	Attempted []domain.TaskName          `json:"attempted"`
	Failed    map[domain.TaskName]string `json:"failed,omitempty"`
}

type RetryService struct {
	log      *logger.Logger
	projects projects.ProjectRepo
	ents     *entitlement.Resolver
	temporal temporalsdkclient.Client
	cfg      temporalx.Config
}

func NewRetryService(
	baseLog *logger.Logger,
	projectRepo projects.ProjectRepo,
	ents *entitlement.Resolver,
	tc temporalsdkclient.Client,
	cfg temporalx.Config,
) *RetryService {
	return &RetryService{
		log:      baseLog.With("service", "RetryService"),
		projects: projectRepo,
		ents:     ents,
		temporal: tc,
		cfg:      cfg,
	}
}

// RetryTask re-runs one generation task out of band and waits for it to
// settle. The project's status and completed_at are never touched; only the
// task's artifact column and its job_errors entry change.
func (s *RetryService) RetryTask(ctx context.Context, userID, projectID uuid.UUID, task domain.TaskName) error {
	if s.temporal == nil {
		return faults.Preconditionf("retryTask", "processing pipeline is not configured")
	}
	if _, err := domain.ParseTaskName(string(task)); err != nil {
		return faults.Validationf("retryTask", "%v", err)
	}
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return err
	}
	return s.runRetry(ctx, userID, projectID, task)
}

// GenerateMissingForTier resolves the caller's current tier and re-runs every
// entitled task whose artifact is absent, typically after a plan upgrade.
// Tasks already stored are never regenerated.
func (s *RetryService) GenerateMissingForTier(ctx context.Context, userID, projectID uuid.UUID) (*GenerateMissingResult, error) {
	if s.temporal == nil {
		return nil, faults.Preconditionf("generateMissingForTier", "processing pipeline is not configured")
	}
	p, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	tier, err := s.ents.ResolveTier(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve tier: %w", err)
	}

	missing := missingTasks(p, tier)

	res := &GenerateMissingResult{
		Tier:      string(tier),
		Attempted: missing,
		Failed:    map[domain.TaskName]string{},
	}
	if len(missing) == 0 {
		s.log.Info("No missing artifacts for tier", "project_id", projectID, "tier", tier)
		return res, nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, task := range missing {
		task := task
		g.Go(func() error {
			if err := s.runRetry(ctx, userID, projectID, task); err != nil {
				mu.Lock()
				res.Failed[task] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("Missing-artifact generation settled",
		"project_id", projectID, "tier", tier,
		"attempted", len(missing), "failed", len(res.Failed))
	return res, nil
}

// missingTasks lists the tier's entitled tasks with no stored artifact, in
// entitlement order. Stored artifacts are never regenerated.
func missingTasks(p *domain.Project, tier entitlement.Tier) []domain.TaskName {
	var missing []domain.TaskName
	for _, task := range entitlement.EntitledTasks(tier) {
		if !p.HasArtifact(task) {
			missing = append(missing, task)
		}
	}
	return missing
}

// runRetry starts one retry workflow and blocks until it settles, translating
// the workflow's application error back into the fault it wrapped.
func (s *RetryService) runRetry(ctx context.Context, userID, projectID uuid.UUID, task domain.TaskName) error {
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    fmt.Sprintf("retry-%s-%s", projectID, task),
		TaskQueue:             s.cfg.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}
	run, err := s.temporal.ExecuteWorkflow(ctx, opts, pipeline.RetryTaskWorkflowName, pipeline.RetryTaskInput{
		ProjectID: projectID,
		UserID:    userID,
		Task:      task,
	})
	if err != nil {
		return fmt.Errorf("start retry workflow: %w", err)
	}
	if err := run.Get(ctx, nil); err != nil {
		observability.Current().IncRetry(string(task), "error")
		return liftWorkflowError(task, err)
	}
	observability.Current().IncRetry(string(task), "ok")
	return nil
}

// liftWorkflowError recovers the fault kind a retry workflow failed with, so
// HTTP callers can distinguish entitlement and precondition failures from
// provider trouble.
func liftWorkflowError(task domain.TaskName, err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return &faults.Fault{
			Kind: appErr.Type(),
			Step: string(task),
			Err:  errors.New(appErr.Message()),
		}
	}
	return fmt.Errorf("retry %s: %w", task, err)
}

func (s *RetryService) ownedProject(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	if projectID == uuid.Nil {
		return nil, faults.NotFoundf("project id missing")
	}
	p, err := s.projects.GetByID(dbctx.Context{Ctx: ctx}, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p == nil || p.OwnerUserID != userID {
		return nil, faults.NotFoundf("project %s not found", projectID)
	}
	return p, nil
}
