package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
)

// providerRetryPolicy governs the externally-facing activities (transcription
// and generation). Infrastructure faults re-attempt with backoff; logic faults
// surface on the first attempt.
func providerRetryPolicy() *temporal.RetryPolicy {
	return &temporal.RetryPolicy{
		InitialInterval:        1 * time.Second,
		BackoffCoefficient:     2.0,
		MaximumInterval:        30 * time.Second,
		MaximumAttempts:        3,
		NonRetryableErrorTypes: faults.NonRetryableKinds(),
	}
}

func persistOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        500 * time.Millisecond,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: faults.NonRetryableKinds(),
		},
	}
}

func transcribeOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Hour,
		HeartbeatTimeout:    1 * time.Minute,
		RetryPolicy:         providerRetryPolicy(),
	}
}

func generateOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		HeartbeatTimeout:    1 * time.Minute,
		RetryPolicy:         providerRetryPolicy(),
	}
}

// ProcessWorkflow is the durable end-to-end run for one uploaded episode:
// transcription first (mandatory), then every entitled generation task in
// parallel with settle-all semantics. Generation failures are recorded per
// task and never fail the run; only transcription failure is terminal.
func ProcessWorkflow(ctx workflow.Context, in ProcessInput) error {
	if in.ProjectID == uuid.Nil || in.UserID == uuid.Nil {
		return fmt.Errorf("pipeline: missing project_id or user_id")
	}

	persistCtx := workflow.WithActivityOptions(ctx, persistOptions())

	if err := workflow.ExecuteActivity(persistCtx, ActivityMarkProcessing, in).Get(ctx, nil); err != nil {
		return err
	}

	var tr TranscribeResult
	transcribeCtx := workflow.WithActivityOptions(ctx, transcribeOptions())
	if err := workflow.ExecuteActivity(transcribeCtx, ActivityTranscribe, in).Get(ctx, &tr); err != nil {
		_ = workflow.ExecuteActivity(persistCtx, ActivityMarkFailed, MarkFailedInput{
			ProjectID: in.ProjectID,
			Step:      "transcription",
			Message:   errorMessage(err),
		}).Get(ctx, nil)
		return err
	}

	// Tier is read here, after transcription, so a plan change mid-upload is
	// honored by the fan-out.
	var ent EntitlementResult
	if err := workflow.ExecuteActivity(persistCtx, ActivityResolveEntitlements, in).Get(ctx, &ent); err != nil {
		_ = workflow.ExecuteActivity(persistCtx, ActivityMarkFailed, MarkFailedInput{
			ProjectID: in.ProjectID,
			Step:      "entitlement",
			Message:   errorMessage(err),
		}).Get(ctx, nil)
		return err
	}

	outcomes := runFanOut(ctx, in.ProjectID, ent)

	if err := workflow.ExecuteActivity(persistCtx, ActivitySaveResults, SaveResultsInput{
		ProjectID: in.ProjectID,
		Outcomes:  outcomes,
	}).Get(ctx, nil); err != nil {
		return err
	}

	return workflow.ExecuteActivity(persistCtx, ActivityCompleteProject, in).Get(ctx, nil)
}

// runFanOut launches one activity per entitled task and blocks until every
// branch settles. Each coroutine owns exactly one slot of the outcome slice,
// and the task order comes from the entitlement result, so replay is
// deterministic.
func runFanOut(ctx workflow.Context, projectID uuid.UUID, ent EntitlementResult) []TaskOutcome {
	genCtx := workflow.WithActivityOptions(ctx, generateOptions())

	outcomes := make([]TaskOutcome, len(ent.Tasks))
	wg := workflow.NewWaitGroup(ctx)
	for i, task := range ent.Tasks {
		i, task := i, task
		wg.Add(1)
		workflow.Go(ctx, func(gctx workflow.Context) {
			defer wg.Done()
			var out TaskOutcome
			err := workflow.ExecuteActivity(genCtx, ActivityGenerateTask, GenerateTaskInput{
				ProjectID: projectID,
				Task:      task,
			}).Get(gctx, &out)
			if err != nil {
				out = TaskOutcome{
					Task:         task,
					ErrorKind:    errorKind(err),
					ErrorMessage: errorMessage(err),
				}
			}
			outcomes[i] = out
		})
	}
	wg.Wait(ctx)
	return outcomes
}

// errorKind recovers the fault kind from a settled activity error. Timeouts
// count as network-class failures; anything untyped is provider-class.
func errorKind(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		if t := appErr.Type(); t != "" {
			return t
		}
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return faults.KindNetwork
	}
	return faults.KindProvider
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}
