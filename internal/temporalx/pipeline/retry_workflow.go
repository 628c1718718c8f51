package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/workflow"

	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
)

// RetryTaskWorkflow re-runs one generation task out of band, after a failure
// or a plan upgrade. It never touches project status or the transcription
// phase: the original run stays terminal.
//
// Precondition failures (missing project, missing transcript, not entitled)
// fail the call without recording anything. Generation failures overwrite the
// task's job_errors entry; success stores the artifact and clears it.
func RetryTaskWorkflow(ctx workflow.Context, in RetryTaskInput) error {
	if in.ProjectID == uuid.Nil || in.UserID == uuid.Nil || in.Task == "" {
		return fmt.Errorf("pipeline: missing project_id, user_id, or task")
	}

	persistCtx := workflow.WithActivityOptions(ctx, persistOptions())

	var rc RetryContext
	if err := workflow.ExecuteActivity(persistCtx, ActivityPrepareRetry, in).Get(ctx, &rc); err != nil {
		return err
	}

	genCtx := workflow.WithActivityOptions(ctx, generateOptions())
	var out TaskOutcome
	err := workflow.ExecuteActivity(genCtx, ActivityGenerateTask, GenerateTaskInput{
		ProjectID: in.ProjectID,
		Task:      in.Task,
	}).Get(ctx, &out)
	if err != nil {
		recordErr := workflow.ExecuteActivity(persistCtx, ActivityRecordTaskError, RecordTaskErrorInput{
			ProjectID: in.ProjectID,
			Task:      in.Task,
			Message:   formatTaskError(err),
		}).Get(ctx, nil)
		if recordErr != nil {
			return recordErr
		}
		return err
	}

	return workflow.ExecuteActivity(persistCtx, ActivitySaveRetrySuccess, SaveResultsInput{
		ProjectID: in.ProjectID,
		Outcomes:  []TaskOutcome{out},
	}).Get(ctx, nil)
}

func formatTaskError(err error) string {
	kind := errorKind(err)
	msg := errorMessage(err)
	if kind == faults.KindProvider && msg == "" {
		return kind
	}
	return kind + ": " + msg
}
