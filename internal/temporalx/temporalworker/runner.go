package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/zitaharry/ai-podcast-saas/internal/platform/envutil"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx/pipeline"
)

// Runner hosts the pipeline worker: both workflows plus every activity, all
// on one task queue.
type Runner struct {
	log  *logger.Logger
	tc   temporalsdkclient.Client
	acts *pipeline.Activities
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, acts *pipeline.Activities) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if acts == nil || acts.DB == nil || acts.Projects == nil || acts.Transcripts == nil || acts.Tasks == nil || acts.Transcriber == nil || acts.Entitlements == nil {
		return nil, fmt.Errorf("temporal worker missing deps")
	}
	return &Runner{log: log, tc: tc, acts: acts}, nil
}

func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}

	cfg := temporalx.LoadConfig()
	if r.log != nil {
		r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)
	}

	maxWait := time.Duration(envutil.Int("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", 60)) * time.Second
	backoff := time.Duration(envutil.Int("TEMPORAL_WORKER_START_BACKOFF_MS", 250)) * time.Millisecond
	backoffMax := time.Duration(envutil.Int("TEMPORAL_WORKER_START_BACKOFF_MAX_MS", 5000)) * time.Millisecond

	deadline := time.Now().Add(maxWait)
	for attempt := 1; ; attempt++ {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		w := r.newWorker(cfg)
		startErr := w.Start()
		if startErr == nil {
			if ctx != nil {
				go func() {
					<-ctx.Done()
					w.Stop()
				}()
			}
			if r.log != nil {
				r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempt)
			}
			return nil
		}
		w.Stop()

		if maxWait <= 0 || time.Now().After(deadline) {
			var nfe *serviceerror.NamespaceNotFound
			if errors.As(startErr, &nfe) {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", cfg.Namespace, startErr)
			}
			return startErr
		}

		if r.log != nil {
			r.log.Warn("Temporal worker failed to start; retrying", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempt", attempt, "error", startErr)
		}

		sleep := backoff
		for i := 1; i < attempt; i++ {
			sleep *= 2
			if backoffMax > 0 && sleep >= backoffMax {
				sleep = backoffMax
				break
			}
		}
		time.Sleep(sleep)
	}
}

func (r *Runner) newWorker(cfg temporalx.Config) worker.Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 8)
	if concurrency < 1 {
		concurrency = 1
	}

	w := worker.New(r.tc, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})

	w.RegisterWorkflowWithOptions(pipeline.ProcessWorkflow, workflow.RegisterOptions{Name: pipeline.ProcessWorkflowName})
	w.RegisterWorkflowWithOptions(pipeline.RetryTaskWorkflow, workflow.RegisterOptions{Name: pipeline.RetryTaskWorkflowName})

	w.RegisterActivityWithOptions(r.acts.MarkProcessing, activity.RegisterOptions{Name: pipeline.ActivityMarkProcessing})
	w.RegisterActivityWithOptions(r.acts.Transcribe, activity.RegisterOptions{Name: pipeline.ActivityTranscribe})
	w.RegisterActivityWithOptions(r.acts.ResolveEntitlements, activity.RegisterOptions{Name: pipeline.ActivityResolveEntitlements})
	w.RegisterActivityWithOptions(r.acts.GenerateTask, activity.RegisterOptions{Name: pipeline.ActivityGenerateTask})
	w.RegisterActivityWithOptions(r.acts.SaveResults, activity.RegisterOptions{Name: pipeline.ActivitySaveResults})
	w.RegisterActivityWithOptions(r.acts.CompleteProject, activity.RegisterOptions{Name: pipeline.ActivityCompleteProject})
	w.RegisterActivityWithOptions(r.acts.MarkFailed, activity.RegisterOptions{Name: pipeline.ActivityMarkFailed})
	w.RegisterActivityWithOptions(r.acts.PrepareRetry, activity.RegisterOptions{Name: pipeline.ActivityPrepareRetry})
	w.RegisterActivityWithOptions(r.acts.SaveRetrySuccess, activity.RegisterOptions{Name: pipeline.ActivitySaveRetrySuccess})
	w.RegisterActivityWithOptions(r.acts.RecordTaskError, activity.RegisterOptions{Name: pipeline.ActivityRecordTaskError})
	return w
}
