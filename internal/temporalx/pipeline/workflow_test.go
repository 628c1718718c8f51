package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
)

// recorder captures what the stub activities were asked to persist.
type recorder struct {
	mu sync.Mutex

	counts       map[string]int
	saved        SaveResultsInput
	failed       MarkFailedInput
	recordedErr  RecordTaskErrorInput
	retrySuccess SaveResultsInput
}

func newRecorder() *recorder {
	return &recorder{counts: map[string]int{}}
}

func (r *recorder) bump(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name]++
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// stubs wires fake activity implementations under the production activity
// names. Per-test behavior is injected through the function fields.
type stubs struct {
	rec *recorder

	transcribeErr error
	entitlements  EntitlementResult
	prepareErr    error
	generate      func(in GenerateTaskInput) (TaskOutcome, error)
}

func okArtifact() datatypes.JSON {
	return datatypes.JSON([]byte(`{"ok":true}`))
}

func (s *stubs) register(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivityWithOptions(func(ctx context.Context, in ProcessInput) error {
		s.rec.bump(ActivityMarkProcessing)
		return nil
	}, activity.RegisterOptions{Name: ActivityMarkProcessing})

	env.RegisterActivityWithOptions(func(ctx context.Context, in ProcessInput) (TranscribeResult, error) {
		s.rec.bump(ActivityTranscribe)
		if s.transcribeErr != nil {
			return TranscribeResult{}, s.transcribeErr
		}
		return TranscribeResult{TranscriptID: uuid.New(), HasChapters: true}, nil
	}, activity.RegisterOptions{Name: ActivityTranscribe})

	env.RegisterActivityWithOptions(func(ctx context.Context, in ProcessInput) (EntitlementResult, error) {
		s.rec.bump(ActivityResolveEntitlements)
		return s.entitlements, nil
	}, activity.RegisterOptions{Name: ActivityResolveEntitlements})

	env.RegisterActivityWithOptions(func(ctx context.Context, in GenerateTaskInput) (TaskOutcome, error) {
		s.rec.bump(ActivityGenerateTask)
		s.rec.bump("generate:" + string(in.Task))
		if s.generate != nil {
			return s.generate(in)
		}
		return TaskOutcome{Task: in.Task, Artifact: okArtifact()}, nil
	}, activity.RegisterOptions{Name: ActivityGenerateTask})

	env.RegisterActivityWithOptions(func(ctx context.Context, in SaveResultsInput) error {
		s.rec.bump(ActivitySaveResults)
		s.rec.mu.Lock()
		s.rec.saved = in
		s.rec.mu.Unlock()
		return nil
	}, activity.RegisterOptions{Name: ActivitySaveResults})

	env.RegisterActivityWithOptions(func(ctx context.Context, in ProcessInput) error {
		s.rec.bump(ActivityCompleteProject)
		return nil
	}, activity.RegisterOptions{Name: ActivityCompleteProject})

	env.RegisterActivityWithOptions(func(ctx context.Context, in MarkFailedInput) error {
		s.rec.bump(ActivityMarkFailed)
		s.rec.mu.Lock()
		s.rec.failed = in
		s.rec.mu.Unlock()
		return nil
	}, activity.RegisterOptions{Name: ActivityMarkFailed})

	env.RegisterActivityWithOptions(func(ctx context.Context, in RetryTaskInput) (RetryContext, error) {
		s.rec.bump(ActivityPrepareRetry)
		if s.prepareErr != nil {
			return RetryContext{}, s.prepareErr
		}
		return RetryContext{Tier: "ultra", Entitled: true}, nil
	}, activity.RegisterOptions{Name: ActivityPrepareRetry})

	env.RegisterActivityWithOptions(func(ctx context.Context, in SaveResultsInput) error {
		s.rec.bump(ActivitySaveRetrySuccess)
		s.rec.mu.Lock()
		s.rec.retrySuccess = in
		s.rec.mu.Unlock()
		return nil
	}, activity.RegisterOptions{Name: ActivitySaveRetrySuccess})

	env.RegisterActivityWithOptions(func(ctx context.Context, in RecordTaskErrorInput) error {
		s.rec.bump(ActivityRecordTaskError)
		s.rec.mu.Lock()
		s.rec.recordedErr = in
		s.rec.mu.Unlock()
		return nil
	}, activity.RegisterOptions{Name: ActivityRecordTaskError})
}

func proEntitlements() EntitlementResult {
	return EntitlementResult{
		Tier: "pro",
		Tasks: []domain.TaskName{
			domain.TaskSummary, domain.TaskSocialPosts, domain.TaskTitles, domain.TaskHashtags,
		},
	}
}

func processInput() ProcessInput {
	return ProcessInput{ProjectID: uuid.New(), UserID: uuid.New()}
}

func newEnv(t *testing.T, s *stubs) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	s.register(env)
	return env
}

func TestProcessWorkflowPartialFailureStillCompletes(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec:          rec,
		entitlements: proEntitlements(),
		generate: func(in GenerateTaskInput) (TaskOutcome, error) {
			if in.Task == domain.TaskTitles {
				return TaskOutcome{}, temporal.NewApplicationError("model returned 2 titles", faults.KindValidation)
			}
			return TaskOutcome{Task: in.Task, Artifact: okArtifact()}, nil
		},
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(ProcessWorkflow, processInput())

	if !env.IsWorkflowCompleted() || env.GetWorkflowError() != nil {
		t.Fatalf("workflow should complete despite task failure: %v", env.GetWorkflowError())
	}
	if got := rec.count(ActivityCompleteProject); got != 1 {
		t.Fatalf("CompleteProject ran %d times, want 1", got)
	}
	if got := len(rec.saved.Outcomes); got != 4 {
		t.Fatalf("saved %d outcomes, want 4", got)
	}

	succeeded, failed := 0, 0
	for _, o := range rec.saved.Outcomes {
		if o.Succeeded() {
			succeeded++
			continue
		}
		failed++
		if o.Task != domain.TaskTitles {
			t.Errorf("unexpected failed task %s", o.Task)
		}
		if o.ErrorKind != faults.KindValidation {
			t.Errorf("error kind = %q, want %q", o.ErrorKind, faults.KindValidation)
		}
	}
	if succeeded != 3 || failed != 1 {
		t.Fatalf("partition = %d succeeded / %d failed, want 3/1", succeeded, failed)
	}
}

func TestProcessWorkflowAllTasksFailStillCompletes(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec:          rec,
		entitlements: proEntitlements(),
		generate: func(in GenerateTaskInput) (TaskOutcome, error) {
			return TaskOutcome{}, temporal.NewApplicationError("bad output", faults.KindValidation)
		},
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(ProcessWorkflow, processInput())

	if env.GetWorkflowError() != nil {
		t.Fatalf("workflow failed: %v", env.GetWorkflowError())
	}
	if got := rec.count(ActivityCompleteProject); got != 1 {
		t.Fatalf("CompleteProject ran %d times, want 1", got)
	}
	for _, o := range rec.saved.Outcomes {
		if o.Succeeded() {
			t.Errorf("task %s unexpectedly succeeded", o.Task)
		}
	}
	if got := rec.count(ActivityMarkFailed); got != 0 {
		t.Fatalf("MarkFailed ran %d times; task failures must not fail the project", got)
	}
}

func TestProcessWorkflowTranscriptionFailureShortCircuits(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec:           rec,
		entitlements:  proEntitlements(),
		transcribeErr: temporal.NewApplicationError("unsupported codec", faults.KindValidation),
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(ProcessWorkflow, processInput())

	if env.GetWorkflowError() == nil {
		t.Fatal("workflow should fail when transcription fails")
	}
	if got := rec.count(ActivityGenerateTask); got != 0 {
		t.Fatalf("generation ran %d times after transcription failure, want 0", got)
	}
	if got := rec.count(ActivityMarkFailed); got != 1 {
		t.Fatalf("MarkFailed ran %d times, want 1", got)
	}
	if rec.failed.Step != "transcription" {
		t.Errorf("failed step = %q, want transcription", rec.failed.Step)
	}
	if got := rec.count(ActivitySaveResults); got != 0 {
		t.Errorf("SaveResults ran %d times, want 0", got)
	}
}

func TestProcessWorkflowNetworkErrorsAreRetried(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec: rec,
		entitlements: EntitlementResult{
			Tier:  "free",
			Tasks: []domain.TaskName{domain.TaskSummary},
		},
		generate: func(in GenerateTaskInput) (TaskOutcome, error) {
			return TaskOutcome{}, temporal.NewApplicationError("upstream 503", faults.KindNetwork)
		},
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(ProcessWorkflow, processInput())

	if env.GetWorkflowError() != nil {
		t.Fatalf("workflow failed: %v", env.GetWorkflowError())
	}
	if got := rec.count("generate:summary"); got != 3 {
		t.Fatalf("network-failing task attempted %d times, want 3", got)
	}
	if got := rec.count(ActivityCompleteProject); got != 1 {
		t.Fatalf("CompleteProject ran %d times, want 1", got)
	}
}

func TestProcessWorkflowLogicErrorsAreNotRetried(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec: rec,
		entitlements: EntitlementResult{
			Tier:  "free",
			Tasks: []domain.TaskName{domain.TaskSummary},
		},
		generate: func(in GenerateTaskInput) (TaskOutcome, error) {
			return TaskOutcome{}, temporal.NewApplicationError("schema mismatch", faults.KindValidation)
		},
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(ProcessWorkflow, processInput())

	if got := rec.count("generate:summary"); got != 1 {
		t.Fatalf("validation-failing task attempted %d times, want 1", got)
	}
}

func retryInput(task domain.TaskName) RetryTaskInput {
	return RetryTaskInput{ProjectID: uuid.New(), UserID: uuid.New(), Task: task}
}

func TestRetryTaskWorkflowSuccessClearsError(t *testing.T) {
	rec := newRecorder()
	s := &stubs{rec: rec}
	env := newEnv(t, s)
	env.ExecuteWorkflow(RetryTaskWorkflow, retryInput(domain.TaskKeyMoments))

	if env.GetWorkflowError() != nil {
		t.Fatalf("retry failed: %v", env.GetWorkflowError())
	}
	if got := rec.count(ActivitySaveRetrySuccess); got != 1 {
		t.Fatalf("SaveRetrySuccess ran %d times, want 1", got)
	}
	if got := len(rec.retrySuccess.Outcomes); got != 1 || rec.retrySuccess.Outcomes[0].Task != domain.TaskKeyMoments {
		t.Fatalf("retry persisted %+v", rec.retrySuccess.Outcomes)
	}
	if got := rec.count(ActivityRecordTaskError); got != 0 {
		t.Fatalf("RecordTaskError ran %d times, want 0", got)
	}
}

func TestRetryTaskWorkflowNotEntitledFailsWithoutRecording(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec:        rec,
		prepareErr: temporal.NewApplicationError("tier free does not unlock task keyMoments", faults.KindNotEntitled),
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(RetryTaskWorkflow, retryInput(domain.TaskKeyMoments))

	err := env.GetWorkflowError()
	if err == nil {
		t.Fatal("retry should fail for unentitled task")
	}
	if !strings.Contains(err.Error(), faults.KindNotEntitled) {
		t.Errorf("error %q does not carry %s", err.Error(), faults.KindNotEntitled)
	}
	if got := rec.count(ActivityGenerateTask); got != 0 {
		t.Errorf("generation ran %d times, want 0", got)
	}
	if got := rec.count(ActivityRecordTaskError); got != 0 {
		t.Errorf("RecordTaskError ran %d times; entitlement failures must not land in job_errors", got)
	}
}

func TestRetryTaskWorkflowPreconditionFailureIsRecorded(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec: rec,
		generate: func(in GenerateTaskInput) (TaskOutcome, error) {
			return TaskOutcome{}, temporal.NewApplicationError("transcript has no topic chapters", faults.KindPrecondition)
		},
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(RetryTaskWorkflow, retryInput(domain.TaskYouTubeTimestamps))

	if env.GetWorkflowError() == nil {
		t.Fatal("retry should surface the precondition failure")
	}
	if got := rec.count(ActivityRecordTaskError); got != 1 {
		t.Fatalf("RecordTaskError ran %d times, want 1", got)
	}
	if rec.recordedErr.Task != domain.TaskYouTubeTimestamps {
		t.Errorf("recorded task = %s", rec.recordedErr.Task)
	}
	if !strings.Contains(rec.recordedErr.Message, faults.KindPrecondition) {
		t.Errorf("recorded message %q missing kind", rec.recordedErr.Message)
	}
	if got := rec.count(ActivitySaveRetrySuccess); got != 0 {
		t.Errorf("SaveRetrySuccess ran %d times, want 0", got)
	}
}

func TestRetryTaskWorkflowMissingTranscriptFailsWithoutRecording(t *testing.T) {
	rec := newRecorder()
	s := &stubs{
		rec:        rec,
		prepareErr: temporal.NewApplicationError("no transcript persisted", faults.KindMissingTranscript),
	}
	env := newEnv(t, s)
	env.ExecuteWorkflow(RetryTaskWorkflow, retryInput(domain.TaskSummary))

	if env.GetWorkflowError() == nil {
		t.Fatal("retry should fail without a transcript")
	}
	if got := rec.count(ActivityRecordTaskError); got != 0 {
		t.Errorf("RecordTaskError ran %d times, want 0", got)
	}
}
