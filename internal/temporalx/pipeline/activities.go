package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/projects"
	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/transcripts"
	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/entitlement"
	"github.com/zitaharry/ai-podcast-saas/internal/generation"
	"github.com/zitaharry/ai-podcast-saas/internal/observability"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/gcp"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/transcription"
)

// Notifier pushes pipeline progress to connected clients. All methods are
// best-effort; delivery failures never fail an activity.
type Notifier interface {
	ProjectProcessing(userID, projectID uuid.UUID)
	TranscriptionCompleted(userID, projectID uuid.UUID)
	TaskSettled(userID, projectID uuid.UUID, task domain.TaskName, errMessage string)
	ProjectCompleted(userID, projectID uuid.UUID)
	ProjectFailed(userID, projectID uuid.UUID, step, message string)
}

type Activities struct {
	Log          *logger.Logger
	DB           *gorm.DB
	Projects     projects.ProjectRepo
	Transcripts  transcripts.TranscriptRepo
	Entitlements *entitlement.Resolver
	Tasks        *generation.Registry
	Transcriber  transcription.Transcriber
	Store        gcp.AudioStore // optional; nil means audio refs are already URLs
	Notify       Notifier       // optional
}

// appError lifts a fault into a typed Temporal application error so retry
// policies can match on the kind.
func appError(err error) error {
	if err == nil {
		return nil
	}
	if kind := faults.KindOf(err); kind != "" {
		return temporal.NewApplicationError(err.Error(), kind)
	}
	return err
}

func (a *Activities) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx, Tx: a.DB}
}

func (a *Activities) loadProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	p, err := a.Projects.GetByID(a.dbc(ctx), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, appError(faults.NotFoundf("project %s not found", id))
	}
	return p, nil
}

func (a *Activities) MarkProcessing(ctx context.Context, in ProcessInput) error {
	p, err := a.loadProject(ctx, in.ProjectID)
	if err != nil {
		return err
	}

	js := domain.NewJobStatus()
	js.Transcription = domain.PhaseRunning
	if err := a.Projects.PatchFields(a.dbc(ctx), in.ProjectID, map[string]interface{}{
		"status":     domain.ProjectProcessing,
		"job_status": datatypes.NewJSONType(js),
	}); err != nil {
		return err
	}

	if a.Notify != nil {
		a.Notify.ProjectProcessing(p.OwnerUserID, in.ProjectID)
	}
	return nil
}

// Transcribe runs the provider call and persists both the transcript row and
// the phase flip (transcription completed, content generation running) before
// returning, so a crash after this activity resumes past transcription.
func (a *Activities) Transcribe(ctx context.Context, in ProcessInput) (TranscribeResult, error) {
	var res TranscribeResult

	p, err := a.loadProject(ctx, in.ProjectID)
	if err != nil {
		return res, err
	}

	audioURL, err := a.resolveAudioURL(p)
	if err != nil {
		return res, appError(err)
	}

	stopHB := startHeartbeat(ctx)
	defer stopHB()

	started := time.Now()
	t, err := a.Transcriber.Transcribe(ctx, in.ProjectID, audioURL)
	if err != nil {
		observability.Current().ObserveTranscription("", "error", time.Since(started))
		return res, appError(err)
	}
	observability.Current().ObserveTranscription(t.Provider, "ok", time.Since(started))
	if !t.HasText() {
		return res, appError(faults.Provider("transcription", fmt.Errorf("provider returned empty transcript")))
	}

	if err := a.Transcripts.Create(a.dbc(ctx), t); err != nil {
		return res, err
	}

	js := domain.JobStatus{Transcription: domain.PhaseCompleted, ContentGeneration: domain.PhaseRunning}
	updates := map[string]interface{}{
		"job_status": datatypes.NewJSONType(js),
	}
	if t.AudioDurationSecs > 0 {
		updates["duration_secs"] = t.AudioDurationSecs
	}
	if err := a.Projects.PatchFields(a.dbc(ctx), in.ProjectID, updates); err != nil {
		return res, err
	}

	if a.Notify != nil {
		a.Notify.TranscriptionCompleted(p.OwnerUserID, in.ProjectID)
	}

	res.TranscriptID = t.ID
	res.HasChapters = t.HasChapters()
	return res, nil
}

// ResolveEntitlements reads the subscription fresh at fan-out time. The tier
// active now decides the task set, not the tier at upload.
func (a *Activities) ResolveEntitlements(ctx context.Context, in ProcessInput) (EntitlementResult, error) {
	tier, err := a.Entitlements.ResolveTier(a.dbc(ctx), in.UserID)
	if err != nil {
		return EntitlementResult{}, err
	}
	return EntitlementResult{
		Tier:  string(tier),
		Tasks: entitlement.EntitledTasks(tier),
	}, nil
}

func (a *Activities) GenerateTask(ctx context.Context, in GenerateTaskInput) (TaskOutcome, error) {
	out := TaskOutcome{Task: in.Task}

	t, err := a.Transcripts.GetByProject(a.dbc(ctx), in.ProjectID)
	if err != nil {
		return out, err
	}
	if t == nil || !t.HasText() {
		return out, appError(faults.MissingTranscript(in.ProjectID.String()))
	}

	task, err := a.Tasks.Get(in.Task)
	if err != nil {
		return out, err
	}
	if err := task.Validate(t); err != nil {
		return out, appError(err)
	}

	stopHB := startHeartbeat(ctx)
	defer stopHB()

	started := time.Now()
	artifact, err := task.Run(ctx, t)
	if err != nil {
		observability.Current().ObserveTask(string(in.Task), "error", time.Since(started))
		return out, appError(err)
	}
	observability.Current().ObserveTask(string(in.Task), "ok", time.Since(started))
	out.Artifact = artifact
	return out, nil
}

// SaveResults persists one settled fan-out as a single batched artifact patch
// plus one job_errors rewrite. Task failures land in job_errors; they never
// escalate to the project-level error.
func (a *Activities) SaveResults(ctx context.Context, in SaveResultsInput) error {
	p, err := a.loadProject(ctx, in.ProjectID)
	if err != nil {
		return err
	}

	artifacts := map[domain.TaskName]datatypes.JSON{}
	set := map[string]string{}
	clear := []string{}
	for _, o := range in.Outcomes {
		if o.Succeeded() {
			artifacts[o.Task] = o.Artifact
			clear = append(clear, string(o.Task))
			continue
		}
		set[string(o.Task)] = taskErrorMessage(o)
	}

	if err := a.Projects.SaveArtifacts(a.dbc(ctx), in.ProjectID, artifacts); err != nil {
		return err
	}
	if err := a.Projects.MergeJobErrors(a.dbc(ctx), in.ProjectID, set, clear); err != nil {
		return err
	}

	if a.Notify != nil {
		for _, o := range in.Outcomes {
			a.Notify.TaskSettled(p.OwnerUserID, in.ProjectID, o.Task, set[string(o.Task)])
		}
	}
	return nil
}

// CompleteProject flips the run terminal. Reached whenever transcription
// succeeded, regardless of how many generation tasks failed.
func (a *Activities) CompleteProject(ctx context.Context, in ProcessInput) error {
	p, err := a.loadProject(ctx, in.ProjectID)
	if err != nil {
		return err
	}

	js := domain.JobStatus{Transcription: domain.PhaseCompleted, ContentGeneration: domain.PhaseCompleted}
	now := time.Now().UTC()
	if err := a.Projects.PatchFields(a.dbc(ctx), in.ProjectID, map[string]interface{}{
		"status":       domain.ProjectCompleted,
		"job_status":   datatypes.NewJSONType(js),
		"completed_at": now,
	}); err != nil {
		return err
	}

	if a.Notify != nil {
		a.Notify.ProjectCompleted(p.OwnerUserID, in.ProjectID)
	}
	return nil
}

// MarkFailed records a terminal project-level failure. Only the mandatory
// stage (transcription) routes here.
func (a *Activities) MarkFailed(ctx context.Context, in MarkFailedInput) error {
	p, err := a.loadProject(ctx, in.ProjectID)
	if err != nil {
		return err
	}

	js := p.JobStatus.Data()
	switch in.Step {
	case "transcription":
		js.Transcription = domain.PhaseFailed
	default:
		js.ContentGeneration = domain.PhaseFailed
	}

	perr := datatypes.NewJSONType(domain.ProjectError{
		Message: in.Message,
		Step:    in.Step,
		At:      time.Now().UTC(),
	})
	if err := a.Projects.PatchFields(a.dbc(ctx), in.ProjectID, map[string]interface{}{
		"status":     domain.ProjectFailed,
		"job_status": datatypes.NewJSONType(js),
		"error":      &perr,
	}); err != nil {
		return err
	}

	if a.Notify != nil {
		a.Notify.ProjectFailed(p.OwnerUserID, in.ProjectID, in.Step, in.Message)
	}
	return nil
}

// PrepareRetry gates an out-of-band task retry: project must exist, a
// transcript must be persisted, and the caller's current tier must entitle
// the task. Failures here are not recorded in job_errors.
func (a *Activities) PrepareRetry(ctx context.Context, in RetryTaskInput) (RetryContext, error) {
	var res RetryContext

	if _, err := a.loadProject(ctx, in.ProjectID); err != nil {
		return res, err
	}

	t, err := a.Transcripts.GetByProject(a.dbc(ctx), in.ProjectID)
	if err != nil {
		return res, err
	}
	if t == nil || !t.HasText() {
		return res, appError(faults.MissingTranscript(in.ProjectID.String()))
	}

	tier, err := a.Entitlements.ResolveTier(a.dbc(ctx), in.UserID)
	if err != nil {
		return res, err
	}
	res.Tier = string(tier)
	res.Entitled = entitlement.Entitles(tier, in.Task)
	if !res.Entitled {
		return res, appError(faults.NotEntitledf("tier %s does not unlock task %s", tier, in.Task))
	}
	return res, nil
}

// SaveRetrySuccess stores the regenerated artifact and clears the task's
// stale job_errors entry. Project status is untouched.
func (a *Activities) SaveRetrySuccess(ctx context.Context, in SaveResultsInput) error {
	p, err := a.loadProject(ctx, in.ProjectID)
	if err != nil {
		return err
	}

	artifacts := map[domain.TaskName]datatypes.JSON{}
	clear := []string{}
	for _, o := range in.Outcomes {
		artifacts[o.Task] = o.Artifact
		clear = append(clear, string(o.Task))
	}
	if err := a.Projects.SaveArtifacts(a.dbc(ctx), in.ProjectID, artifacts); err != nil {
		return err
	}
	if err := a.Projects.MergeJobErrors(a.dbc(ctx), in.ProjectID, nil, clear); err != nil {
		return err
	}

	if a.Notify != nil {
		for _, o := range in.Outcomes {
			a.Notify.TaskSettled(p.OwnerUserID, in.ProjectID, o.Task, "")
		}
	}
	return nil
}

func (a *Activities) RecordTaskError(ctx context.Context, in RecordTaskErrorInput) error {
	p, err := a.loadProject(ctx, in.ProjectID)
	if err != nil {
		return err
	}
	if err := a.Projects.MergeJobErrors(a.dbc(ctx), in.ProjectID, map[string]string{
		string(in.Task): in.Message,
	}, nil); err != nil {
		return err
	}
	if a.Notify != nil {
		a.Notify.TaskSettled(p.OwnerUserID, in.ProjectID, in.Task, in.Message)
	}
	return nil
}

// resolveAudioURL turns the stored audio reference into something the
// transcription provider can fetch. Absolute references pass through; bare
// object keys resolve against the audio bucket.
func (a *Activities) resolveAudioURL(p *domain.Project) (string, error) {
	ref := strings.TrimSpace(p.AudioRef)
	if ref == "" {
		return "", faults.Validationf("transcription", "project %s has no audio reference", p.ID)
	}
	if strings.HasPrefix(ref, "gs://") || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if a.Store == nil {
		return "", faults.Validationf("transcription", "audio ref %q is an object key but no audio store is configured", ref)
	}
	if g, ok := a.Transcriber.(interface{ PrefersGCSURI() bool }); ok && g.PrefersGCSURI() {
		return a.Store.GCSURI(ref), nil
	}
	u, err := a.Store.SignedURL(ref, 2*time.Hour)
	if err != nil {
		return "", faults.Network("transcription", err)
	}
	return u, nil
}

func taskErrorMessage(o TaskOutcome) string {
	msg := strings.TrimSpace(o.ErrorMessage)
	if msg == "" {
		msg = "task failed"
	}
	if o.ErrorKind != "" && !strings.HasPrefix(msg, o.ErrorKind) {
		return o.ErrorKind + ": " + msg
	}
	return msg
}

func startHeartbeat(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(10 * time.Second)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-tick.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() { close(done) }
}
