package pipeline

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
)

const (
	ProcessWorkflowName   = "project_process"
	RetryTaskWorkflowName = "project_retry_task"

	ActivityMarkProcessing      = "project_mark_processing"
	ActivityTranscribe          = "project_transcribe"
	ActivityResolveEntitlements = "project_resolve_entitlements"
	ActivityGenerateTask        = "project_generate_task"
	ActivitySaveResults         = "project_save_results"
	ActivityCompleteProject     = "project_complete"
	ActivityMarkFailed          = "project_mark_failed"
	ActivityPrepareRetry        = "project_prepare_retry"
	ActivitySaveRetrySuccess    = "project_save_retry_success"
	ActivityRecordTaskError     = "project_record_task_error"
)

// ProcessInput starts the full pipeline for a freshly uploaded project. Tier
// is resolved inside the run, never carried in.
type ProcessInput struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// RetryTaskInput re-runs one generation task out of band.
type RetryTaskInput struct {
	ProjectID uuid.UUID       `json:"project_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Task      domain.TaskName `json:"task"`
}

type TranscribeResult struct {
	TranscriptID uuid.UUID `json:"transcript_id"`
	HasChapters  bool      `json:"has_chapters"`
}

type EntitlementResult struct {
	Tier  string            `json:"tier"`
	Tasks []domain.TaskName `json:"tasks"`
}

// TaskOutcome is one settled branch of the fan-out. Exactly one of Artifact
// or ErrorKind/ErrorMessage is populated.
type TaskOutcome struct {
	Task         domain.TaskName `json:"task"`
	Artifact     datatypes.JSON  `json:"artifact,omitempty"`
	ErrorKind    string          `json:"error_kind,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

func (o TaskOutcome) Succeeded() bool { return o.ErrorKind == "" }

type GenerateTaskInput struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Task      domain.TaskName `json:"task"`
}

type SaveResultsInput struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Outcomes  []TaskOutcome `json:"outcomes"`
}

type MarkFailedInput struct {
	ProjectID uuid.UUID `json:"project_id"`
	Step      string    `json:"step"`
	Message   string    `json:"message"`
}

// RetryContext is what PrepareRetry resolves before the task re-runs: fresh
// tier plus entitlement for the requested task.
type RetryContext struct {
	Tier     string `json:"tier"`
	Entitled bool   `json:"entitled"`
}

type RecordTaskErrorInput struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Task      domain.TaskName `json:"task"`
	Message   string          `json:"message"`
}
