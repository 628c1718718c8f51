package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProjectUploaded   = "uploaded"
	ProjectProcessing = "processing"
	ProjectCompleted  = "completed"
	ProjectFailed     = "failed"
)

const (
	PhasePending   = "pending"
	PhaseRunning   = "running"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
)

// JobStatus tracks the two independently observable phases of a processing
// run. It is always written as a whole value.
type JobStatus struct {
	Transcription     string `json:"transcription"`
	ContentGeneration string `json:"contentGeneration"`
}

func NewJobStatus() JobStatus {
	return JobStatus{Transcription: PhasePending, ContentGeneration: PhasePending}
}

// ProjectError is the terminal, project-level error detail.
type ProjectError struct {
	Message string    `json:"message"`
	Step    string    `json:"step"`
	At      time.Time `json:"at"`
	Detail  string    `json:"detail,omitempty"`
}

type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`

	AudioRef     string  `gorm:"column:audio_ref;not null" json:"audio_ref"`
	FileName     string  `gorm:"column:file_name" json:"file_name,omitempty"`
	FileSize     int64   `gorm:"column:file_size" json:"file_size,omitempty"`
	DurationSecs float64 `gorm:"column:duration_secs" json:"duration_secs,omitempty"`
	Format       string  `gorm:"column:format" json:"format,omitempty"`

	Status    string                                `gorm:"column:status;not null;index" json:"status"`
	JobStatus datatypes.JSONType[JobStatus]         `gorm:"column:job_status;type:jsonb" json:"job_status"`
	Error     *datatypes.JSONType[ProjectError]     `gorm:"column:error;type:jsonb" json:"error,omitempty"`
	JobErrors datatypes.JSONType[map[string]string] `gorm:"column:job_errors;type:jsonb" json:"job_errors"`

	// Generated artifacts, one jsonb column per task. Null means absent
	// (not entitled, not yet run, or failed; job_errors disambiguates).
	Summary           datatypes.JSON `gorm:"column:summary;type:jsonb" json:"summary,omitempty"`
	SocialPosts       datatypes.JSON `gorm:"column:social_posts;type:jsonb" json:"social_posts,omitempty"`
	Titles            datatypes.JSON `gorm:"column:titles;type:jsonb" json:"titles,omitempty"`
	Hashtags          datatypes.JSON `gorm:"column:hashtags;type:jsonb" json:"hashtags,omitempty"`
	KeyMoments        datatypes.JSON `gorm:"column:key_moments;type:jsonb" json:"key_moments,omitempty"`
	YouTubeTimestamps datatypes.JSON `gorm:"column:youtube_timestamps;type:jsonb" json:"youtube_timestamps,omitempty"`

	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

// ArtifactColumn maps a task name to its project column. The repo uses it to
// assemble one batched multi-column patch for a fan-out's results.
func ArtifactColumn(task TaskName) string {
	switch task {
	case TaskSummary:
		return "summary"
	case TaskSocialPosts:
		return "social_posts"
	case TaskTitles:
		return "titles"
	case TaskHashtags:
		return "hashtags"
	case TaskKeyMoments:
		return "key_moments"
	case TaskYouTubeTimestamps:
		return "youtube_timestamps"
	default:
		return ""
	}
}

// Artifact returns the stored payload for task, or nil when absent.
func (p *Project) Artifact(task TaskName) datatypes.JSON {
	if p == nil {
		return nil
	}
	switch task {
	case TaskSummary:
		return p.Summary
	case TaskSocialPosts:
		return p.SocialPosts
	case TaskTitles:
		return p.Titles
	case TaskHashtags:
		return p.Hashtags
	case TaskKeyMoments:
		return p.KeyMoments
	case TaskYouTubeTimestamps:
		return p.YouTubeTimestamps
	default:
		return nil
	}
}

func (p *Project) HasArtifact(task TaskName) bool {
	raw := p.Artifact(task)
	return len(raw) > 0 && string(raw) != "null"
}
