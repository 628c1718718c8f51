package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/projects"
	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/transcripts"
	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/faults"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/gcp"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx"
	"github.com/zitaharry/ai-podcast-saas/internal/temporalx/pipeline"
)

// CreateProjectInput carries either an audio stream to upload or an AudioRef
// pointing at audio hosted elsewhere. Exactly one must be set.
type CreateProjectInput struct {
	FileName    string
	ContentType string
	FileSize    int64
	Format      string

	Audio    io.Reader
	AudioRef string
}

type ProjectService struct {
	log      *logger.Logger
	projects projects.ProjectRepo
	trans    transcripts.TranscriptRepo
	store    gcp.AudioStore
	temporal temporalsdkclient.Client
	cfg      temporalx.Config
}

func NewProjectService(
	baseLog *logger.Logger,
	projectRepo projects.ProjectRepo,
	transcriptRepo transcripts.TranscriptRepo,
	store gcp.AudioStore,
	tc temporalsdkclient.Client,
	cfg temporalx.Config,
) *ProjectService {
	return &ProjectService{
		log:      baseLog.With("service", "ProjectService"),
		projects: projectRepo,
		trans:    transcriptRepo,
		store:    store,
		temporal: tc,
		cfg:      cfg,
	}
}

// CreateProject persists the project row and, when a stream is provided,
// uploads the audio to the bucket first so the row never references a key
// that does not exist.
func (s *ProjectService) CreateProject(ctx context.Context, userID uuid.UUID, in CreateProjectInput) (*domain.Project, error) {
	if userID == uuid.Nil {
		return nil, faults.Validationf("createProject", "missing user id")
	}
	if in.Audio == nil && strings.TrimSpace(in.AudioRef) == "" {
		return nil, faults.Validationf("createProject", "either an audio stream or an audio reference is required")
	}
	if in.Audio != nil && strings.TrimSpace(in.AudioRef) != "" {
		return nil, faults.Validationf("createProject", "audio stream and audio reference are mutually exclusive")
	}

	projectID := uuid.New()
	audioRef := strings.TrimSpace(in.AudioRef)
	if in.Audio != nil {
		if s.store == nil {
			return nil, faults.Preconditionf("createProject", "audio uploads require a configured bucket")
		}
		key := audioObjectKey(userID, projectID, in.FileName)
		if err := s.store.Upload(ctx, key, in.Audio, in.ContentType); err != nil {
			return nil, fmt.Errorf("upload audio: %w", err)
		}
		audioRef = key
	}

	p := &domain.Project{
		ID:          projectID,
		OwnerUserID: userID,
		AudioRef:    audioRef,
		FileName:    strings.TrimSpace(in.FileName),
		FileSize:    in.FileSize,
		Format:      strings.TrimSpace(in.Format),
		Status:      domain.ProjectUploaded,
	}
	if err := s.projects.Create(dbctx.Context{Ctx: ctx}, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.log.Info("Project created", "project_id", p.ID, "user_id", userID, "file_name", p.FileName)
	return p, nil
}

// StartProcessing launches the full pipeline workflow for an owned project.
// The workflow ID is derived from the project so only one run can be in
// flight at a time; finished runs may be started again.
func (s *ProjectService) StartProcessing(ctx context.Context, userID, projectID uuid.UUID) (string, error) {
	if s.temporal == nil {
		return "", faults.Preconditionf("process", "processing pipeline is not configured")
	}
	p, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	if p.Status == domain.ProjectProcessing {
		return "", faults.Validationf("process", "project %s is already processing", projectID)
	}

	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    "process-" + projectID.String(),
		TaskQueue:             s.cfg.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}
	run, err := s.temporal.ExecuteWorkflow(ctx, opts, pipeline.ProcessWorkflowName, pipeline.ProcessInput{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &already) {
			return "", faults.Validationf("process", "project %s is already processing", projectID)
		}
		return "", fmt.Errorf("start processing workflow: %w", err)
	}

	s.log.Info("Processing started", "project_id", projectID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return run.GetID(), nil
}

func (s *ProjectService) GetProject(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	return s.ownedProject(ctx, userID, projectID)
}

func (s *ProjectService) GetTranscript(ctx context.Context, userID, projectID uuid.UUID) (*domain.Transcript, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	t, err := s.trans.GetByProject(dbctx.Context{Ctx: ctx}, projectID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	if t == nil {
		return nil, faults.MissingTranscript(projectID.String())
	}
	return t, nil
}

// DeleteProject soft-deletes the row and removes the bucket object when the
// audio lives in our bucket. External references are left alone.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	p, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if err := s.projects.SoftDelete(dbctx.Context{Ctx: ctx}, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if s.store != nil && !strings.Contains(p.AudioRef, "://") {
		if err := s.store.Delete(ctx, p.AudioRef); err != nil {
			s.log.Warn("Audio object cleanup failed", "project_id", projectID, "key", p.AudioRef, "error", err)
		}
	}
	s.log.Info("Project deleted", "project_id", projectID, "user_id", userID)
	return nil
}

func (s *ProjectService) ownedProject(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
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

func audioObjectKey(userID, projectID uuid.UUID, fileName string) string {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		name = "audio"
	}
	return fmt.Sprintf("audio/%s/%s/%s", userID, projectID, name)
}
