package projects

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

// ProjectRepo is the persistence gateway for Project rows. Every mutation is
// a whole-field, single-statement patch so concurrent readers always observe
// a consistent document; the workflow is the only writer.
type ProjectRepo interface {
	Create(dbc dbctx.Context, p *domain.Project) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Project, error)
	PatchFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SetJobStatus(dbc dbctx.Context, id uuid.UUID, js domain.JobStatus) error
	SaveArtifacts(dbc dbctx.Context, id uuid.UUID, artifacts map[domain.TaskName]datatypes.JSON) error
	MergeJobErrors(dbc dbctx.Context, id uuid.UUID, set map[string]string, clear []string) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{
		db:  db,
		log: baseLog.With("repo", "ProjectRepo"),
	}
}

func (r *projectRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *projectRepo) Create(dbc dbctx.Context, p *domain.Project) error {
	if p == nil {
		return nil
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = domain.ProjectUploaded
	}
	return r.tx(dbc).WithContext(dbc.Ctx).Create(p).Error
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Project, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var p domain.Project
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) PatchFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *projectRepo) SetJobStatus(dbc dbctx.Context, id uuid.UUID, js domain.JobStatus) error {
	return r.PatchFields(dbc, id, map[string]interface{}{
		"job_status": datatypes.NewJSONType(js),
	})
}

// SaveArtifacts writes every succeeded artifact of a fan-out as one batched
// atomic patch.
func (r *projectRepo) SaveArtifacts(dbc dbctx.Context, id uuid.UUID, artifacts map[domain.TaskName]datatypes.JSON) error {
	if len(artifacts) == 0 {
		return nil
	}
	updates := map[string]interface{}{}
	for task, payload := range artifacts {
		col := domain.ArtifactColumn(task)
		if col == "" || len(payload) == 0 {
			continue
		}
		updates[col] = payload
	}
	if len(updates) == 0 {
		return nil
	}
	return r.PatchFields(dbc, id, updates)
}

// MergeJobErrors rewrites the job_errors map as a whole value: entries in set
// are added or overwritten, entries in clear are removed. Runs in a
// transaction so the read-modify-write is not subject to lost updates.
func (r *projectRepo) MergeJobErrors(dbc dbctx.Context, id uuid.UUID, set map[string]string, clear []string) error {
	if id == uuid.Nil || (len(set) == 0 && len(clear) == 0) {
		return nil
	}
	return r.tx(dbc).WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var p domain.Project
		if err := txx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		merged := p.JobErrors.Data()
		if merged == nil {
			merged = map[string]string{}
		}
		for k, v := range set {
			merged[k] = v
		}
		for _, k := range clear {
			delete(merged, k)
		}
		return txx.Model(&domain.Project{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"job_errors": datatypes.NewJSONType(merged),
				"updated_at": time.Now().UTC(),
			}).Error
	})
}

func (r *projectRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&domain.Project{}).Error
}
