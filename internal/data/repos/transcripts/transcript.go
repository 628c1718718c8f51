package transcripts

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

type TranscriptRepo interface {
	Create(dbc dbctx.Context, t *domain.Transcript) error
	GetByProject(dbc dbctx.Context, projectID uuid.UUID) (*domain.Transcript, error)
}

type transcriptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptRepo {
	return &transcriptRepo{
		db:  db,
		log: baseLog.With("repo", "TranscriptRepo"),
	}
}

func (r *transcriptRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *transcriptRepo) Create(dbc dbctx.Context, t *domain.Transcript) error {
	if t == nil {
		return nil
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return r.tx(dbc).WithContext(dbc.Ctx).Create(t).Error
}

func (r *transcriptRepo) GetByProject(dbc dbctx.Context, projectID uuid.UUID) (*domain.Transcript, error) {
	if projectID == uuid.Nil {
		return nil, nil
	}
	var t domain.Transcript
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("project_id = ?", projectID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
