package subscriptions

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

type SubscriptionRepo interface {
	// GetByUser reads the current subscription row. Returns nil when the
	// user has none (treated as the free tier). Never cached: entitlement
	// resolution depends on reading this fresh per invocation.
	GetByUser(dbc dbctx.Context, userID uuid.UUID) (*domain.Subscription, error)
	Upsert(dbc dbctx.Context, userID uuid.UUID, tier string) error
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{
		db:  db,
		log: baseLog.With("repo", "SubscriptionRepo"),
	}
}

func (r *subscriptionRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *subscriptionRepo) GetByUser(dbc dbctx.Context, userID uuid.UUID) (*domain.Subscription, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var sub domain.Subscription
	err := r.tx(dbc).WithContext(dbc.Ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, tier string) error {
	if userID == uuid.Nil || tier == "" {
		return nil
	}
	now := time.Now().UTC()
	sub := domain.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		Tier:      tier,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"tier": tier, "updated_at": now}),
		}).
		Create(&sub).Error
}
