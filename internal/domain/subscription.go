package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is the locally synced view of the external billing provider's
// state. Entitlement resolution reads it fresh on every invocation so plan
// upgrades take effect immediately.
type Subscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Tier      string    `gorm:"column:tier;not null" json:"tier"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription" }
