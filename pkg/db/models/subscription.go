package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription links a space to the plan it pays for through Stripe Billing.
type Subscription struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SpaceID              uuid.UUID `gorm:"column:space_id;type:uuid;not null;index"`
	PlanID               uuid.UUID `gorm:"column:plan_id;type:uuid;not null"`
	StripeSubscriptionID string    `gorm:"column:stripe_subscription_id;not null;uniqueIndex"`
	Status               string    `gorm:"column:status;not null;default:'active'"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
