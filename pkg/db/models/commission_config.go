package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

// GlobalCommissionType is the discriminator of the singleton global row.
const GlobalCommissionType = "global"

// CommissionConfig stores the platform-wide commission and gateway settings.
// At most one row with Type == "global" exists.
type CommissionConfig struct {
	ID                   uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type                 string               `gorm:"column:type;not null;uniqueIndex"`
	CommissionType       enums.CommissionType `gorm:"column:commission_type;not null"`
	CommissionValue      decimal.Decimal      `gorm:"column:commission_value;type:numeric(12,4);not null"`
	EnablePlanCommission bool                 `gorm:"column:enable_plan_commission;not null;default:false"`
	OpenPixEnabled       bool                 `gorm:"column:open_pix_enabled;not null;default:false"`
	OpenPixWalletID      *string              `gorm:"column:open_pix_wallet_id"`
	StripeEnabled        bool                 `gorm:"column:stripe_enabled;not null;default:false"`
	StripeAccountID      *string              `gorm:"column:stripe_account_id"`
	StripeCommissionRate *decimal.Decimal     `gorm:"column:stripe_commission_rate;type:numeric(12,4)"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// PlanCommission overrides the global terms for subscribers of one plan.
type PlanCommission struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PlanID          uuid.UUID            `gorm:"column:plan_id;type:uuid;not null;uniqueIndex"`
	CommissionType  enums.CommissionType `gorm:"column:commission_type;not null"`
	CommissionValue decimal.Decimal      `gorm:"column:commission_value;type:numeric(12,4);not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// SpaceCommission overrides every other tier for one space.
type SpaceCommission struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SpaceID         uuid.UUID            `gorm:"column:space_id;type:uuid;not null;uniqueIndex"`
	CommissionType  enums.CommissionType `gorm:"column:commission_type;not null"`
	CommissionValue decimal.Decimal      `gorm:"column:commission_value;type:numeric(12,4);not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
}
