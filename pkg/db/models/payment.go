package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

// Payment records a gateway charge together with the commission applied to it.
type Payment struct {
	ID                 uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Kind               enums.PaymentKind      `gorm:"column:kind;not null"`
	OrderID            *uuid.UUID             `gorm:"column:order_id;type:uuid;index"`
	SubscriptionID     *uuid.UUID             `gorm:"column:subscription_id;type:uuid;index"`
	SpaceID            uuid.UUID              `gorm:"column:space_id;type:uuid;not null;index"`
	Gateway            enums.Gateway          `gorm:"column:gateway;not null"`
	GatewayReference   string                 `gorm:"column:gateway_reference;not null;uniqueIndex"`
	Status             enums.PaymentStatus    `gorm:"column:status;not null;default:'pending'"`
	Valor              decimal.Decimal        `gorm:"column:valor;type:numeric(12,2);not null"`
	ValorLiquido       decimal.Decimal        `gorm:"column:valor_liquido;type:numeric(12,2);not null"`
	ComissaoPlataforma decimal.Decimal        `gorm:"column:comissao_plataforma;type:numeric(12,2);not null"`
	CommissionSource   enums.CommissionSource `gorm:"column:commission_source;not null"`
	CommissionType     enums.CommissionType   `gorm:"column:commission_type;not null"`
	CommissionValue    decimal.Decimal        `gorm:"column:commission_value;type:numeric(12,4);not null"`
	SplitApplied       bool                   `gorm:"column:split_applied;not null;default:false"`
	PaymentCode        *string                `gorm:"column:payment_code"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
