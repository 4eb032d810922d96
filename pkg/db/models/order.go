package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses written by the booking flow.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Order is a booking awaiting payment.
type Order struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	SpaceID    uuid.UUID       `gorm:"column:space_id;type:uuid;not null;index"`
	PlanID     *uuid.UUID      `gorm:"column:plan_id;type:uuid"`
	Valor      decimal.Decimal `gorm:"column:valor;type:numeric(12,2);not null"`
	Status     string          `gorm:"column:status;not null;default:'pending'"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
