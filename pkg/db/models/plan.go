package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is a subscription plan a space owner can sign up for.
type Plan struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Nome      string          `gorm:"column:nome;not null"`
	Preco     decimal.Decimal `gorm:"column:preco;type:numeric(12,2);not null"`
	Ativo     bool            `gorm:"column:ativo;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
