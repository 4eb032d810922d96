package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/angelmondragon/spacerent-backend/pkg/db/types"
)

// Space is a rentable venue owned by a marketplace owner.
type Space struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Nome    string    `gorm:"column:nome;not null"`
	// Comissao is the embedded commission document, in either the legacy
	// {type, value} or the current {commissionType, commissionValue} shape.
	Comissao               dbtypes.JSONDocument `gorm:"column:comissao;type:jsonb"`
	OpenPixWalletID        *string              `gorm:"column:open_pix_wallet_id"`
	StripeConnectAccountID *string              `gorm:"column:stripe_connect_account_id"`
	CreatedAt              time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
