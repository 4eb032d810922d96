package commissionconfig

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

// GlobalSettings is the effective global configuration. Configured is false
// when no row exists and the defaults are in effect.
type GlobalSettings struct {
	CommissionType       enums.CommissionType `json:"commission_type"`
	CommissionValue      decimal.Decimal      `json:"commission_value"`
	EnablePlanCommission bool                 `json:"enable_plan_commission"`
	OpenPixEnabled       bool                 `json:"open_pix_enabled"`
	OpenPixWalletID      *string              `json:"open_pix_wallet_id,omitempty"`
	StripeEnabled        bool                 `json:"stripe_enabled"`
	StripeAccountID      *string              `json:"stripe_account_id,omitempty"`
	StripeCommissionRate *decimal.Decimal     `json:"stripe_commission_rate,omitempty"`
	Configured           bool                 `json:"configured"`
	UpdatedAt            *time.Time           `json:"updated_at,omitempty"`
}

// Terms projects the settings onto the resolver's global tier.
func (g GlobalSettings) Terms() commission.GlobalTerms {
	return commission.GlobalTerms{
		Type:                 g.CommissionType,
		Value:                g.CommissionValue,
		EnablePlanCommission: g.EnablePlanCommission,
	}
}

func defaultSettings(defaults commission.GlobalTerms) GlobalSettings {
	return GlobalSettings{
		CommissionType:       defaults.Type,
		CommissionValue:      defaults.Value,
		EnablePlanCommission: defaults.EnablePlanCommission,
	}
}

func settingsFromModel(cfg *models.CommissionConfig) GlobalSettings {
	updatedAt := cfg.UpdatedAt
	return GlobalSettings{
		CommissionType:       cfg.CommissionType,
		CommissionValue:      cfg.CommissionValue,
		EnablePlanCommission: cfg.EnablePlanCommission,
		OpenPixEnabled:       cfg.OpenPixEnabled,
		OpenPixWalletID:      cfg.OpenPixWalletID,
		StripeEnabled:        cfg.StripeEnabled,
		StripeAccountID:      cfg.StripeAccountID,
		StripeCommissionRate: cfg.StripeCommissionRate,
		Configured:           true,
		UpdatedAt:            &updatedAt,
	}
}

// GlobalInput is the admin payload for the global configuration.
type GlobalInput struct {
	CommissionType       string           `json:"commission_type" validate:"required,commission_type"`
	CommissionValue      decimal.Decimal  `json:"commission_value"`
	EnablePlanCommission bool             `json:"enable_plan_commission"`
	OpenPixEnabled       bool             `json:"open_pix_enabled"`
	OpenPixWalletID      *string          `json:"open_pix_wallet_id"`
	StripeEnabled        bool             `json:"stripe_enabled"`
	StripeAccountID      *string          `json:"stripe_account_id"`
	StripeCommissionRate *decimal.Decimal `json:"stripe_commission_rate"`
}

// PlanCommissionInput is one row of the plan override bulk replace.
type PlanCommissionInput struct {
	PlanID          uuid.UUID       `json:"plan_id" validate:"required"`
	CommissionType  string          `json:"commission_type" validate:"required,commission_type"`
	CommissionValue decimal.Decimal `json:"commission_value"`
}

// SpaceCommissionInput is one row of the space override bulk replace. Rows
// without CustomSplit are dropped.
type SpaceCommissionInput struct {
	SpaceID         uuid.UUID       `json:"space_id" validate:"required"`
	CommissionType  string          `json:"commission_type"`
	CommissionValue decimal.Decimal `json:"commission_value"`
	CustomSplit     bool            `json:"custom_split"`
}

// OverrideView is the API shape of a plan or space override.
type OverrideView struct {
	ID              uuid.UUID            `json:"id"`
	PlanID          *uuid.UUID           `json:"plan_id,omitempty"`
	SpaceID         *uuid.UUID           `json:"space_id,omitempty"`
	CommissionType  enums.CommissionType `json:"commission_type"`
	CommissionValue decimal.Decimal      `json:"commission_value"`
	CreatedAt       time.Time            `json:"created_at"`
}

// PlanViews maps plan overrides to their API shape.
func PlanViews(rows []models.PlanCommission) []OverrideView {
	views := make([]OverrideView, 0, len(rows))
	for _, row := range rows {
		planID := row.PlanID
		views = append(views, OverrideView{
			ID:              row.ID,
			PlanID:          &planID,
			CommissionType:  row.CommissionType,
			CommissionValue: row.CommissionValue,
			CreatedAt:       row.CreatedAt,
		})
	}
	return views
}

// SpaceViews maps space overrides to their API shape.
func SpaceViews(rows []models.SpaceCommission) []OverrideView {
	views := make([]OverrideView, 0, len(rows))
	for _, row := range rows {
		spaceID := row.SpaceID
		views = append(views, OverrideView{
			ID:              row.ID,
			SpaceID:         &spaceID,
			CommissionType:  row.CommissionType,
			CommissionValue: row.CommissionValue,
			CreatedAt:       row.CreatedAt,
		})
	}
	return views
}

// Overview bundles every commission setting for the admin screen.
type Overview struct {
	Global GlobalSettings `json:"global"`
	Plans  []OverrideView `json:"plans"`
	Spaces []OverrideView `json:"spaces"`
}
