package commission

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Terms is the canonical commission configuration of a single tier.
// For CommissionTypePlan the Value is ignored.
type Terms struct {
	Type  enums.CommissionType `json:"commission_type"`
	Value decimal.Decimal      `json:"commission_value"`
}

// usable reports whether the terms can win their tier.
func (t *Terms) usable() bool {
	return t != nil && t.Type.IsValid()
}

// GlobalTerms carries the platform-wide default and the plan-tier switch.
type GlobalTerms struct {
	Type                 enums.CommissionType `json:"commission_type"`
	Value                decimal.Decimal      `json:"commission_value"`
	EnablePlanCommission bool                 `json:"enable_plan_commission"`
}

// DefaultGlobalTerms is applied when no global configuration exists.
func DefaultGlobalTerms() GlobalTerms {
	return GlobalTerms{
		Type:  enums.CommissionTypePercentage,
		Value: decimal.NewFromInt(10),
	}
}
