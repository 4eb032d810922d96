package commission

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

// Input is everything the resolver needs for one transaction. Callers load it
// from a single consistent snapshot; the resolver performs no I/O.
type Input struct {
	// TransactionTotal is the charged amount in major units.
	TransactionTotal decimal.Decimal
	// Global falls back to DefaultGlobalTerms when nil.
	Global *GlobalTerms
	// GlobalValueOverride replaces Global.Value when the global tier wins.
	// The Stripe rail sets it from the configured Stripe commission rate.
	GlobalValueOverride *decimal.Decimal
	// Space is the space-level override, already normalized.
	Space *Terms
	// Plan is the plan-level override; consulted only when plan commission is enabled.
	Plan *Terms
	// PlanPrice is the plan list price used by CommissionTypePlan.
	PlanPrice *decimal.Decimal
}

// Decision is the outcome of commission resolution, suitable for audit logs
// and for persisting next to the payment record.
type Decision struct {
	Source           enums.CommissionSource `json:"source"`
	Type             enums.CommissionType   `json:"commission_type"`
	Value            decimal.Decimal        `json:"commission_value"`
	TransactionTotal decimal.Decimal        `json:"transaction_total"`
	CommissionAmount decimal.Decimal        `json:"commission_amount"`
	SpaceAmount      decimal.Decimal        `json:"space_amount"`
	// Clamped is set when the raw commission fell outside [0, total].
	Clamped bool `json:"clamped"`
}

// Resolve picks exactly one tier (space > plan > global) and computes the
// commission and the space's net amount. It never fails; missing inputs fall
// through the precedence chain.
func Resolve(in Input) Decision {
	source, terms := selectTier(in)

	decision := Decision{
		Source:           source,
		Type:             terms.Type,
		Value:            terms.Value,
		TransactionTotal: in.TransactionTotal,
		CommissionAmount: decimal.Zero,
		SpaceAmount:      decimal.Zero,
	}

	total := in.TransactionTotal
	if !total.IsPositive() {
		return decision
	}

	raw := rawAmount(terms, total, in.PlanPrice)
	amount := raw
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(total) {
		amount = total
	}

	decision.CommissionAmount = amount
	decision.SpaceAmount = total.Sub(amount)
	decision.Clamped = !amount.Equal(raw)
	return decision
}

func selectTier(in Input) (enums.CommissionSource, Terms) {
	if in.Space.usable() {
		return enums.CommissionSourceSpace, *in.Space
	}

	global := DefaultGlobalTerms()
	if in.Global != nil {
		global = *in.Global
	}

	if global.EnablePlanCommission && in.Plan.usable() {
		return enums.CommissionSourcePlan, *in.Plan
	}

	terms := Terms{Type: global.Type, Value: global.Value}
	if !terms.Type.IsValid() {
		defaults := DefaultGlobalTerms()
		terms = Terms{Type: defaults.Type, Value: defaults.Value}
	}
	if in.GlobalValueOverride != nil {
		terms.Value = *in.GlobalValueOverride
	}
	return enums.CommissionSourceGlobal, terms
}

func rawAmount(terms Terms, total decimal.Decimal, planPrice *decimal.Decimal) decimal.Decimal {
	switch terms.Type {
	case enums.CommissionTypePercentage:
		// decimal.Round is half away from zero, which is half-up for positive totals.
		return total.Mul(terms.Value).Div(hundred).Round(2)
	case enums.CommissionTypeFixed:
		return terms.Value
	case enums.CommissionTypePlan:
		if planPrice == nil {
			return decimal.Zero
		}
		return *planPrice
	default:
		return decimal.Zero
	}
}
