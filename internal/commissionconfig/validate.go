package commissionconfig

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/types"
)

var maxPercentage = decimal.NewFromInt(100)

// fieldError is one rejected field of a commission payload.
type fieldError struct {
	field   string
	message string
}

func (e fieldError) Error() string {
	return e.field + " " + e.message
}

func violation(field, format string, args ...any) error {
	return fieldError{field: field, message: fmt.Sprintf(format, args...)}
}

func validateTerms(field, rawType string, value decimal.Decimal) (enums.CommissionType, error) {
	commissionType, err := enums.ParseCommissionType(rawType)
	if err != nil {
		return "", violation(field+".commission_type", "must be percentage, fixed or plan")
	}
	var errs error
	if value.IsNegative() {
		errs = multierr.Append(errs, violation(field+".commission_value", "must not be negative"))
	}
	if commissionType == enums.CommissionTypePercentage && value.GreaterThan(maxPercentage) {
		errs = multierr.Append(errs, violation(field+".commission_value", "must not exceed 100 for percentage"))
	}
	return commissionType, errs
}

// validationError folds every collected problem into one VALIDATION_ERROR
// whose details list each field violation.
func validationError(errs error) error {
	if errs == nil {
		return nil
	}
	details := types.ValidationDetails{}
	for _, err := range multierr.Errors(errs) {
		var fe fieldError
		if errors.As(err, &fe) {
			details.Add(fe.field, fe.message)
			continue
		}
		details.Add("", err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid commission configuration").
		WithDetails(details)
}

func validateGlobal(input GlobalInput) (enums.CommissionType, error) {
	commissionType, errs := validateTerms("global", input.CommissionType, input.CommissionValue)
	if rate := input.StripeCommissionRate; rate != nil {
		if rate.IsNegative() {
			errs = multierr.Append(errs, violation("global.stripe_commission_rate", "must not be negative"))
		}
		if commissionType == enums.CommissionTypePercentage && rate.GreaterThan(maxPercentage) {
			errs = multierr.Append(errs, violation("global.stripe_commission_rate", "must not exceed 100 for percentage"))
		}
	}
	return commissionType, validationError(errs)
}

func validatePlanRows(rows []PlanCommissionInput) ([]commission.Terms, error) {
	var errs error
	terms := make([]commission.Terms, len(rows))
	seen := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		field := fmt.Sprintf("plans[%d]", i)
		if row.PlanID == uuid.Nil {
			errs = multierr.Append(errs, violation(field+".plan_id", "is required"))
		} else if first, dup := seen[row.PlanID]; dup {
			errs = multierr.Append(errs, violation(field+".plan_id", "duplicates plans[%d]", first))
		} else {
			seen[row.PlanID] = i
		}
		commissionType, err := validateTerms(field, row.CommissionType, row.CommissionValue)
		errs = multierr.Append(errs, err)
		terms[i] = commission.Terms{Type: commissionType, Value: row.CommissionValue}
	}
	return terms, validationError(errs)
}

// validateSpaceRows only inspects rows flagged CustomSplit; the rest are discarded.
func validateSpaceRows(rows []SpaceCommissionInput) ([]SpaceCommissionInput, []commission.Terms, error) {
	var errs error
	kept := make([]SpaceCommissionInput, 0, len(rows))
	terms := make([]commission.Terms, 0, len(rows))
	seen := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		if !row.CustomSplit {
			continue
		}
		field := fmt.Sprintf("spaces[%d]", i)
		if row.SpaceID == uuid.Nil {
			errs = multierr.Append(errs, violation(field+".space_id", "is required"))
		} else if first, dup := seen[row.SpaceID]; dup {
			errs = multierr.Append(errs, violation(field+".space_id", "duplicates spaces[%d]", first))
		} else {
			seen[row.SpaceID] = i
		}
		commissionType, err := validateTerms(field, row.CommissionType, row.CommissionValue)
		errs = multierr.Append(errs, err)
		kept = append(kept, row)
		terms = append(terms, commission.Terms{Type: commissionType, Value: row.CommissionValue})
	}
	return kept, terms, validationError(errs)
}
