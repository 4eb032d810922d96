package enums

import (
	"fmt"
	"strings"
)

// CommissionType selects how a commission value is interpreted.
type CommissionType string

const (
	// CommissionTypePercentage treats the value as a rate over the transaction total.
	CommissionTypePercentage CommissionType = "percentage"
	// CommissionTypeFixed treats the value as an absolute amount in major units.
	CommissionTypeFixed CommissionType = "fixed"
	// CommissionTypePlan charges the plan list price as the commission.
	CommissionTypePlan CommissionType = "plan"
)

var validCommissionTypes = []CommissionType{
	CommissionTypePercentage,
	CommissionTypeFixed,
	CommissionTypePlan,
}

// String implements fmt.Stringer.
func (c CommissionType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CommissionType.
func (c CommissionType) IsValid() bool {
	for _, candidate := range validCommissionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCommissionType converts raw input into a CommissionType.
func ParseCommissionType(value string) (CommissionType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validCommissionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid commission type %q", value)
}
