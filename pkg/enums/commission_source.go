package enums

import "fmt"

// CommissionSource names the configuration tier that produced a decision.
type CommissionSource string

const (
	CommissionSourceSpace  CommissionSource = "space"
	CommissionSourcePlan   CommissionSource = "plan"
	CommissionSourceGlobal CommissionSource = "global"
)

// String implements fmt.Stringer.
func (c CommissionSource) String() string {
	return string(c)
}

// ParseCommissionSource converts a stored tier name into a CommissionSource.
func ParseCommissionSource(value string) (CommissionSource, error) {
	switch source := CommissionSource(value); source {
	case CommissionSourceSpace, CommissionSourcePlan, CommissionSourceGlobal:
		return source, nil
	}
	return "", fmt.Errorf("invalid commission source %q", value)
}
