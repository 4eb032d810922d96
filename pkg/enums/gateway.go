package enums

import (
	"fmt"
	"strings"
)

// Gateway identifies the payment rail a charge is routed through.
type Gateway string

const (
	GatewayStripe  Gateway = "stripe"
	GatewayOpenPix Gateway = "openpix"
)

var validGateways = []Gateway{
	GatewayStripe,
	GatewayOpenPix,
}

// String implements fmt.Stringer.
func (g Gateway) String() string {
	return string(g)
}

// IsValid reports whether the value is a known Gateway.
func (g Gateway) IsValid() bool {
	for _, candidate := range validGateways {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGateway converts raw input into a Gateway.
func ParseGateway(value string) (Gateway, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validGateways {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway %q", value)
}
