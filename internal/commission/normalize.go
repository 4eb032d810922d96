package commission

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

// Key pairs of the two shapes the embedded space commission document has used.
const (
	currentTypeKey  = "commissionType"
	currentValueKey = "commissionValue"
	legacyTypeKey   = "type"
	legacyValueKey  = "value"
)

// NormalizeSpaceCommission decodes the commission document embedded on a space
// into canonical Terms. It accepts the current {commissionType, commissionValue}
// shape and the legacy {type, value} shape; anything else yields nil, which
// means "no space override".
func NormalizeSpaceCommission(raw json.RawMessage) *Terms {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil
	}

	typeKey, valueKey := currentTypeKey, currentValueKey
	if _, ok := doc[currentTypeKey]; !ok {
		if _, legacy := doc[legacyTypeKey]; !legacy {
			return nil
		}
		typeKey, valueKey = legacyTypeKey, legacyValueKey
	}

	var rawType string
	if err := json.Unmarshal(doc[typeKey], &rawType); err != nil {
		return nil
	}
	commissionType, err := enums.ParseCommissionType(rawType)
	if err != nil {
		return nil
	}

	value, present, ok := decodeAmount(doc[valueKey])
	if !ok {
		return nil
	}
	if !present && commissionType != enums.CommissionTypePlan {
		return nil
	}
	return &Terms{Type: commissionType, Value: value}
}

// NewTerms builds Terms from already-typed storage columns, rejecting
// combinations the resolver cannot use.
func NewTerms(commissionType enums.CommissionType, value decimal.Decimal) *Terms {
	if !commissionType.IsValid() || value.IsNegative() {
		return nil
	}
	return &Terms{Type: commissionType, Value: value}
}

// decodeAmount accepts JSON numbers and numeric strings. present is false for
// a missing or null value; ok is false for anything unparsable or negative.
func decodeAmount(raw json.RawMessage) (value decimal.Decimal, present bool, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, false, true
	}

	var text string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return decimal.Zero, false, false
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return decimal.Zero, false, true
		}
	} else {
		text = string(trimmed)
	}

	parsed, err := decimal.NewFromString(text)
	if err != nil || parsed.IsNegative() {
		return decimal.Zero, false, false
	}
	return parsed, true, true
}
