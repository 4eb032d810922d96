package split

import (
	"strings"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/pkg/openpix"
)

// OpenPix converts a decision into the two-entry OpenPix splits array: the
// space wallet first, the platform wallet second. The platform entry is the
// remainder of the rounded total so both values always sum to it. It returns
// nil when OpenPix is disabled or either wallet is missing.
func OpenPix(decision commission.Decision, spaceWalletID, platformWalletID string, enabled bool) []openpix.Split {
	spaceWallet := strings.TrimSpace(spaceWalletID)
	platformWallet := strings.TrimSpace(platformWalletID)
	if !enabled || spaceWallet == "" || platformWallet == "" {
		return nil
	}
	total := ToMinorUnits(decision.TransactionTotal)
	if total <= 0 {
		return nil
	}

	spaceValue := ToMinorUnits(decision.SpaceAmount)
	if spaceValue > total {
		spaceValue = total
	}
	if spaceValue < 0 {
		spaceValue = 0
	}
	return []openpix.Split{
		{WalletID: spaceWallet, Value: spaceValue},
		{WalletID: platformWallet, Value: total - spaceValue},
	}
}
