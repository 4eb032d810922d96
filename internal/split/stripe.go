package split

import (
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
)

// StripeSplit is the Stripe Connect destination-charge shape of a decision.
// The zero value means "no split": the platform keeps the full charge.
type StripeSplit struct {
	Destination          string `json:"destination,omitempty"`
	ApplicationFeeAmount int64  `json:"application_fee_amount,omitempty"`
	// TransferAmount is what Stripe moves to the connected account. It is
	// informational; Stripe derives it from the fee.
	TransferAmount int64 `json:"transfer_amount,omitempty"`
}

// Applied reports whether the split carries a destination.
func (s StripeSplit) Applied() bool {
	return s.Destination != ""
}

// Stripe converts a decision into Stripe Connect split fields. It returns the
// zero StripeSplit when Stripe is disabled or the space has no connected account.
func Stripe(decision commission.Decision, connectAccountID string, enabled bool) StripeSplit {
	destination := strings.TrimSpace(connectAccountID)
	if !enabled || destination == "" {
		return StripeSplit{}
	}
	total := ToMinorUnits(decision.TransactionTotal)
	if total <= 0 {
		return StripeSplit{}
	}

	fee := ToMinorUnits(decision.CommissionAmount)
	if fee > total {
		fee = total
	}
	if fee < 0 {
		fee = 0
	}
	return StripeSplit{
		Destination:          destination,
		ApplicationFeeAmount: fee,
		TransferAmount:       total - fee,
	}
}

// ApplyToPaymentIntent attaches the split to a PaymentIntent create request.
func (s StripeSplit) ApplyToPaymentIntent(params *stripe.PaymentIntentParams) {
	if params == nil || !s.Applied() {
		return
	}
	params.TransferData = &stripe.PaymentIntentTransferDataParams{
		Destination: stripe.String(s.Destination),
	}
	params.ApplicationFeeAmount = stripe.Int64(s.ApplicationFeeAmount)
}

// ApplyToInvoice attaches the split to a draft invoice update.
func (s StripeSplit) ApplyToInvoice(params *stripe.InvoiceParams) {
	if params == nil || !s.Applied() {
		return
	}
	params.TransferData = &stripe.InvoiceTransferDataParams{
		Destination: stripe.String(s.Destination),
	}
	params.ApplicationFeeAmount = stripe.Int64(s.ApplicationFeeAmount)
}
