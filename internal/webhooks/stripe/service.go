package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/spacerent-backend/internal/payments"
	"github.com/angelmondragon/spacerent-backend/internal/split"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/logger"
)

const invoiceStatusDraft = "draft"

type renewalHandler interface {
	ApplyRenewalSplit(ctx context.Context, inv payments.RenewalInvoice) (*split.StripeSplit, error)
	RecordRenewalPayment(ctx context.Context, inv payments.RenewalInvoice) (*models.Payment, error)
}

type ServiceParams struct {
	Renewals renewalHandler
	Logger   *logger.Logger
}

// Service routes verified Stripe events to the subscription renewal flow.
type Service struct {
	renewals renewalHandler
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Renewals == nil {
		return nil, errors.New("renewal handler required")
	}
	return &Service{renewals: params.Renewals, logg: params.Logger}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeInvoiceCreated:
		inv, err := decodeInvoice(event.Data.Raw)
		if err != nil {
			return err
		}
		// fees can only be attached while the invoice is still a draft
		if inv.Status != invoiceStatusDraft || inv.subscriptionID() == "" {
			return nil
		}
		_, err = s.renewals.ApplyRenewalSplit(ctx, inv.renewal(inv.Total))
		return err
	case stripe.EventTypeInvoicePaid:
		inv, err := decodeInvoice(event.Data.Raw)
		if err != nil {
			return err
		}
		if inv.subscriptionID() == "" {
			return nil
		}
		total := inv.AmountPaid
		if total == 0 {
			total = inv.Total
		}
		_, err = s.renewals.RecordRenewalPayment(ctx, inv.paidRenewal(total))
		return err
	default:
		if s.logg != nil {
			s.logg.Debug(s.logg.WithField(ctx, "event_type", string(event.Type)), "stripe event ignored")
		}
		return nil
	}
}

// invoicePayload is the part of the invoice object the renewal flow reads.
// The subscription id moved under parent.subscription_details in newer API
// versions; both locations are accepted.
type invoicePayload struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Total        int64           `json:"total"`
	AmountPaid   int64           `json:"amount_paid"`
	Currency     string          `json:"currency"`
	Subscription json.RawMessage `json:"subscription"`
	// ApplicationFeeAmount is the fee attached while the invoice was a draft.
	ApplicationFeeAmount *int64 `json:"application_fee_amount"`
	TransferData         *struct {
		Destination json.RawMessage `json:"destination"`
	} `json:"transfer_data"`
	Metadata map[string]string `json:"metadata"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription json.RawMessage `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

func decodeInvoice(raw json.RawMessage) (*invoicePayload, error) {
	var inv invoicePayload
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode invoice event")
	}
	if inv.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id missing")
	}
	return &inv, nil
}

func (i *invoicePayload) subscriptionID() string {
	if id := expandableID(i.Subscription); id != "" {
		return id
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return expandableID(i.Parent.SubscriptionDetails.Subscription)
	}
	return ""
}

func (i *invoicePayload) renewal(total int64) payments.RenewalInvoice {
	return payments.RenewalInvoice{
		InvoiceID:            i.ID,
		StripeSubscriptionID: i.subscriptionID(),
		Total:                total,
	}
}

// paidRenewal carries the split Stripe actually applied so the payment row
// records it instead of a fresh resolution.
func (i *invoicePayload) paidRenewal(total int64) payments.RenewalInvoice {
	inv := i.renewal(total)
	inv.ApplicationFeeAmount = i.ApplicationFeeAmount
	if i.TransferData != nil {
		inv.Destination = expandableID(i.TransferData.Destination)
	}
	inv.Metadata = i.Metadata
	return inv
}

// expandableID reads a Stripe expandable field: a bare id or an object with an id.
func expandableID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return strings.TrimSpace(id)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.ID)
	}
	return ""
}
