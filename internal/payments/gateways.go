package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/invoice"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/angelmondragon/spacerent-backend/pkg/openpix"
	pkgstripe "github.com/angelmondragon/spacerent-backend/pkg/stripe"
)

// StripeGateway exposes the subset of Stripe operations the payment flows need.
type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams, idempotencyKey string) (*stripe.PaymentIntent, error)
	UpdateInvoice(ctx context.Context, id string, params *stripe.InvoiceParams) (*stripe.Invoice, error)
}

// PixGateway creates OpenPix charges.
type PixGateway interface {
	CreateCharge(ctx context.Context, req openpix.ChargeRequest) (*openpix.Charge, error)
}

type stripeGateway struct{}

// NewStripeGateway wraps the configured Stripe client so the flows can be tested.
func NewStripeGateway(api *pkgstripe.Client) StripeGateway {
	if api == nil {
		return nil
	}
	return &stripeGateway{}
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams, idempotencyKey string) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
		if idempotencyKey != "" {
			params.SetIdempotencyKey(idempotencyKey)
		}
	}
	return paymentintent.New(params)
}

func (g *stripeGateway) UpdateInvoice(ctx context.Context, id string, params *stripe.InvoiceParams) (*stripe.Invoice, error) {
	if params != nil {
		params.Context = ctx
	}
	return invoice.Update(id, params)
}
