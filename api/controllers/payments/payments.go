package payments

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/spacerent-backend/api/responses"
	internalpayments "github.com/angelmondragon/spacerent-backend/internal/payments"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/logger"
)

// Service is the slice of the payments service the order payment routes use.
type Service interface {
	QuoteOrder(ctx context.Context, orderID uuid.UUID, gateway enums.Gateway) (*internalpayments.Quote, error)
	CreatePixCharge(ctx context.Context, orderID uuid.UUID) (*internalpayments.PixChargeResult, error)
	CreateCardPaymentIntent(ctx context.Context, orderID uuid.UUID) (*internalpayments.CardPaymentResult, error)
}

// Quote previews the commission and split for an order without touching a gateway.
func Quote(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gateway := enums.GatewayStripe
		if raw := strings.TrimSpace(r.URL.Query().Get("gateway")); raw != "" {
			parsed, parseErr := enums.ParseGateway(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid gateway").
					WithDetails(map[string]any{"field": "gateway"}))
				return
			}
			gateway = parsed
		}

		quote, err := svc.QuoteOrder(r.Context(), orderID, gateway)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CreatePix creates (or replays) the OpenPix charge for an order.
func CreatePix(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePixCharge(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.Replayed {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// CreateCard creates the Stripe PaymentIntent for an order.
func CreateCard(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateCardPaymentIntent(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id").
			WithDetails(map[string]any{"field": "orderId"})
	}
	return orderID, nil
}
