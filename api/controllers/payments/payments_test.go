package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	internalpayments "github.com/angelmondragon/spacerent-backend/internal/payments"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
)

type stubService struct {
	quoteGateway enums.Gateway
	pix          *internalpayments.PixChargeResult
	card         *internalpayments.CardPaymentResult
	err          error
}

func (s *stubService) QuoteOrder(_ context.Context, orderID uuid.UUID, gateway enums.Gateway) (*internalpayments.Quote, error) {
	s.quoteGateway = gateway
	if s.err != nil {
		return nil, s.err
	}
	return &internalpayments.Quote{
		OrderID: orderID,
		Gateway: gateway,
		Decision: commission.Decision{
			Source:           enums.CommissionSourceGlobal,
			Type:             enums.CommissionTypePercentage,
			Value:            decimal.NewFromInt(10),
			TransactionTotal: decimal.NewFromInt(200),
			CommissionAmount: decimal.NewFromInt(20),
			SpaceAmount:      decimal.NewFromInt(180),
		},
	}, nil
}

func (s *stubService) CreatePixCharge(context.Context, uuid.UUID) (*internalpayments.PixChargeResult, error) {
	return s.pix, s.err
}

func (s *stubService) CreateCardPaymentIntent(context.Context, uuid.UUID) (*internalpayments.CardPaymentResult, error) {
	return s.card, s.err
}

func serve(t *testing.T, method, pattern, target string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestQuoteDefaultsToStripe(t *testing.T) {
	svc := &stubService{}
	orderID := uuid.New()

	rec := serve(t, http.MethodGet, "/orders/{orderId}/commission", "/orders/"+orderID.String()+"/commission", Quote(svc, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, enums.GatewayStripe, svc.quoteGateway)

	var body struct {
		Data struct {
			OrderID  uuid.UUID `json:"order_id"`
			Decision struct {
				CommissionAmount string `json:"commission_amount"`
				SpaceAmount      string `json:"space_amount"`
			} `json:"decision"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, orderID, body.Data.OrderID)
	assert.Equal(t, "20", body.Data.Decision.CommissionAmount)
	assert.Equal(t, "180", body.Data.Decision.SpaceAmount)
}

func TestQuoteParsesGateway(t *testing.T) {
	svc := &stubService{}
	target := "/orders/" + uuid.NewString() + "/commission?gateway=OpenPix"

	rec := serve(t, http.MethodGet, "/orders/{orderId}/commission", target, Quote(svc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.GatewayOpenPix, svc.quoteGateway)

	rec = serve(t, http.MethodGet, "/orders/{orderId}/commission", "/orders/"+uuid.NewString()+"/commission?gateway=boleto", Quote(svc, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidOrderID(t *testing.T) {
	rec := serve(t, http.MethodPost, "/orders/{orderId}/payments/pix", "/orders/not-a-uuid/payments/pix", CreatePix(&stubService{}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePixStatusReflectsReplay(t *testing.T) {
	target := "/orders/" + uuid.NewString() + "/payments/pix"

	rec := serve(t, http.MethodPost, "/orders/{orderId}/payments/pix", target, CreatePix(&stubService{pix: &internalpayments.PixChargeResult{BRCode: "000201"}}, nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, http.MethodPost, "/orders/{orderId}/payments/pix", target, CreatePix(&stubService{pix: &internalpayments.PixChargeResult{Replayed: true}}, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCardMapsServiceErrors(t *testing.T) {
	target := "/orders/" + uuid.NewString() + "/payments/card"
	pattern := "/orders/{orderId}/payments/card"

	cases := []struct {
		err  error
		want int
	}{
		{pkgerrors.New(pkgerrors.CodeNotFound, "order not found"), http.StatusNotFound},
		{pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending"), http.StatusUnprocessableEntity},
		{pkgerrors.New(pkgerrors.CodeDependency, "stripe: create payment intent"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		rec := serve(t, http.MethodPost, pattern, target, CreateCard(&stubService{err: tc.err}, nil))
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}

	rec := serve(t, http.MethodPost, pattern, target, CreateCard(&stubService{card: &internalpayments.CardPaymentResult{PaymentIntentID: "pi_1"}}, nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestNilServiceReturnsInternal(t *testing.T) {
	rec := serve(t, http.MethodPost, "/orders/{orderId}/payments/card", "/orders/"+uuid.NewString()+"/payments/card", CreateCard(nil, nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
