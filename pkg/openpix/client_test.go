package openpix

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestCreateChargeSendsSplits(t *testing.T) {
	var capturedURL string
	var capturedAuth string
	var payload map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedAuth = req.Header.Get("Authorization")
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
		return jsonResponse(http.StatusOK, `{"charge":{"correlationID":"order-1","transactionID":"tx-9","status":"ACTIVE","value":20000,"brCode":"000201..."}}`), nil
	})

	client, err := NewClient("app-id", WithBaseURL("http://pix.test/"), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	charge, err := client.CreateCharge(context.Background(), ChargeRequest{
		CorrelationID: "order-1",
		Value:         20000,
		Splits: []Split{
			{WalletID: "space-wallet", Value: 18000},
			{WalletID: "platform-wallet", Value: 2000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://pix.test/api/v1/charge", capturedURL)
	assert.Equal(t, "app-id", capturedAuth)
	assert.Equal(t, "order-1", payload["correlationID"])
	splits, ok := payload["splits"].([]any)
	require.True(t, ok)
	require.Len(t, splits, 2)
	first := splits[0].(map[string]any)
	assert.Equal(t, "space-wallet", first["walletId"])
	assert.EqualValues(t, 18000, first["value"])

	assert.Equal(t, "tx-9", charge.TransactionID)
	assert.Equal(t, "000201...", charge.BRCode)
}

func TestCreateChargeOmitsEmptySplits(t *testing.T) {
	var raw string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		raw = string(body)
		return jsonResponse(http.StatusOK, `{"charge":{"correlationID":"order-2"},"brCode":"top-level"}`), nil
	})
	client, err := NewClient("app-id", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	charge, err := client.CreateCharge(context.Background(), ChargeRequest{CorrelationID: "order-2", Value: 100})
	require.NoError(t, err)
	assert.NotContains(t, raw, "splits")
	assert.Equal(t, "top-level", charge.BRCode)
}

func TestCreateChargeFailures(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":"invalid split"}`), nil
	})
	client, err := NewClient("app-id", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	_, err = client.CreateCharge(context.Background(), ChargeRequest{CorrelationID: "order-3", Value: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "charge request failed")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid split", apiErr.Message)
	dump := pkgerrors.Dump(err)
	assert.Equal(t, "openpix", dump.Gateway)
	assert.Equal(t, http.StatusBadRequest, dump.GatewayStatus)

	_, err = client.CreateCharge(context.Background(), ChargeRequest{Value: 100})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var nilClient *Client
	_, err = nilClient.CreateCharge(context.Background(), ChargeRequest{CorrelationID: "x", Value: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewClientRequiresAppID(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}
