package stripe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spacerent-backend/pkg/config"
)

func TestNewClientValidatesKeys(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, config.StripeConfig{Secret: "whsec_1"}, nil)
	assert.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewClient(ctx, config.StripeConfig{APIKey: "sk_test_1"}, nil)
	assert.ErrorIs(t, err, errSecretRequired)

	_, err = NewClient(ctx, config.StripeConfig{APIKey: "sk_live_1", Secret: "whsec_1", Env: "test"}, nil)
	assert.Error(t, err)

	_, err = NewClient(ctx, config.StripeConfig{APIKey: "sk_test_1", Secret: "whsec_1", Env: "staging"}, nil)
	assert.ErrorIs(t, err, errInvalidStripeEnv)
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "rk_test_1", Secret: " whsec_1 "}, nil)
	require.NoError(t, err)

	assert.Equal(t, "test", client.Environment())
	assert.Equal(t, "whsec_1", client.SigningSecret())
	assert.Equal(t, "brl", client.Currency())

	var empty *Client
	assert.Empty(t, empty.Currency())
	assert.Empty(t, empty.SigningSecret())
}
