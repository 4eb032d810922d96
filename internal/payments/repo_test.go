package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spacerent-backend/pkg/db/dbtest"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

func TestRepositoryOptionalLookupsAreQuiet(t *testing.T) {
	conn, queryErrors := dbtest.RecordQueryErrors(dbtest.Open(t))
	repo := NewRepository(conn)
	ctx := context.Background()

	sub, err := repo.FindSubscriptionByStripeID(ctx, "sub_missing")
	require.NoError(t, err)
	assert.Nil(t, sub)

	open, err := repo.FindOpenPayment(ctx, uuid.New(), enums.GatewayOpenPix)
	require.NoError(t, err)
	assert.Nil(t, open)

	byRef, err := repo.FindPaymentByReference(ctx, "in_missing")
	require.NoError(t, err)
	assert.Nil(t, byRef)

	assert.Empty(t, queryErrors.Errors())
}
