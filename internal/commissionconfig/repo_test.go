package commissionconfig

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/pkg/db/dbtest"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
)

func TestRepositoryMissingOverridesAreQuiet(t *testing.T) {
	conn, queryErrors := dbtest.RecordQueryErrors(dbtest.Open(t))
	repo := NewRepository(conn)
	ctx := context.Background()

	global, err := repo.FindGlobal(ctx)
	require.NoError(t, err)
	assert.Nil(t, global)

	planRow, err := repo.FindPlanCommission(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, planRow)

	spaceRow, err := repo.FindSpaceCommission(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, spaceRow)

	assert.Empty(t, queryErrors.Errors())
}

func TestRepositoryFindsOverride(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	spaceID := uuid.New()
	require.NoError(t, conn.Create(&models.SpaceCommission{
		SpaceID:         spaceID,
		CommissionType:  enums.CommissionTypeFixed,
		CommissionValue: decimal.NewFromInt(15),
	}).Error)

	row, err := repo.FindSpaceCommission(context.Background(), spaceID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, enums.CommissionTypeFixed, row.CommissionType)
	assert.True(t, row.CommissionValue.Equal(decimal.NewFromInt(15)))
}

func TestSeedGlobalOnlyFillsEmptyTable(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	defaults := commission.GlobalTerms{Type: enums.CommissionTypePercentage, Value: decimal.NewFromInt(10)}

	seeded, err := SeedGlobal(ctx, repo, defaults)
	require.NoError(t, err)
	assert.True(t, seeded)

	global, err := repo.FindGlobal(ctx)
	require.NoError(t, err)
	require.NotNil(t, global)
	assert.Equal(t, enums.CommissionTypePercentage, global.CommissionType)

	global.CommissionValue = decimal.NewFromInt(12)
	require.NoError(t, repo.SaveGlobal(ctx, global))

	seeded, err = SeedGlobal(ctx, repo, defaults)
	require.NoError(t, err)
	assert.False(t, seeded)

	global, err = repo.FindGlobal(ctx)
	require.NoError(t, err)
	assert.True(t, global.CommissionValue.Equal(decimal.NewFromInt(12)))
}
