package commissionconfig

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/spacerent-backend/pkg/db"
	"github.com/angelmondragon/spacerent-backend/pkg/db/dbtest"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/redis"
	"github.com/angelmondragon/spacerent-backend/pkg/types"
)

type memoryCache struct {
	data map[string]string
	ttls map[string]time.Duration
	gets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) error {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrMiss
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = string(payload)
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *memoryCache) CacheKey(parts ...string) string {
	return "test:" + strings.Join(parts, ":")
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *memoryCache) {
	t.Helper()
	conn := dbtest.Open(t)
	cache := newMemoryCache()
	svc, err := NewService(ServiceParams{
		Repo:              NewRepository(conn),
		TransactionRunner: db.NewFromGorm(conn),
		Cache:             cache,
		CacheTTL:          time.Minute,
	})
	require.NoError(t, err)
	return svc, conn, cache
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Repo: NewRepository(nil)})
	assert.Error(t, err)
}

func TestGetGlobalFallsBackToDefaults(t *testing.T) {
	svc, _, cache := newTestService(t)
	ctx := context.Background()

	settings, err := svc.GetGlobal(ctx)
	require.NoError(t, err)
	assert.False(t, settings.Configured)
	assert.Equal(t, enums.CommissionTypePercentage, settings.CommissionType)
	assert.True(t, settings.CommissionValue.Equal(decimal.NewFromInt(10)))
	assert.False(t, settings.EnablePlanCommission)
	assert.Equal(t, time.Minute, cache.ttls["test:commission:global"])
}

func TestSaveGlobalUpsertsAndInvalidatesCache(t *testing.T) {
	svc, conn, cache := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetGlobal(ctx)
	require.NoError(t, err)
	require.Contains(t, cache.data, "test:commission:global")

	wallet := " platform-wallet "
	rate := decimal.NewFromInt(12)
	saved, err := svc.SaveGlobal(ctx, GlobalInput{
		CommissionType:       "fixed",
		CommissionValue:      decimal.NewFromInt(15),
		EnablePlanCommission: true,
		OpenPixEnabled:       true,
		OpenPixWalletID:      &wallet,
		StripeCommissionRate: &rate,
	})
	require.NoError(t, err)
	assert.True(t, saved.Configured)
	assert.Equal(t, "platform-wallet", *saved.OpenPixWalletID)
	assert.NotContains(t, cache.data, "test:commission:global")

	_, err = svc.SaveGlobal(ctx, GlobalInput{CommissionType: "percentage", CommissionValue: decimal.NewFromInt(8)})
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Table("commission_configs").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	settings, err := svc.GetGlobal(ctx)
	require.NoError(t, err)
	assert.True(t, settings.Configured)
	assert.Equal(t, enums.CommissionTypePercentage, settings.CommissionType)
	assert.True(t, settings.CommissionValue.Equal(decimal.NewFromInt(8)))
	assert.Nil(t, settings.OpenPixWalletID)
}

func TestGetGlobalServesFromCache(t *testing.T) {
	svc, _, cache := newTestService(t)
	ctx := context.Background()

	cache.data["test:commission:global"] = `{"commission_type":"fixed","commission_value":"3","configured":true}`
	settings, err := svc.GetGlobal(ctx)
	require.NoError(t, err)
	assert.Equal(t, enums.CommissionTypeFixed, settings.CommissionType)
	assert.True(t, settings.CommissionValue.Equal(decimal.NewFromInt(3)))
}

func TestSaveGlobalValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	rate := decimal.NewFromInt(-1)

	_, err := svc.SaveGlobal(context.Background(), GlobalInput{
		CommissionType:       "percentage",
		CommissionValue:      decimal.NewFromInt(120),
		StripeCommissionRate: &rate,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(types.ValidationDetails)
	require.True(t, ok)
	assert.Len(t, details.Violations, 2)

	_, err = svc.SaveGlobal(context.Background(), GlobalInput{CommissionType: "tiered"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestReplacePlanCommissions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	planA, planB := uuid.New(), uuid.New()

	_, err := svc.ReplacePlanCommissions(ctx, []PlanCommissionInput{
		{PlanID: planA, CommissionType: "percentage", CommissionValue: decimal.NewFromInt(5)},
		{PlanID: planB, CommissionType: "fixed", CommissionValue: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)

	_, err = svc.ReplacePlanCommissions(ctx, []PlanCommissionInput{
		{PlanID: planB, CommissionType: "plan"},
	})
	require.NoError(t, err)

	rows, err := svc.ListPlanCommissions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, planB, rows[0].PlanID)
	assert.Equal(t, enums.CommissionTypePlan, rows[0].CommissionType)
	assert.NotEqual(t, uuid.Nil, rows[0].ID)
}

func TestReplacePlanCommissionsRejectsWholeBatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	plan := uuid.New()

	_, err := svc.ReplacePlanCommissions(ctx, []PlanCommissionInput{
		{PlanID: plan, CommissionType: "percentage", CommissionValue: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)

	_, err = svc.ReplacePlanCommissions(ctx, []PlanCommissionInput{
		{PlanID: plan, CommissionType: "percentage", CommissionValue: decimal.NewFromInt(5)},
		{PlanID: plan, CommissionType: "fixed", CommissionValue: decimal.NewFromInt(-3)},
		{CommissionType: "bogus"},
	})
	require.Error(t, err)
	details := pkgerrors.As(err).Details().(types.ValidationDetails)
	fields := make([]string, 0, len(details.Violations))
	for _, v := range details.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{
		"plans[1].plan_id",
		"plans[1].commission_value",
		"plans[2].plan_id",
		"plans[2].commission_type",
	}, fields)

	rows, err := svc.ListPlanCommissions(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "failed validation must leave existing overrides untouched")
}

func TestReplaceSpaceCommissionsKeepsOnlyCustomSplit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	custom, plain := uuid.New(), uuid.New()

	saved, err := svc.ReplaceSpaceCommissions(ctx, []SpaceCommissionInput{
		{SpaceID: custom, CommissionType: "fixed", CommissionValue: decimal.NewFromInt(7), CustomSplit: true},
		{SpaceID: plain, CommissionType: "not-validated", CustomSplit: false},
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	rows, err := svc.ListSpaceCommissions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, custom, rows[0].SpaceID)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, overview.Spaces, 1)
	assert.Equal(t, custom, *overview.Spaces[0].SpaceID)
	assert.Empty(t, overview.Plans)
	assert.False(t, overview.Global.Configured)
}
