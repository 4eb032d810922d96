package commissions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/spacerent-backend/internal/commissionconfig"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
)

type stubService struct {
	global *commissionconfig.GlobalInput
	plans  []commissionconfig.PlanCommissionInput
	spaces []commissionconfig.SpaceCommissionInput
	err    error
}

func (s *stubService) Overview(context.Context) (*commissionconfig.Overview, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &commissionconfig.Overview{
		Global: commissionconfig.GlobalSettings{
			CommissionType:  enums.CommissionTypePercentage,
			CommissionValue: decimal.NewFromInt(10),
		},
		Plans:  []commissionconfig.OverrideView{},
		Spaces: []commissionconfig.OverrideView{},
	}, nil
}

func (s *stubService) SaveGlobal(_ context.Context, input commissionconfig.GlobalInput) (*commissionconfig.GlobalSettings, error) {
	s.global = &input
	if s.err != nil {
		return nil, s.err
	}
	return &commissionconfig.GlobalSettings{CommissionType: enums.CommissionType(input.CommissionType), CommissionValue: input.CommissionValue, Configured: true}, nil
}

func (s *stubService) ReplacePlanCommissions(_ context.Context, rows []commissionconfig.PlanCommissionInput) ([]models.PlanCommission, error) {
	s.plans = rows
	out := make([]models.PlanCommission, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.PlanCommission{ID: uuid.New(), PlanID: row.PlanID, CommissionType: enums.CommissionType(row.CommissionType), CommissionValue: row.CommissionValue})
	}
	return out, s.err
}

func (s *stubService) ReplaceSpaceCommissions(_ context.Context, rows []commissionconfig.SpaceCommissionInput) ([]models.SpaceCommission, error) {
	s.spaces = rows
	return []models.SpaceCommission{}, s.err
}

func TestOverview(t *testing.T) {
	rec := httptest.NewRecorder()
	Overview(&stubService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Global struct {
				CommissionType string `json:"commission_type"`
			} `json:"global"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "percentage", body.Data.Global.CommissionType)
}

func TestSaveGlobalDecodesBody(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"commission_type":"fixed","commission_value":"12.5","stripe_enabled":true}`))
	rec := httptest.NewRecorder()
	SaveGlobal(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.global)
	assert.Equal(t, "fixed", svc.global.CommissionType)
	assert.True(t, svc.global.CommissionValue.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, svc.global.StripeEnabled)
}

func TestSaveGlobalRejectsMissingType(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"commission_value":"10"}`))
	rec := httptest.NewRecorder()
	SaveGlobal(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.global)
}

func TestSaveGlobalRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"commission_type":"fixed","rate":1}`))
	rec := httptest.NewRecorder()
	SaveGlobal(&stubService{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplacePlans(t *testing.T) {
	svc := &stubService{}
	planID := uuid.New()
	payload := `{"plans":[{"plan_id":"` + planID.String() + `","commission_type":"percentage","commission_value":"7"}]}`
	rec := httptest.NewRecorder()
	ReplacePlans(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, svc.plans, 1)
	assert.Equal(t, planID, svc.plans[0].PlanID)
}

func TestReplacePlansValidatesRows(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	ReplacePlans(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"plans":[{"commission_type":"percentage"}]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.plans)
}

func TestReplaceSpacesPropagatesValidation(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid commission configuration")}
	payload := `{"spaces":[{"space_id":"` + uuid.NewString() + `","commission_type":"percentage","commission_value":"150","custom_split":true}]}`
	rec := httptest.NewRecorder()
	ReplaceSpaces(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, svc.spaces, 1)
	assert.True(t, svc.spaces[0].CustomSplit)
}

type violationsEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Details struct {
			Violations []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"violations"`
		} `json:"details"`
	} `json:"error"`
}

func decodeViolations(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body violationsEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	out := map[string]string{}
	for _, v := range body.Error.Details.Violations {
		out[v.Field] = v.Message
	}
	return out
}

func TestReplacePlansReportsRowPaths(t *testing.T) {
	svc := &stubService{}
	payload := `{"plans":[{"plan_id":"` + uuid.NewString() + `","commission_type":"percentage"},{"commission_type":"tiered"}]}`
	rec := httptest.NewRecorder()
	ReplacePlans(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(payload)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	violations := decodeViolations(t, rec)
	assert.Equal(t, "is required", violations["plans[1].plan_id"])
	assert.Equal(t, "must be percentage, fixed or plan", violations["plans[1].commission_type"])
	assert.Len(t, violations, 2)
	assert.Nil(t, svc.plans)
}

func TestSaveGlobalNamesUnknownField(t *testing.T) {
	rec := httptest.NewRecorder()
	SaveGlobal(&stubService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"commission_type":"fixed","rate":1}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"rate": "is not accepted"}, decodeViolations(t, rec))
}
