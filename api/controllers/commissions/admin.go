package commissions

import (
	"context"
	"net/http"

	"github.com/angelmondragon/spacerent-backend/api/responses"
	"github.com/angelmondragon/spacerent-backend/api/validators"
	"github.com/angelmondragon/spacerent-backend/internal/commissionconfig"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/logger"
)

// Service is the admin surface of the commission configuration.
type Service interface {
	Overview(ctx context.Context) (*commissionconfig.Overview, error)
	SaveGlobal(ctx context.Context, input commissionconfig.GlobalInput) (*commissionconfig.GlobalSettings, error)
	ReplacePlanCommissions(ctx context.Context, rows []commissionconfig.PlanCommissionInput) ([]models.PlanCommission, error)
	ReplaceSpaceCommissions(ctx context.Context, rows []commissionconfig.SpaceCommissionInput) ([]models.SpaceCommission, error)
}

type planCommissionsRequest struct {
	Plans []commissionconfig.PlanCommissionInput `json:"plans" validate:"dive"`
}

type spaceCommissionsRequest struct {
	Spaces []commissionconfig.SpaceCommissionInput `json:"spaces" validate:"dive"`
}

// Overview returns the global settings plus every plan and space override.
func Overview(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}
		overview, err := svc.Overview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}

func SaveGlobal(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}
		var body commissionconfig.GlobalInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		settings, err := svc.SaveGlobal(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// ReplacePlans swaps the full set of plan overrides.
func ReplacePlans(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}
		var body planCommissionsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ReplacePlanCommissions(r.Context(), body.Plans)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, commissionconfig.PlanViews(rows))
	}
}

// ReplaceSpaces swaps the full set of space overrides; only custom_split rows are kept.
func ReplaceSpaces(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}
		var body spaceCommissionsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ReplaceSpaceCommissions(r.Context(), body.Spaces)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, commissionconfig.SpaceViews(rows))
	}
}
