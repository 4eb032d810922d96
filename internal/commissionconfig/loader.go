package commissionconfig

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
)

type snapshotRunner interface {
	WithSnapshot(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SnapshotRequest names the entities a payment is resolved against.
type SnapshotRequest struct {
	SpaceID          uuid.UUID
	PlanID           *uuid.UUID
	TransactionTotal decimal.Decimal
	Gateway          enums.Gateway
}

// Snapshot is a consistent view of everything needed to resolve and split one payment.
type Snapshot struct {
	Input  commission.Input
	Space  models.Space
	Plan   *models.Plan
	Global GlobalSettings

	SpaceWalletID    string
	PlatformWalletID string
	ConnectAccountID string
	OpenPixEnabled   bool
	StripeEnabled    bool
}

// Loader reads commission snapshots.
type Loader struct {
	repo     Repository
	runner   snapshotRunner
	defaults commission.GlobalTerms
}

// NewLoader builds a Loader. Defaults apply while no global row exists.
func NewLoader(repo Repository, runner snapshotRunner, defaults commission.GlobalTerms) (*Loader, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if runner == nil {
		return nil, errors.New("snapshot runner is required")
	}
	return &Loader{repo: repo, runner: runner, defaults: defaults}, nil
}

// Snapshot loads the space, plan, overrides and global settings inside one
// read-only transaction and assembles the resolver input. For the Stripe
// gateway the configured Stripe commission rate replaces the global value.
func (l *Loader) Snapshot(ctx context.Context, req SnapshotRequest) (*Snapshot, error) {
	if req.SpaceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "space id is required")
	}

	snap := &Snapshot{}
	err := l.runner.WithSnapshot(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)

		space, err := repo.FindSpace(ctx, req.SpaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load space")
		}
		snap.Space = *space

		spaceOverride, err := repo.FindSpaceCommission(ctx, space.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load space commission")
		}

		if req.PlanID != nil && *req.PlanID != uuid.Nil {
			plan, err := repo.FindPlan(ctx, *req.PlanID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// the payment resolves without plan terms
			case err != nil:
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
			default:
				snap.Plan = plan
			}
			if snap.Plan != nil {
				planOverride, err := repo.FindPlanCommission(ctx, snap.Plan.ID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan commission")
				}
				if planOverride != nil {
					snap.Input.Plan = commission.NewTerms(planOverride.CommissionType, planOverride.CommissionValue)
				}
				price := snap.Plan.Preco
				snap.Input.PlanPrice = &price
			}
		}

		global, err := repo.FindGlobal(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load global commission config")
		}
		snap.Global = defaultSettings(l.defaults)
		if global != nil {
			snap.Global = settingsFromModel(global)
		}

		snap.Input.Space = spaceTerms(space, spaceOverride)
		return nil
	})
	if err != nil {
		return nil, err
	}

	globalTerms := snap.Global.Terms()
	snap.Input.Global = &globalTerms
	snap.Input.TransactionTotal = req.TransactionTotal
	if req.Gateway == enums.GatewayStripe && snap.Global.StripeCommissionRate != nil {
		rate := *snap.Global.StripeCommissionRate
		snap.Input.GlobalValueOverride = &rate
	}

	snap.OpenPixEnabled = snap.Global.OpenPixEnabled
	snap.StripeEnabled = snap.Global.StripeEnabled
	snap.PlatformWalletID = deref(snap.Global.OpenPixWalletID)
	snap.SpaceWalletID = deref(snap.Space.OpenPixWalletID)
	snap.ConnectAccountID = deref(snap.Space.StripeConnectAccountID)
	return snap, nil
}

// spaceTerms prefers the dedicated override row over the embedded document.
func spaceTerms(space *models.Space, override *models.SpaceCommission) *commission.Terms {
	if override != nil {
		if terms := commission.NewTerms(override.CommissionType, override.CommissionValue); terms != nil {
			return terms
		}
	}
	return commission.NormalizeSpaceCommission(space.Comissao.Raw())
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
