package commissionconfig

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/logger"
	"github.com/angelmondragon/spacerent-backend/pkg/redis"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the commission configuration service.
type ServiceParams struct {
	Repo              Repository
	TransactionRunner txRunner
	// Cache is optional; without it every read hits the database.
	Cache    redis.Cache
	CacheTTL time.Duration
	// Defaults apply while no global row exists.
	Defaults *commission.GlobalTerms
	Logger   *logger.Logger
}

// Service manages the global, plan and space commission settings.
type Service struct {
	repo     Repository
	txRunner txRunner
	cache    redis.Cache
	cacheTTL time.Duration
	defaults commission.GlobalTerms
	logg     *logger.Logger
}

// NewService builds a commission configuration service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.TransactionRunner == nil {
		return nil, errors.New("transaction runner is required")
	}
	defaults := commission.DefaultGlobalTerms()
	if params.Defaults != nil {
		defaults = *params.Defaults
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		repo:     params.Repo,
		txRunner: params.TransactionRunner,
		cache:    params.Cache,
		cacheTTL: ttl,
		defaults: defaults,
		logg:     params.Logger,
	}, nil
}

// Defaults returns the terms used while no global row exists.
func (s *Service) Defaults() commission.GlobalTerms {
	return s.defaults
}

// GetGlobal returns the effective global settings, falling back to defaults
// when the row is absent.
func (s *Service) GetGlobal(ctx context.Context) (*GlobalSettings, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}

	cfg, err := s.repo.FindGlobal(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load global commission config")
	}
	settings := defaultSettings(s.defaults)
	if cfg != nil {
		settings = settingsFromModel(cfg)
	}
	s.writeCache(ctx, settings)
	return &settings, nil
}

// SaveGlobal upserts the singleton global row and drops the cached copy.
func (s *Service) SaveGlobal(ctx context.Context, input GlobalInput) (*GlobalSettings, error) {
	commissionType, err := validateGlobal(input)
	if err != nil {
		return nil, err
	}

	cfg := &models.CommissionConfig{
		CommissionType:       commissionType,
		CommissionValue:      input.CommissionValue,
		EnablePlanCommission: input.EnablePlanCommission,
		OpenPixEnabled:       input.OpenPixEnabled,
		OpenPixWalletID:      trimmedOrNil(input.OpenPixWalletID),
		StripeEnabled:        input.StripeEnabled,
		StripeAccountID:      trimmedOrNil(input.StripeAccountID),
		StripeCommissionRate: input.StripeCommissionRate,
	}
	if err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).SaveGlobal(ctx, cfg)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save global commission config")
	}

	s.invalidateCache(ctx)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"commission_type":        cfg.CommissionType,
			"commission_value":       cfg.CommissionValue.String(),
			"enable_plan_commission": cfg.EnablePlanCommission,
		})
		s.logg.Info(logCtx, "commission.global_saved")
	}

	settings := settingsFromModel(cfg)
	return &settings, nil
}

// ReplacePlanCommissions swaps the full set of plan overrides atomically.
func (s *Service) ReplacePlanCommissions(ctx context.Context, rows []PlanCommissionInput) ([]models.PlanCommission, error) {
	terms, err := validatePlanRows(rows)
	if err != nil {
		return nil, err
	}

	records := make([]models.PlanCommission, len(rows))
	for i, row := range rows {
		records[i] = models.PlanCommission{
			PlanID:          row.PlanID,
			CommissionType:  terms[i].Type,
			CommissionValue: terms[i].Value,
		}
	}
	if err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplacePlanCommissions(ctx, records)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace plan commissions")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "count", len(records)), "commission.plan_overrides_replaced")
	}
	return records, nil
}

// ReplaceSpaceCommissions swaps the full set of space overrides atomically,
// persisting only rows flagged CustomSplit.
func (s *Service) ReplaceSpaceCommissions(ctx context.Context, rows []SpaceCommissionInput) ([]models.SpaceCommission, error) {
	kept, terms, err := validateSpaceRows(rows)
	if err != nil {
		return nil, err
	}

	records := make([]models.SpaceCommission, len(kept))
	for i, row := range kept {
		records[i] = models.SpaceCommission{
			SpaceID:         row.SpaceID,
			CommissionType:  terms[i].Type,
			CommissionValue: terms[i].Value,
		}
	}
	if err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceSpaceCommissions(ctx, records)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace space commissions")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"count":   len(records),
			"dropped": len(rows) - len(records),
		}), "commission.space_overrides_replaced")
	}
	return records, nil
}

func (s *Service) ListPlanCommissions(ctx context.Context) ([]models.PlanCommission, error) {
	rows, err := s.repo.ListPlanCommissions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plan commissions")
	}
	return rows, nil
}

func (s *Service) ListSpaceCommissions(ctx context.Context) ([]models.SpaceCommission, error) {
	rows, err := s.repo.ListSpaceCommissions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list space commissions")
	}
	return rows, nil
}

// Overview returns the global settings and every override.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	global, err := s.GetGlobal(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := s.ListPlanCommissions(ctx)
	if err != nil {
		return nil, err
	}
	spaces, err := s.ListSpaceCommissions(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Global: *global,
		Plans:  PlanViews(plans),
		Spaces: SpaceViews(spaces),
	}, nil
}

func (s *Service) cacheKey() string {
	return s.cache.CacheKey("commission", "global")
}

func (s *Service) readCache(ctx context.Context) (*GlobalSettings, bool) {
	if s.cache == nil {
		return nil, false
	}
	var settings GlobalSettings
	if err := s.cache.GetJSON(ctx, s.cacheKey(), &settings); err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "commission.cache_read_failed")
		}
		return nil, false
	}
	return &settings, true
}

func (s *Service) writeCache(ctx context.Context, settings GlobalSettings) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, s.cacheKey(), settings, s.cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "commission.cache_write_failed")
	}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey()); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "commission.cache_invalidate_failed")
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
