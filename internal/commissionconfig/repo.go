package commissionconfig

import (
	"context"

	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles commission configuration persistence and the reads a
// commission snapshot needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindGlobal(ctx context.Context) (*models.CommissionConfig, error)
	SaveGlobal(ctx context.Context, cfg *models.CommissionConfig) error
	ListPlanCommissions(ctx context.Context) ([]models.PlanCommission, error)
	ListSpaceCommissions(ctx context.Context) ([]models.SpaceCommission, error)
	ReplacePlanCommissions(ctx context.Context, rows []models.PlanCommission) error
	ReplaceSpaceCommissions(ctx context.Context, rows []models.SpaceCommission) error
	FindPlanCommission(ctx context.Context, planID uuid.UUID) (*models.PlanCommission, error)
	FindSpaceCommission(ctx context.Context, spaceID uuid.UUID) (*models.SpaceCommission, error)
	FindSpace(ctx context.Context, id uuid.UUID) (*models.Space, error)
	FindPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a commission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindGlobal returns nil without error when no global row exists.
func (r *repository) FindGlobal(ctx context.Context) (*models.CommissionConfig, error) {
	var cfg models.CommissionConfig
	found, err := findOptional(r.db.WithContext(ctx).Where("type = ?", models.GlobalCommissionType), &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// SaveGlobal creates the singleton row or updates it in place.
func (r *repository) SaveGlobal(ctx context.Context, cfg *models.CommissionConfig) error {
	cfg.Type = models.GlobalCommissionType
	existing, err := r.FindGlobal(ctx)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(cfg).Error
	}
	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *repository) ListPlanCommissions(ctx context.Context) ([]models.PlanCommission, error) {
	var rows []models.PlanCommission
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListSpaceCommissions(ctx context.Context) ([]models.SpaceCommission, error) {
	var rows []models.SpaceCommission
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplacePlanCommissions deletes every plan override and inserts rows. Callers
// run it inside a transaction.
func (r *repository) ReplacePlanCommissions(ctx context.Context, rows []models.PlanCommission) error {
	db := r.db.WithContext(ctx)
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.PlanCommission{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

// ReplaceSpaceCommissions deletes every space override and inserts rows.
func (r *repository) ReplaceSpaceCommissions(ctx context.Context, rows []models.SpaceCommission) error {
	db := r.db.WithContext(ctx)
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SpaceCommission{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

func (r *repository) FindPlanCommission(ctx context.Context, planID uuid.UUID) (*models.PlanCommission, error) {
	var row models.PlanCommission
	found, err := findOptional(r.db.WithContext(ctx).Where("plan_id = ?", planID), &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindSpaceCommission(ctx context.Context, spaceID uuid.UUID) (*models.SpaceCommission, error) {
	var row models.SpaceCommission
	found, err := findOptional(r.db.WithContext(ctx).Where("space_id = ?", spaceID), &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

// FindSpace returns gorm.ErrRecordNotFound when the space does not exist.
func (r *repository) FindSpace(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	var space models.Space
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// FindPlan returns gorm.ErrRecordNotFound when the plan does not exist.
func (r *repository) FindPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// findOptional loads at most one row. A missing row is not an error and is
// not reported to the gorm logger.
func findOptional(query *gorm.DB, dest any) (bool, error) {
	result := query.Limit(1).Find(dest)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
