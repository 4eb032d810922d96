package commissionconfig

import (
	"context"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
)

// SeedGlobal writes defaults as the global row when none exists yet and
// reports whether it did. An existing row is never touched.
func SeedGlobal(ctx context.Context, repo Repository, defaults commission.GlobalTerms) (bool, error) {
	existing, err := repo.FindGlobal(ctx)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	return true, repo.SaveGlobal(ctx, &models.CommissionConfig{
		CommissionType:       defaults.Type,
		CommissionValue:      defaults.Value,
		EnablePlanCommission: defaults.EnablePlanCommission,
	})
}
