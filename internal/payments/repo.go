package payments

import (
	"context"

	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles order, subscription and payment persistence.
type Repository interface {
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	FindOpenPayment(ctx context.Context, orderID uuid.UUID, gateway enums.Gateway) (*models.Payment, error)
	FindPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindOrder returns gorm.ErrRecordNotFound when the order does not exist.
func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindSubscriptionByStripeID returns nil without error for unknown subscriptions.
func (r *repository) FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	found, err := findOptional(r.db.WithContext(ctx).Where("stripe_subscription_id = ?", stripeSubscriptionID), &sub)
	if err != nil || !found {
		return nil, err
	}
	return &sub, nil
}

// FindOpenPayment returns the newest pending or paid payment of an order on a gateway.
func (r *repository) FindOpenPayment(ctx context.Context, orderID uuid.UUID, gateway enums.Gateway) (*models.Payment, error) {
	var payment models.Payment
	query := r.db.WithContext(ctx).
		Where("order_id = ? AND gateway = ? AND status IN ?", orderID, gateway, []enums.PaymentStatus{enums.PaymentStatusPending, enums.PaymentStatusPaid}).
		Order("created_at DESC")
	found, err := findOptional(query, &payment)
	if err != nil || !found {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	found, err := findOptional(r.db.WithContext(ctx).Where("gateway_reference = ?", reference), &payment)
	if err != nil || !found {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// findOptional loads at most one row, reporting absence as found=false.
func findOptional(query *gorm.DB, dest any) (bool, error) {
	result := query.Limit(1).Find(dest)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
