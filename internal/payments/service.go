package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/angelmondragon/spacerent-backend/internal/commission"
	"github.com/angelmondragon/spacerent-backend/internal/commissionconfig"
	"github.com/angelmondragon/spacerent-backend/internal/split"
	"github.com/angelmondragon/spacerent-backend/pkg/db"
	"github.com/angelmondragon/spacerent-backend/pkg/db/models"
	"github.com/angelmondragon/spacerent-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
	"github.com/angelmondragon/spacerent-backend/pkg/logger"
	"github.com/angelmondragon/spacerent-backend/pkg/metrics"
	"github.com/angelmondragon/spacerent-backend/pkg/openpix"
)

const defaultCurrency = "brl"

type snapshotLoader interface {
	Snapshot(ctx context.Context, req commissionconfig.SnapshotRequest) (*commissionconfig.Snapshot, error)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Repo    Repository
	Loader  snapshotLoader
	Pix     PixGateway
	Stripe  StripeGateway
	Metrics *metrics.CommissionMetrics
	Logger  *logger.Logger
	// Currency is the Stripe charge currency; defaults to brl.
	Currency string
}

// Service resolves commissions and hands the resulting splits to the gateways.
type Service struct {
	repo     Repository
	loader   snapshotLoader
	pix      PixGateway
	stripe   StripeGateway
	metrics  *metrics.CommissionMetrics
	logg     *logger.Logger
	currency string
}

// NewService builds the payment service. Gateways are optional; flows that
// need a missing gateway fail with DEPENDENCY_ERROR.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Loader == nil {
		return nil, errors.New("snapshot loader is required")
	}
	currency := strings.ToLower(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return &Service{
		repo:     params.Repo,
		loader:   params.Loader,
		pix:      params.Pix,
		stripe:   params.Stripe,
		metrics:  params.Metrics,
		logg:     params.Logger,
		currency: currency,
	}, nil
}

// Quote is a commission preview for one order on one gateway.
type Quote struct {
	OrderID       uuid.UUID           `json:"order_id"`
	Gateway       enums.Gateway       `json:"gateway"`
	Decision      commission.Decision `json:"decision"`
	StripeSplit   *split.StripeSplit  `json:"stripe_split,omitempty"`
	OpenPixSplits []openpix.Split     `json:"openpix_splits,omitempty"`
	SplitApplied  bool                `json:"split_applied"`
}

// PixChargeResult is returned after a Pix charge is created.
type PixChargeResult struct {
	PaymentID     uuid.UUID           `json:"payment_id"`
	CorrelationID string              `json:"correlation_id"`
	BRCode        string              `json:"br_code,omitempty"`
	Decision      commission.Decision `json:"decision"`
	SplitApplied  bool                `json:"split_applied"`
	Replayed      bool                `json:"replayed"`
}

// CardPaymentResult is returned after a PaymentIntent is created.
type CardPaymentResult struct {
	PaymentID       uuid.UUID           `json:"payment_id"`
	PaymentIntentID string              `json:"payment_intent_id"`
	ClientSecret    string              `json:"client_secret,omitempty"`
	Decision        commission.Decision `json:"decision"`
	SplitApplied    bool                `json:"split_applied"`
}

type resolvedOrder struct {
	order    *models.Order
	snapshot *commissionconfig.Snapshot
	decision commission.Decision
}

// QuoteOrder resolves the commission and the would-be split without calling any gateway.
func (s *Service) QuoteOrder(ctx context.Context, orderID uuid.UUID, gateway enums.Gateway) (*Quote, error) {
	if !gateway.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway must be stripe or openpix")
	}
	resolved, err := s.resolveOrder(ctx, orderID, gateway)
	if err != nil {
		return nil, err
	}

	quote := &Quote{OrderID: orderID, Gateway: gateway, Decision: resolved.decision}
	snap := resolved.snapshot
	switch gateway {
	case enums.GatewayStripe:
		stripeSplit := split.Stripe(resolved.decision, snap.ConnectAccountID, snap.StripeEnabled)
		quote.SplitApplied = stripeSplit.Applied()
		if quote.SplitApplied {
			quote.StripeSplit = &stripeSplit
		}
	case enums.GatewayOpenPix:
		quote.OpenPixSplits = split.OpenPix(resolved.decision, snap.SpaceWalletID, snap.PlatformWalletID, snap.OpenPixEnabled)
		quote.SplitApplied = quote.OpenPixSplits != nil
	}
	return quote, nil
}

// CreatePixCharge charges an order through OpenPix with the resolved split.
// The order id is the OpenPix correlation id, so retries never double charge.
func (s *Service) CreatePixCharge(ctx context.Context, orderID uuid.UUID) (*PixChargeResult, error) {
	if s.pix == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "openpix gateway not configured")
	}
	ctx = s.scope(ctx, orderID, enums.GatewayOpenPix)

	existing, err := s.repo.FindOpenPayment(ctx, orderID, enums.GatewayOpenPix)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load existing payment")
	}
	if existing != nil {
		return &PixChargeResult{
			PaymentID:     existing.ID,
			CorrelationID: existing.GatewayReference,
			BRCode:        deref(existing.PaymentCode),
			Decision:      decisionFromPayment(existing),
			SplitApplied:  existing.SplitApplied,
			Replayed:      true,
		}, nil
	}

	resolved, err := s.resolveOrder(ctx, orderID, enums.GatewayOpenPix)
	if err != nil {
		return nil, err
	}
	if err := requireChargeable(resolved); err != nil {
		return nil, err
	}

	snap := resolved.snapshot
	splits := split.OpenPix(resolved.decision, snap.SpaceWalletID, snap.PlatformWalletID, snap.OpenPixEnabled)
	s.metrics.ObserveSplit(string(enums.GatewayOpenPix), splits != nil)

	correlationID := orderID.String()
	started := time.Now()
	charge, err := s.pix.CreateCharge(ctx, openpix.ChargeRequest{
		CorrelationID: correlationID,
		Value:         split.ToMinorUnits(resolved.decision.TransactionTotal),
		Comment:       fmt.Sprintf("Reserva %s", snap.Space.Nome),
		Splits:        splits,
	})
	s.metrics.ObserveGatewayCall(string(enums.GatewayOpenPix), "create_charge", time.Since(started), err)
	if err != nil {
		s.logError(ctx, "payments.openpix_charge_failed", err)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create openpix charge")
	}

	reference := charge.CorrelationID
	if reference == "" {
		reference = correlationID
	}
	brCode := charge.BRCode
	payment := s.newPayment(resolved, enums.GatewayOpenPix, reference, splits != nil)
	payment.OrderID = &resolved.order.ID
	if brCode != "" {
		payment.PaymentCode = &brCode
	}
	if err := s.persist(ctx, payment); err != nil {
		return nil, err
	}

	return &PixChargeResult{
		PaymentID:     payment.ID,
		CorrelationID: reference,
		BRCode:        brCode,
		Decision:      resolved.decision,
		SplitApplied:  payment.SplitApplied,
	}, nil
}

// CreateCardPaymentIntent charges an order through Stripe as a destination
// charge when the space has a connected account.
func (s *Service) CreateCardPaymentIntent(ctx context.Context, orderID uuid.UUID) (*CardPaymentResult, error) {
	if s.stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe gateway not configured")
	}
	ctx = s.scope(ctx, orderID, enums.GatewayStripe)

	resolved, err := s.resolveOrder(ctx, orderID, enums.GatewayStripe)
	if err != nil {
		return nil, err
	}
	if err := requireChargeable(resolved); err != nil {
		return nil, err
	}

	snap := resolved.snapshot
	stripeSplit := split.Stripe(resolved.decision, snap.ConnectAccountID, snap.StripeEnabled)
	s.metrics.ObserveSplit(string(enums.GatewayStripe), stripeSplit.Applied())

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(split.ToMinorUnits(resolved.decision.TransactionTotal)),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", orderID.String())
	params.AddMetadata("space_id", snap.Space.ID.String())
	params.AddMetadata("commission_source", string(resolved.decision.Source))
	stripeSplit.ApplyToPaymentIntent(params)

	started := time.Now()
	intent, err := s.stripe.CreatePaymentIntent(ctx, params, "order:"+orderID.String())
	s.metrics.ObserveGatewayCall(string(enums.GatewayStripe), "create_payment_intent", time.Since(started), err)
	if err != nil {
		s.logError(ctx, "payments.stripe_payment_intent_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe payment intent")
	}

	payment := s.newPayment(resolved, enums.GatewayStripe, intent.ID, stripeSplit.Applied())
	payment.OrderID = &resolved.order.ID
	if err := s.persist(ctx, payment); err != nil {
		return nil, err
	}

	return &CardPaymentResult{
		PaymentID:       payment.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Decision:        resolved.decision,
		SplitApplied:    payment.SplitApplied,
	}, nil
}

// Invoice metadata keys that record the terms behind a renewal fee.
const (
	metadataCommissionSource = "commission_source"
	metadataCommissionType   = "commission_type"
	metadataCommissionValue  = "commission_value"
)

// RenewalInvoice identifies a Stripe subscription invoice. Amounts are in cents.
type RenewalInvoice struct {
	InvoiceID            string
	StripeSubscriptionID string
	Total                int64
	// ApplicationFeeAmount is the fee Stripe attached to a paid invoice; nil
	// when the invoice was charged without a split.
	ApplicationFeeAmount *int64
	Destination          string
	Metadata             map[string]string
}

// ApplyRenewalSplit attaches the resolved commission to a draft renewal
// invoice. Unknown subscriptions are ignored.
func (s *Service) ApplyRenewalSplit(ctx context.Context, inv RenewalInvoice) (*split.StripeSplit, error) {
	if s.stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe gateway not configured")
	}
	sub, resolved, err := s.resolveRenewal(ctx, inv)
	if err != nil || sub == nil {
		return nil, err
	}

	stripeSplit := split.Stripe(resolved.decision, resolved.snapshot.ConnectAccountID, resolved.snapshot.StripeEnabled)
	s.metrics.ObserveSplit(string(enums.GatewayStripe), stripeSplit.Applied())
	if !stripeSplit.Applied() {
		return &stripeSplit, nil
	}

	params := &stripe.InvoiceParams{}
	stripeSplit.ApplyToInvoice(params)
	params.AddMetadata(metadataCommissionSource, string(resolved.decision.Source))
	params.AddMetadata(metadataCommissionType, string(resolved.decision.Type))
	params.AddMetadata(metadataCommissionValue, resolved.decision.Value.String())
	started := time.Now()
	_, err = s.stripe.UpdateInvoice(ctx, inv.InvoiceID, params)
	s.metrics.ObserveGatewayCall(string(enums.GatewayStripe), "update_invoice", time.Since(started), err)
	if err != nil {
		s.logError(ctx, "payments.stripe_invoice_update_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stripe invoice")
	}
	return &stripeSplit, nil
}

// RecordRenewalPayment stores the paid renewal with its commission breakdown.
// When the invoice carries an application fee the row records that fee;
// otherwise the commission is resolved against current configuration.
// Replays of the same invoice are no-ops.
func (s *Service) RecordRenewalPayment(ctx context.Context, inv RenewalInvoice) (*models.Payment, error) {
	existing, err := s.repo.FindPaymentByReference(ctx, inv.InvoiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load renewal payment")
	}
	if existing != nil {
		return existing, nil
	}
	if inv.ApplicationFeeAmount != nil {
		return s.recordAppliedRenewal(ctx, inv)
	}

	sub, resolved, err := s.resolveRenewal(ctx, inv)
	if err != nil || sub == nil {
		return nil, err
	}

	stripeSplit := split.Stripe(resolved.decision, resolved.snapshot.ConnectAccountID, resolved.snapshot.StripeEnabled)
	payment := s.newPayment(resolved, enums.GatewayStripe, inv.InvoiceID, stripeSplit.Applied())
	payment.Kind = enums.PaymentKindSubscriptionRenewal
	payment.Status = enums.PaymentStatusPaid
	payment.SubscriptionID = &sub.ID
	if err := s.persist(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) recordAppliedRenewal(ctx context.Context, inv RenewalInvoice) (*models.Payment, error) {
	sub, err := s.findRenewalSubscription(ctx, inv)
	if err != nil || sub == nil {
		return nil, err
	}

	decision := appliedDecision(inv)
	ctx = s.logCtx(ctx, map[string]any{
		"subscription_id":   sub.ID.String(),
		"gateway":           string(enums.GatewayStripe),
		"commission_amount": decision.CommissionAmount.String(),
		"space_amount":      decision.SpaceAmount.String(),
	})
	if decision.Clamped && s.logg != nil {
		s.logg.Warn(ctx, "commission.clamped")
	}

	payment := &models.Payment{
		Kind:               enums.PaymentKindSubscriptionRenewal,
		SubscriptionID:     &sub.ID,
		SpaceID:            sub.SpaceID,
		Gateway:            enums.GatewayStripe,
		GatewayReference:   inv.InvoiceID,
		Status:             enums.PaymentStatusPaid,
		Valor:              decision.TransactionTotal,
		ValorLiquido:       decision.SpaceAmount,
		ComissaoPlataforma: decision.CommissionAmount,
		CommissionSource:   decision.Source,
		CommissionType:     decision.Type,
		CommissionValue:    decision.Value,
		SplitApplied:       strings.TrimSpace(inv.Destination) != "",
	}
	if err := s.persist(ctx, payment); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(ctx, "payments.renewal_recorded_from_invoice")
	}
	return payment, nil
}

// appliedDecision rebuilds the decision from the fee on a paid invoice. The
// terms come from the metadata stamped when the split was applied; without
// them the fee is recorded as a fixed commission.
func appliedDecision(inv RenewalInvoice) commission.Decision {
	total := decimal.New(inv.Total, -2)
	fee := decimal.New(*inv.ApplicationFeeAmount, -2)
	decision := commission.Decision{
		Source:           enums.CommissionSourceGlobal,
		Type:             enums.CommissionTypeFixed,
		Value:            fee,
		TransactionTotal: total,
		CommissionAmount: fee,
	}

	if source, err := enums.ParseCommissionSource(inv.Metadata[metadataCommissionSource]); err == nil {
		decision.Source = source
	}
	if commissionType, err := enums.ParseCommissionType(inv.Metadata[metadataCommissionType]); err == nil {
		if value, err := decimal.NewFromString(inv.Metadata[metadataCommissionValue]); err == nil {
			decision.Type = commissionType
			decision.Value = value
		}
	}

	if decision.CommissionAmount.IsNegative() {
		decision.CommissionAmount = decimal.Zero
		decision.Clamped = true
	}
	if decision.CommissionAmount.GreaterThan(total) {
		decision.CommissionAmount = total
		decision.Clamped = true
	}
	decision.SpaceAmount = total.Sub(decision.CommissionAmount)
	return decision
}

func (s *Service) resolveOrder(ctx context.Context, orderID uuid.UUID, gateway enums.Gateway) (*resolvedOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	snap, err := s.loader.Snapshot(ctx, commissionconfig.SnapshotRequest{
		SpaceID:          order.SpaceID,
		PlanID:           order.PlanID,
		TransactionTotal: order.Valor,
		Gateway:          gateway,
	})
	if err != nil {
		return nil, err
	}

	decision := s.resolve(ctx, snap, gateway)
	return &resolvedOrder{order: order, snapshot: snap, decision: decision}, nil
}

// findRenewalSubscription returns nil without error for subscriptions this
// service does not manage.
func (s *Service) findRenewalSubscription(ctx context.Context, inv RenewalInvoice) (*models.Subscription, error) {
	if strings.TrimSpace(inv.StripeSubscriptionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id missing")
	}
	sub, err := s.repo.FindSubscriptionByStripeID(ctx, inv.StripeSubscriptionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	if sub == nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "stripe_subscription_id", inv.StripeSubscriptionID), "payments.renewal_subscription_unknown")
	}
	return sub, nil
}

func (s *Service) resolveRenewal(ctx context.Context, inv RenewalInvoice) (*models.Subscription, *resolvedOrder, error) {
	sub, err := s.findRenewalSubscription(ctx, inv)
	if err != nil || sub == nil {
		return nil, nil, err
	}

	ctx = s.logCtx(ctx, map[string]any{"subscription_id": sub.ID.String(), "gateway": string(enums.GatewayStripe)})
	planID := sub.PlanID
	snap, err := s.loader.Snapshot(ctx, commissionconfig.SnapshotRequest{
		SpaceID:          sub.SpaceID,
		PlanID:           &planID,
		TransactionTotal: decimal.New(inv.Total, -2),
		Gateway:          enums.GatewayStripe,
	})
	if err != nil {
		return nil, nil, err
	}
	decision := s.resolve(ctx, snap, enums.GatewayStripe)
	return sub, &resolvedOrder{snapshot: snap, decision: decision}, nil
}

// resolve runs the resolver and emits the audit log line and metrics.
func (s *Service) resolve(ctx context.Context, snap *commissionconfig.Snapshot, gateway enums.Gateway) commission.Decision {
	decision := commission.Resolve(snap.Input)
	s.metrics.ObserveDecision(string(decision.Source), string(gateway), decision.Clamped)

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"space_id":          snap.Space.ID.String(),
			"source":            decision.Source,
			"commission_type":   decision.Type,
			"commission_value":  decision.Value.String(),
			"transaction_total": decision.TransactionTotal.String(),
			"commission_amount": decision.CommissionAmount.String(),
			"space_amount":      decision.SpaceAmount.String(),
		})
		s.logg.Info(logCtx, "commission.resolved")
		if decision.Clamped {
			s.logg.Warn(logCtx, "commission.clamped")
		}
	}
	return decision
}

func (s *Service) newPayment(resolved *resolvedOrder, gateway enums.Gateway, reference string, splitApplied bool) *models.Payment {
	decision := resolved.decision
	return &models.Payment{
		Kind:               enums.PaymentKindBooking,
		SpaceID:            resolved.snapshot.Space.ID,
		Gateway:            gateway,
		GatewayReference:   reference,
		Status:             enums.PaymentStatusPending,
		Valor:              decision.TransactionTotal,
		ValorLiquido:       decision.SpaceAmount,
		ComissaoPlataforma: decision.CommissionAmount,
		CommissionSource:   decision.Source,
		CommissionType:     decision.Type,
		CommissionValue:    decision.Value,
		SplitApplied:       splitApplied,
	}
}

// persist stores the payment; a duplicate gateway reference means a retry
// already recorded it.
func (s *Service) persist(ctx context.Context, payment *models.Payment) error {
	err := s.repo.CreatePayment(ctx, payment)
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, "") {
		existing, findErr := s.repo.FindPaymentByReference(ctx, payment.GatewayReference)
		if findErr == nil && existing != nil {
			*payment = *existing
			return nil
		}
	}
	s.logError(ctx, "payments.persist_failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
}

func (s *Service) scope(ctx context.Context, orderID uuid.UUID, gateway enums.Gateway) context.Context {
	return s.logCtx(ctx, map[string]any{"order_id": orderID.String(), "gateway": string(gateway)})
}

func (s *Service) logCtx(ctx context.Context, fields map[string]any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithFields(ctx, fields)
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}

func requireChargeable(resolved *resolvedOrder) error {
	if resolved.order != nil && resolved.order.Status != models.OrderStatusPending {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s", resolved.order.Status)
	}
	if !resolved.decision.TransactionTotal.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}
	return nil
}

func decisionFromPayment(payment *models.Payment) commission.Decision {
	return commission.Decision{
		Source:           payment.CommissionSource,
		Type:             payment.CommissionType,
		Value:            payment.CommissionValue,
		TransactionTotal: payment.Valor,
		CommissionAmount: payment.ComissaoPlataforma,
		SpaceAmount:      payment.ValorLiquido,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
