// Package billing owns the checkout flow and webhook processing that turn a
// payment into an access pass.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/app/service/entitlement"
	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/internal/platform/payment"
	"github.com/leaselens/leaselens/internal/repo"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
	"github.com/leaselens/leaselens/pkg/metrics"
	"github.com/leaselens/leaselens/pkg/tool"
	"github.com/leaselens/leaselens/pkg/types"
)

var (
	// ErrMissingSignature maps to a 401 with a distinct message from a bad
	// signature; callers must not conflate the two.
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("invalid webhook signature")
)

// CheckoutResult carries the provider redirect. An empty CheckoutURL with
// AlreadyHasAccess set means no session was opened because none is needed.
type CheckoutResult struct {
	CheckoutURL      string
	TransactionID    string
	AlreadyHasAccess bool
}

type Service struct {
	cfg          *cfgpkg.Config
	log          *zap.SugaredLogger
	provider     *payment.Client
	transactions repo.TransactionRepository
	entitlement  *entitlement.Service
	metrics      *metrics.Metrics
}

func NewService(
	cfg *cfgpkg.Config,
	log *zap.SugaredLogger,
	provider *payment.Client,
	transactions repo.TransactionRepository,
	ent *entitlement.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		cfg:          cfg,
		log:          log,
		provider:     provider,
		transactions: transactions,
		entitlement:  ent,
		metrics:      m,
	}
}

// CreateCheckout opens a provider checkout session and records a pending
// transaction. Users who still hold a usable pass are short-circuited.
func (s *Service) CreateCheckout(ctx context.Context, userID, email string) (*CheckoutResult, error) {
	if res := s.entitlement.Check(ctx, userID); res.HasAccess {
		s.log.Infow("checkout skipped, user already has access", "user_id", userID)
		return &CheckoutResult{AlreadyHasAccess: true}, nil
	}

	session, err := s.provider.CreateCheckout(ctx, userID, email)
	if err != nil {
		s.metrics.AdapterFailures.WithLabelValues("payment").Inc()
		return nil, err
	}

	tx := &models.Transaction{
		ID:                    tool.GenerateUUIDV7(),
		ProviderTransactionID: session.TransactionID,
		UserID:                userID,
		ProductID:             s.cfg.Payment.ProductID,
		PriceID:               s.cfg.Payment.PriceID,
		Amount:                s.cfg.Payment.PassPriceUSD,
		Currency:              "USD",
		Status:                types.TransactionStatusPending,
		CustomerEmail:         email,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record pending transaction: %w", err)
	}

	return &CheckoutResult{CheckoutURL: session.CheckoutURL, TransactionID: session.TransactionID}, nil
}

// HandleWebhook verifies and applies one provider notification. Success
// events complete the transaction and grant the pass; failure events mark it
// failed; anything else is acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if signature == "" {
		return ErrMissingSignature
	}
	if !s.provider.VerifySignature(rawBody, signature) {
		s.log.Warnw("webhook signature verification failed")
		return ErrBadSignature
	}

	event, err := s.provider.ParseWebhook(rawBody)
	if err != nil {
		return err
	}

	switch {
	case payment.IsSuccessEvent(event.Type):
		return s.applySuccess(ctx, event)
	case payment.IsFailureEvent(event.Type):
		return s.applyFailure(ctx, event)
	default:
		s.log.Infow("ignoring webhook event", "event_type", event.Type)
		s.metrics.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		return nil
	}
}

func (s *Service) applySuccess(ctx context.Context, event *payment.Event) error {
	if event.TransactionID == "" || event.UserID == "" {
		s.log.Warnw("success event missing transaction or user id", "event_type", event.Type)
		s.metrics.WebhookEvents.WithLabelValues(event.Type, "incomplete").Inc()
		return nil
	}

	tx, err := s.transactions.UpdateStatus(ctx, event.TransactionID, types.TransactionStatusCompleted, map[string]any{
		"webhook_received_at": time.Now().UTC().Format(time.RFC3339),
		"event_type":          event.Type,
	})
	if err != nil {
		return fmt.Errorf("failed to complete transaction: %w", err)
	}
	if tx == nil {
		// Webhooks can arrive for sessions this instance never opened, e.g.
		// after a restart with in-memory storage. The pass is still granted.
		s.log.Warnw("success event for unknown transaction", "transaction_id", event.TransactionID)
	}

	if _, err := s.entitlement.Grant(ctx, event.UserID, s.cfg.Access.PassDays); err != nil {
		return err
	}
	s.metrics.WebhookEvents.WithLabelValues(event.Type, "completed").Inc()
	s.log.Infow("payment completed, access granted",
		"user_id", event.UserID, "transaction_id", event.TransactionID)
	return nil
}

func (s *Service) applyFailure(ctx context.Context, event *payment.Event) error {
	if event.TransactionID == "" {
		s.metrics.WebhookEvents.WithLabelValues(event.Type, "incomplete").Inc()
		return nil
	}
	_, err := s.transactions.UpdateStatus(ctx, event.TransactionID, types.TransactionStatusFailed, map[string]any{
		"failure_reason": event.Type,
		"event_type":     event.Type,
	})
	if err != nil {
		return fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	s.metrics.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
	s.log.Infow("payment failed", "transaction_id", event.TransactionID, "event_type", event.Type)
	return nil
}

// GetTransaction resolves by provider transaction id first, then by internal
// id. Returns (nil, nil) when neither matches.
func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.transactions.GetByProviderID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx != nil {
		return tx, nil
	}
	return s.transactions.GetByID(ctx, id)
}

// ListOrders returns the user's transactions, newest first, capped at limit
// (default 10 when limit <= 0).
func (s *Service) ListOrders(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	orders, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// CheckAccess exposes the entitlement decision to the billing surface.
func (s *Service) CheckAccess(ctx context.Context, userID string) entitlement.CheckResult {
	return s.entitlement.Check(ctx, userID)
}
