package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/app/service/entitlement"
	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/internal/platform/payment"
	"github.com/leaselens/leaselens/internal/repo"
	cfgpkg "github.com/leaselens/leaselens/pkg/config"
	"github.com/leaselens/leaselens/pkg/metrics"
	"github.com/leaselens/leaselens/pkg/types"
)

const testAPIKey = "test-webhook-key"

func testConfig() *cfgpkg.Config {
	return &cfgpkg.Config{
		Payment: cfgpkg.PaymentConfig{
			APIKey:       testAPIKey,
			ProductID:    "prod_1",
			PriceID:      "pri_1",
			Environment:  "sandbox",
			FrontendURL:  "https://example.com",
			PassPriceUSD: 9.90,
		},
		Access: cfgpkg.AccessConfig{PassDays: 30, LeaseQuota: 5},
	}
}

type fixture struct {
	svc          *Service
	transactions *repo.MemoryTransactionRepository
	entitlement  *entitlement.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	log := zap.NewNop().Sugar()

	provider, err := payment.NewClient(cfg, log)
	require.NoError(t, err)

	transactions := repo.NewMemoryTransactionRepository()
	ent := entitlement.NewService(cfg, repo.NewMemoryAccessRepository(), log)
	return &fixture{
		svc:          NewService(cfg, log, provider, transactions, ent, metrics.New()),
		transactions: transactions,
		entitlement:  ent,
	}
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testAPIKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func successBody(eventType, txID, userID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event_type":%q,"data":{"id":%q,"custom_data":{"user_id":%q}}}`,
		eventType, txID, userID))
}

func pendingTx(id string) *models.Transaction {
	return &models.Transaction{
		ID:                    "internal-" + id,
		ProviderTransactionID: id,
		UserID:                "u1",
		Amount:                9.90,
		Currency:              "USD",
		Status:                types.TransactionStatusPending,
	}
}

func TestHandleWebhookMissingSignature(t *testing.T) {
	f := newFixture(t)
	err := f.svc.HandleWebhook(context.Background(), successBody("transaction.completed", "txn_1", "u1"), "")
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestHandleWebhookBadSignature(t *testing.T) {
	f := newFixture(t)
	body := successBody("transaction.completed", "txn_1", "u1")

	sig := []byte(sign(body))
	sig[0] ^= 1 // single hex digit off
	err := f.svc.HandleWebhook(context.Background(), body, string(sig))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestHandleWebhookSuccessGrantsAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.transactions.Create(ctx, pendingTx("txn_1")))

	body := successBody("transaction.completed", "txn_1", "u1")
	require.NoError(t, f.svc.HandleWebhook(ctx, body, sign(body)))

	tx, err := f.transactions.GetByProviderID(ctx, "txn_1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, types.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, "transaction.completed", tx.Metadata["event_type"])
	assert.NotEmpty(t, tx.Metadata["webhook_received_at"])

	assert.True(t, f.entitlement.Check(ctx, "u1").HasAccess)
}

func TestHandleWebhookSuccessEventVariants(t *testing.T) {
	for _, eventType := range []string{"transaction.billed", "subscription.activated"} {
		f := newFixture(t)
		ctx := context.Background()

		body := successBody(eventType, "txn_1", "u1")
		require.NoError(t, f.svc.HandleWebhook(ctx, body, sign(body)))
		assert.True(t, f.entitlement.Check(ctx, "u1").HasAccess, eventType)
	}
}

func TestHandleWebhookFailureMarksTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.transactions.Create(ctx, pendingTx("txn_1")))

	body := successBody("transaction.payment_failed", "txn_1", "u1")
	require.NoError(t, f.svc.HandleWebhook(ctx, body, sign(body)))

	tx, err := f.transactions.GetByProviderID(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, types.TransactionStatusFailed, tx.Status)
	assert.Equal(t, "transaction.payment_failed", tx.Metadata["failure_reason"])

	assert.False(t, f.entitlement.Check(ctx, "u1").HasAccess)
}

func TestHandleWebhookIgnoresUnknownEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.transactions.Create(ctx, pendingTx("txn_1")))

	body := successBody("transaction.updated", "txn_1", "u1")
	require.NoError(t, f.svc.HandleWebhook(ctx, body, sign(body)))

	tx, err := f.transactions.GetByProviderID(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, types.TransactionStatusPending, tx.Status)
}

func TestHandleWebhookSuccessWithoutUserIDGrantsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.transactions.Create(ctx, pendingTx("txn_1")))

	body := []byte(`{"event_type":"transaction.completed","data":{"id":"txn_1","custom_data":{}}}`)
	require.NoError(t, f.svc.HandleWebhook(ctx, body, sign(body)))

	tx, err := f.transactions.GetByProviderID(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, types.TransactionStatusPending, tx.Status)
}

func TestCreateCheckoutShortCircuitsWithAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.entitlement.Grant(ctx, "u1", 30)
	require.NoError(t, err)

	res, err := f.svc.CreateCheckout(ctx, "u1", "u1@example.com")
	require.NoError(t, err)
	assert.True(t, res.AlreadyHasAccess)
	assert.Empty(t, res.CheckoutURL)
}

func TestGetTransactionResolvesBothIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.transactions.Create(ctx, pendingTx("txn_1")))

	byProvider, err := f.svc.GetTransaction(ctx, "txn_1")
	require.NoError(t, err)
	require.NotNil(t, byProvider)

	byInternal, err := f.svc.GetTransaction(ctx, "internal-txn_1")
	require.NoError(t, err)
	require.NotNil(t, byInternal)
	assert.Equal(t, byProvider.ID, byInternal.ID)

	missing, err := f.svc.GetTransaction(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListOrdersLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, f.transactions.Create(ctx, pendingTx(fmt.Sprintf("txn_%d", i))))
	}

	orders, err := f.svc.ListOrders(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, orders, 10)

	orders, err = f.svc.ListOrders(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}
