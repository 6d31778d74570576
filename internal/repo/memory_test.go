package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

func TestAnalysisRepositoryEvictsOldest(t *testing.T) {
	r := NewMemoryAnalysisRepository(3, zap.NewNop().Sugar())
	base := time.Now()
	for i := 0; i < 5; i++ {
		r.Save(&models.Analysis{
			ID:        fmt.Sprintf("a%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	assert.Equal(t, 3, r.Count())
	assert.Nil(t, r.Get("a0"))
	assert.Nil(t, r.Get("a1"))
	assert.NotNil(t, r.Get("a2"))
	assert.NotNil(t, r.Get("a4"))
}

func TestAnalysisRepositoryUnlimitedWhenZero(t *testing.T) {
	r := NewMemoryAnalysisRepository(0, zap.NewNop().Sugar())
	for i := 0; i < 10; i++ {
		r.Save(&models.Analysis{ID: fmt.Sprintf("a%d", i), CreatedAt: time.Now()})
	}
	assert.Equal(t, 10, r.Count())
}

func TestAccessRepositoryMutate(t *testing.T) {
	r := NewMemoryAccessRepository()
	ctx := context.Background()

	// First call sees no record.
	err := r.Mutate(ctx, "u1", func(p *models.AccessPass) (*models.AccessPass, error) {
		require.Nil(t, p)
		return &models.AccessPass{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})
	require.NoError(t, err)

	// Second call sees the persisted record; returning nil leaves it untouched.
	err = r.Mutate(ctx, "u1", func(p *models.AccessPass) (*models.AccessPass, error) {
		require.NotNil(t, p)
		return nil, nil
	})
	require.NoError(t, err)

	got, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)

	// Errors from fn do not persist anything.
	err = r.Mutate(ctx, "u2", func(p *models.AccessPass) (*models.AccessPass, error) {
		return &models.AccessPass{UserID: "u2"}, fmt.Errorf("boom")
	})
	require.Error(t, err)
	got, err = r.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccessRepositoryGetReturnsCopy(t *testing.T) {
	r := NewMemoryAccessRepository()
	ctx := context.Background()
	require.NoError(t, r.Put(ctx, &models.AccessPass{UserID: "u1"}))

	got, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	got.AnalysisIDs = append(got.AnalysisIDs, "leaked")

	again, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, again.AnalysisIDs)
}

func TestTransactionRepositoryUpdateStatus(t *testing.T) {
	r := NewMemoryTransactionRepository()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &models.Transaction{
		ID:                    "internal-1",
		ProviderTransactionID: "txn_1",
		UserID:                "u1",
		Status:                types.TransactionStatusPending,
	}))

	tx, err := r.UpdateStatus(ctx, "txn_1", types.TransactionStatusCompleted, map[string]any{"event_type": "transaction.completed"})
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, types.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, "transaction.completed", tx.Metadata["event_type"])

	// Unknown id is not an error.
	tx, err = r.UpdateStatus(ctx, "txn_missing", types.TransactionStatusCompleted, nil)
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestTransactionRepositoryLookupsAndListing(t *testing.T) {
	r := NewMemoryTransactionRepository()
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 3; i++ {
		tx := &models.Transaction{
			ID:                    fmt.Sprintf("internal-%d", i),
			ProviderTransactionID: fmt.Sprintf("txn_%d", i),
			UserID:                "u1",
		}
		require.NoError(t, r.Create(ctx, tx))
		tx.CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}

	byProvider, err := r.GetByProviderID(ctx, "txn_1")
	require.NoError(t, err)
	require.NotNil(t, byProvider)
	assert.Equal(t, "internal-1", byProvider.ID)

	byID, err := r.GetByID(ctx, "internal-2")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "txn_2", byID.ProviderTransactionID)

	list, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Newest first.
	assert.Equal(t, "txn_2", list[0].ProviderTransactionID)
	assert.Equal(t, "txn_0", list[2].ProviderTransactionID)

	empty, err := r.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
