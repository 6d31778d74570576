// Package repo holds the storage abstractions behind the lease pipeline and
// billing flow. The in-memory implementations are the default and preserve the
// process-lifetime contract; gorm-backed implementations of the access and
// transaction repositories can be substituted via configuration without
// touching the core logic.
package repo

import (
	"context"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

// AnalysisRepository stores completed analyses keyed by their opaque id.
// Analyses are immutable once saved.
type AnalysisRepository interface {
	Save(a *models.Analysis)
	Get(id string) *models.Analysis
	Count() int
}

// AccessRepository stores per-user access passes.
type AccessRepository interface {
	// Get returns the pass for userID, or (nil, nil) when absent.
	Get(ctx context.Context, userID string) (*models.AccessPass, error)
	Put(ctx context.Context, pass *models.AccessPass) error
	Delete(ctx context.Context, userID string) error
	// Mutate runs fn under per-user mutual exclusion. fn receives the current
	// pass (nil when absent) and returns the pass to persist, or nil to leave
	// the store untouched. The exclusivity is what keeps concurrent consume
	// calls from overrunning the quota.
	Mutate(ctx context.Context, userID string, fn func(*models.AccessPass) (*models.AccessPass, error)) error
}

// TransactionRepository stores checkout transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// UpdateStatus transitions the transaction identified by the provider's
	// transaction id and merges metadata. Returns (nil, nil) when the id is
	// unknown.
	UpdateStatus(ctx context.Context, providerTxID string, status types.TransactionStatus, metadata map[string]any) (*models.Transaction, error)
	GetByProviderID(ctx context.Context, providerTxID string) (*models.Transaction, error)
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	// ListByUser returns the user's transactions, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error)
}
