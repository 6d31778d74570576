package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

// MemoryAnalysisRepository keeps analyses in a process-wide map. Retention is
// bounded: once maxEntries is exceeded the oldest analyses are evicted, so a
// long-lived process does not grow without limit.
type MemoryAnalysisRepository struct {
	mu         sync.RWMutex
	analyses   map[string]*models.Analysis
	maxEntries int
	log        *zap.SugaredLogger
}

func NewMemoryAnalysisRepository(maxEntries int, log *zap.SugaredLogger) *MemoryAnalysisRepository {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &MemoryAnalysisRepository{
		analyses:   make(map[string]*models.Analysis),
		maxEntries: maxEntries,
		log:        log,
	}
}

func (r *MemoryAnalysisRepository) Save(a *models.Analysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = a
	r.evictIfNeeded()
}

func (r *MemoryAnalysisRepository) Get(id string) *models.Analysis {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.analyses[id]
}

func (r *MemoryAnalysisRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.analyses)
}

// evictIfNeeded removes the oldest analyses past maxEntries. Caller holds the lock.
func (r *MemoryAnalysisRepository) evictIfNeeded() {
	if r.maxEntries <= 0 || len(r.analyses) <= r.maxEntries {
		return
	}
	all := make([]*models.Analysis, 0, len(r.analyses))
	for _, a := range r.analyses {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	for i := 0; i < len(all)-r.maxEntries; i++ {
		if r.log != nil {
			r.log.Infow("evicting old analysis", "analysis_id", all[i].ID, "created_at", all[i].CreatedAt)
		}
		delete(r.analyses, all[i].ID)
	}
}

// MemoryAccessRepository keeps access passes in a process-wide map. A single
// mutex serializes Mutate calls, which is the mutual exclusion the quota
// invariant relies on.
type MemoryAccessRepository struct {
	mu     sync.Mutex
	passes map[string]*models.AccessPass
}

func NewMemoryAccessRepository() *MemoryAccessRepository {
	return &MemoryAccessRepository{passes: make(map[string]*models.AccessPass)}
}

func (r *MemoryAccessRepository) Get(ctx context.Context, userID string) (*models.AccessPass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.passes[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryAccessRepository) Put(ctx context.Context, pass *models.AccessPass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pass.UpdatedAt = time.Now()
	r.passes[pass.UserID] = pass
	return nil
}

func (r *MemoryAccessRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.passes, userID)
	return nil
}

func (r *MemoryAccessRepository) Mutate(ctx context.Context, userID string, fn func(*models.AccessPass) (*models.AccessPass, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated, err := fn(r.passes[userID])
	if err != nil {
		return err
	}
	if updated != nil {
		updated.UpdatedAt = time.Now()
		r.passes[userID] = updated
	}
	return nil
}

// MemoryTransactionRepository keeps transactions keyed by the provider's
// transaction id.
type MemoryTransactionRepository struct {
	mu  sync.RWMutex
	txs map[string]*models.Transaction
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{txs: make(map[string]*models.Transaction)}
}

func (r *MemoryTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	r.txs[tx.ProviderTransactionID] = tx
	return nil
}

func (r *MemoryTransactionRepository) UpdateStatus(ctx context.Context, providerTxID string, status types.TransactionStatus, metadata map[string]any) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[providerTxID]
	if !ok {
		return nil, nil
	}
	tx.Status = status
	tx.UpdatedAt = time.Now()
	if len(metadata) > 0 {
		if tx.Metadata == nil {
			tx.Metadata = map[string]any{}
		}
		for k, v := range metadata {
			tx.Metadata[k] = v
		}
	}
	return tx, nil
}

func (r *MemoryTransactionRepository) GetByProviderID(ctx context.Context, providerTxID string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.txs[providerTxID]
	if !ok {
		return nil, nil
	}
	return tx, nil
}

func (r *MemoryTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, tx := range r.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *MemoryTransactionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Transaction
	for _, tx := range r.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
