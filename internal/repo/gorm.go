package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/types"
)

// GormAccessRepository persists access passes. Mutate uses a row lock so the
// read-modify-write is exclusive per user even across processes.
type GormAccessRepository struct {
	db *gorm.DB
}

func NewGormAccessRepository(db *gorm.DB) *GormAccessRepository {
	return &GormAccessRepository{db: db}
}

func (r *GormAccessRepository) Get(ctx context.Context, userID string) (*models.AccessPass, error) {
	var pass models.AccessPass
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pass).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load access pass: %w", err)
	}
	return &pass, nil
}

func (r *GormAccessRepository) Put(ctx context.Context, pass *models.AccessPass) error {
	pass.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(pass).Error
	if err != nil {
		return fmt.Errorf("failed to save access pass: %w", err)
	}
	return nil
}

func (r *GormAccessRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessPass{}).Error
}

func (r *GormAccessRepository) Mutate(ctx context.Context, userID string, fn func(*models.AccessPass) (*models.AccessPass, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current *models.AccessPass
		var pass models.AccessPass
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&pass).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			current = nil
		case err != nil:
			return fmt.Errorf("failed to lock access pass: %w", err)
		default:
			current = &pass
		}

		updated, err := fn(current)
		if err != nil {
			return err
		}
		if updated == nil {
			return nil
		}
		updated.UpdatedAt = time.Now()
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(updated).Error
	})
}

// GormTransactionRepository persists checkout transactions.
type GormTransactionRepository struct {
	db *gorm.DB
}

func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *GormTransactionRepository) UpdateStatus(ctx context.Context, providerTxID string, status types.TransactionStatus, metadata map[string]any) (*models.Transaction, error) {
	var out *models.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("provider_transaction_id = ?", providerTxID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to lock transaction: %w", err)
		}
		rec.Status = status
		if len(metadata) > 0 {
			if rec.Metadata == nil {
				rec.Metadata = map[string]any{}
			}
			for k, v := range metadata {
				rec.Metadata[k] = v
			}
		}
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r *GormTransactionRepository) GetByProviderID(ctx context.Context, providerTxID string) (*models.Transaction, error) {
	var rec models.Transaction
	err := r.db.WithContext(ctx).Where("provider_transaction_id = ?", providerTxID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &rec, nil
}

func (r *GormTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var rec models.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &rec, nil
}

func (r *GormTransactionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	var recs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return recs, nil
}
