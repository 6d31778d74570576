package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/leaselens/leaselens/pkg/types"
)

// Transaction is one checkout attempt against the payment provider. Created
// in pending state when the checkout session is opened; transitioned only by
// webhook events.
type Transaction struct {
	ID string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	// ProviderTransactionID is the payment provider's transaction id, unique
	// across all records.
	ProviderTransactionID string                  `gorm:"column:provider_transaction_id;type:varchar(64);not null;uniqueIndex" json:"provider_transaction_id"`
	UserID                string                  `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	ProductID             string                  `gorm:"column:product_id;type:varchar(64);not null" json:"product_id"`
	PriceID               string                  `gorm:"column:price_id;type:varchar(64);not null" json:"price_id"`
	Amount                float64                 `gorm:"column:amount;not null" json:"amount"`
	Currency              string                  `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status                types.TransactionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CustomerEmail         string                  `gorm:"column:customer_email;type:varchar(255)" json:"customer_email,omitempty"`
	Metadata              datatypes.JSONMap       `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transaction"
}
