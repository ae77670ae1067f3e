package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds the balance of exactly one user. Soft-deleted wallets are
// invisible to every read and free the user's slot for a new wallet.
type Wallet struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_wallets_user_active,where:deleted_at IS NULL" json:"user_id"`
	Balance      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance"`
	BonusBalance decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"bonus_balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}
