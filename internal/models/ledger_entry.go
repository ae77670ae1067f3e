package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeCredit EntryType = "CREDIT"
	EntryTypeDebit  EntryType = "DEBIT"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed:
		return true
	}
	return false
}

// CreditReferencePrefix marks the credit half of a transfer pair.
const CreditReferencePrefix = "credit-"

// CreditReference returns the reference of the credit entry paired with the
// debit entry carrying ref.
func CreditReference(ref string) string {
	return CreditReferencePrefix + ref
}

// LedgerEntry is an immutable record of one committed balance change on
// WalletID. BalanceBefore and BalanceAfter are snapshots of that wallet.
type LedgerEntry struct {
	ID                  string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	WalletID            string          `gorm:"type:varchar(36);not null;index:idx_ledger_wallet_created,priority:1" json:"wallet_id"`
	SourceWalletID      string          `gorm:"type:varchar(36);not null;index:idx_ledger_source_created,priority:1" json:"source_wallet_id"`
	DestinationWalletID string          `gorm:"type:varchar(36);not null;index" json:"destination_wallet_id"`
	Amount              decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Type                EntryType       `gorm:"type:varchar(10);not null" json:"type"`
	Description         string          `gorm:"type:varchar(500)" json:"description"`
	BalanceBefore       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance_before"`
	BalanceAfter        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance_after"`
	Reference           string          `gorm:"type:varchar(150);not null;uniqueIndex" json:"reference"`
	PaymentStatus       PaymentStatus   `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"payment_status"`
	Metadata            JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt           time.Time       `gorm:"index:idx_ledger_wallet_created,priority:2;index:idx_ledger_source_created,priority:2" json:"created_at"`
}
