package models

import "github.com/shopspring/decimal"

// DepositRequest credits the caller's own wallet immediately.
type DepositRequest struct {
	WalletID string          `json:"wallet_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// WithdrawRequest asks for an asynchronous debit of the caller's wallet.
// Reference is optional; one is generated when empty.
type WithdrawRequest struct {
	WalletID    string          `json:"wallet_id"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
}

// TransferRequest asks for an asynchronous move of funds from the caller's
// wallet to any other wallet. Reference is the client's idempotency key.
type TransferRequest struct {
	SourceWalletID      string          `json:"source_wallet_id"`
	DestinationWalletID string          `json:"destination_wallet_id"`
	Amount              decimal.Decimal `json:"amount"`
	Reference           string          `json:"reference"`
	Description         string          `json:"description,omitempty"`
}
