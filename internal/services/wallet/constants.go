package wallet

import "time"

// Operation names used in logs and metrics
const (
	OperationCreate            = "create_wallet"
	OperationDeposit           = "deposit"
	OperationRequestWithdrawal = "request_withdrawal"
	OperationRequestTransfer   = "request_transfer"
	OperationWithdraw          = "withdraw"
	OperationTransfer          = "transfer"
	OperationReconcile         = "reconcile"
)

// Operation results
const (
	ResultApplied  = "applied"
	ResultReplayed = "replayed"
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

const (
	CacheNameWallet = "wallet"
	DefaultTimeout  = 30 * time.Second
)
