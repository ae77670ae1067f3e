package wallet

import (
	"errors"

	domain "walletd/internal/errors"
)

// Service errors
var (
	ErrWalletExists        = domain.ErrWalletExists
	ErrWalletNotFound      = domain.ErrWalletNotFound
	ErrInsufficientBalance = domain.ErrInsufficientBalance
	ErrInvalidAmount       = domain.ErrInvalidAmount
	ErrJobNotFound         = domain.ErrJobNotFound
	ErrSameWallet          = domain.ErrSameWallet
	ErrInvalidRequest      = domain.ErrInvalidRequest
	ErrReferenceConflict   = domain.ErrReferenceConflict

	// ErrLedgerMismatch means a stored balance disagrees with the sum of its
	// ledger entries.
	ErrLedgerMismatch = errors.New("wallet balance does not match ledger")
)

// IsTerminal reports whether an execution error will fail again on retry:
// the command itself is unacceptable against the current ledger.
func IsTerminal(err error) bool {
	kind, ok := domain.KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case domain.KindInsufficientFunds, domain.KindNotFound, domain.KindBadAmount, domain.KindBadRequest, domain.KindConflict:
		return true
	}
	return false
}
