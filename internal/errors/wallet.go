package errors

var (
	ErrWalletExists = &DomainError{
		Kind:    KindConflict,
		Code:    "WALLET_EXISTS",
		Message: "wallet already exists for user",
	}
	ErrWalletNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrInsufficientBalance = &DomainError{
		Kind:    KindInsufficientFunds,
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Kind:    KindBadAmount,
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrSameWallet = &DomainError{
		Kind:    KindBadRequest,
		Code:    "SAME_WALLET",
		Message: "source and destination wallets must differ",
	}
	ErrInvalidRequest = &DomainError{
		Kind:    KindBadRequest,
		Code:    "INVALID_REQUEST",
		Message: "invalid request",
	}
	// ErrReferenceConflict means a command reference is already used by a
	// ledger entry that this command did not write.
	ErrReferenceConflict = &DomainError{
		Kind:    KindConflict,
		Code:    "REFERENCE_CONFLICT",
		Message: "reference already used by another operation",
	}
	ErrJobNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "JOB_NOT_FOUND",
		Message: "job not found",
	}
)

var (
	ErrInvalidRange = &DomainError{
		Kind:    KindInvalidRange,
		Code:    "INVALID_RANGE",
		Message: "invalid date range",
	}
	ErrInvalidPagination = &DomainError{
		Kind:    KindInvalidRange,
		Code:    "INVALID_PAGINATION",
		Message: "invalid pagination parameters",
	}
)
