package transaction

import domain "walletd/internal/errors"

// Service errors
var (
	ErrInvalidRange      = domain.ErrInvalidRange
	ErrInvalidPagination = domain.ErrInvalidPagination
)
