package validation

import "github.com/shopspring/decimal"

const (
	// Money columns are numeric(18,2).
	MaxAmountScale         = 2
	MaxAmountIntegerDigits = 16

	// String lengths
	MaxDescriptionLength = 500
	MaxReferenceLength   = 100
)

// DefaultMinTransactionAmount is the smallest deposit, withdrawal or
// transfer accepted.
var DefaultMinTransactionAmount = decimal.NewFromInt(1)

var maxAmountExclusive = decimal.New(1, MaxAmountIntegerDigits)
