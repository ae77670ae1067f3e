package validation

import (
	"fmt"
	"strings"

	"walletd/internal/errors"
	"walletd/internal/models"

	"github.com/shopspring/decimal"
)

// ValidateAmount checks that amount is a positive money value of at most two
// decimal places, at least minAmount and representable in a numeric(18,2) column.
func ValidateAmount(amount, minAmount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return errors.ErrInvalidAmount.WithMessage("amount must be positive")
	case !amount.Equal(amount.Round(MaxAmountScale)):
		return errors.ErrInvalidAmount.WithMessage("amount must have at most %d decimal places", MaxAmountScale)
	case amount.LessThan(minAmount):
		return errors.ErrInvalidAmount.WithMessage("amount must be at least %s", minAmount.StringFixed(MaxAmountScale))
	case amount.GreaterThanOrEqual(maxAmountExclusive):
		return errors.ErrInvalidAmount.WithMessage("amount is too large")
	}
	return nil
}

func ValidateDepositRequest(req models.DepositRequest, minAmount decimal.Decimal) error {
	v := New()
	v.UUID("wallet_id", req.WalletID)
	if !v.Valid() {
		return errors.ErrInvalidRequest.WithMessage("%s", v.Error())
	}
	return ValidateAmount(req.Amount, minAmount)
}

func ValidateWithdrawRequest(req models.WithdrawRequest, minAmount decimal.Decimal) error {
	v := New()
	v.UUID("wallet_id", req.WalletID)
	checkReference(v, req.Reference)
	v.MaxLength("description", req.Description, MaxDescriptionLength)
	if !v.Valid() {
		return errors.ErrInvalidRequest.WithMessage("%s", v.Error())
	}
	return ValidateAmount(req.Amount, minAmount)
}

func ValidateTransferRequest(req models.TransferRequest, minAmount decimal.Decimal) error {
	v := New()
	v.UUID("source_wallet_id", req.SourceWalletID)
	v.UUID("destination_wallet_id", req.DestinationWalletID)
	v.Required("reference", req.Reference)
	checkReference(v, req.Reference)
	v.MaxLength("description", req.Description, MaxDescriptionLength)
	if !v.Valid() {
		return errors.ErrInvalidRequest.WithMessage("%s", v.Error())
	}
	if req.SourceWalletID == req.DestinationWalletID {
		return errors.ErrSameWallet
	}
	return ValidateAmount(req.Amount, minAmount)
}

// checkReference bounds a caller-chosen reference. The credit prefix is
// reserved for the entries transfers derive from their reference.
func checkReference(v *Validator, reference string) {
	v.MaxLength("reference", reference, MaxReferenceLength)
	v.Check(!strings.HasPrefix(reference, models.CreditReferencePrefix),
		"reference", fmt.Sprintf("must not start with %q", models.CreditReferencePrefix))
}
