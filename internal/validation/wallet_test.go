package validation

import (
	"testing"

	"walletd/internal/errors"
	"walletd/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const (
	walletA = "0b5d3c4e-1f2a-4b6c-8d9e-0a1b2c3d4e5f"
	walletB = "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
)

func TestValidateAmount(t *testing.T) {
	minAmount := DefaultMinTransactionAmount
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "minimum", amount: "1", wantErr: false},
		{name: "two decimals", amount: "10.25", wantErr: false},
		{name: "trailing zeros", amount: "10.500", wantErr: false},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5", wantErr: true},
		{name: "below minimum", amount: "0.99", wantErr: true},
		{name: "three decimals", amount: "1.001", wantErr: true},
		{name: "too large", amount: "10000000000000000", wantErr: true},
		{name: "largest", amount: "9999999999999999.99", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount), minAmount)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidAmount)
				assert.True(t, errors.IsKind(err, errors.KindBadAmount))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransferRequest(t *testing.T) {
	valid := models.TransferRequest{
		SourceWalletID:      walletA,
		DestinationWalletID: walletB,
		Amount:              decimal.NewFromInt(40),
		Reference:           "r1",
	}

	tests := []struct {
		name    string
		mutate  func(*models.TransferRequest)
		wantErr error
	}{
		{name: "valid", mutate: func(*models.TransferRequest) {}},
		{name: "missing reference", mutate: func(r *models.TransferRequest) { r.Reference = " " }, wantErr: errors.ErrInvalidRequest},
		{name: "reserved credit prefix", mutate: func(r *models.TransferRequest) { r.Reference = "credit-r1" }, wantErr: errors.ErrInvalidRequest},
		{name: "bad source id", mutate: func(r *models.TransferRequest) { r.SourceWalletID = "abc" }, wantErr: errors.ErrInvalidRequest},
		{name: "same wallet", mutate: func(r *models.TransferRequest) { r.DestinationWalletID = walletA }, wantErr: errors.ErrSameWallet},
		{name: "bad amount", mutate: func(r *models.TransferRequest) { r.Amount = decimal.Zero }, wantErr: errors.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := ValidateTransferRequest(req, DefaultMinTransactionAmount)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateWithdrawRequest(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		wantErr   error
	}{
		{name: "generated reference", reference: ""},
		{name: "caller reference", reference: "payout-7"},
		{name: "reserved credit prefix", reference: models.CreditReference("r1"), wantErr: errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := models.WithdrawRequest{WalletID: walletA, Amount: decimal.NewFromInt(5), Reference: tt.reference}
			err := ValidateWithdrawRequest(req, DefaultMinTransactionAmount)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidator_ErrorIsStable(t *testing.T) {
	v := New()
	v.Required("reference", "")
	v.UUID("wallet_id", "nope")
	v.AddError("wallet_id", "ignored")

	assert.False(t, v.Valid())
	assert.Equal(t, "reference must not be empty; wallet_id must be a valid UUID", v.Error())
}
