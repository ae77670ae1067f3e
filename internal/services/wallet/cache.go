package wallet

import (
	"context"

	"go.uber.org/zap"
)

// invalidateWalletCaches drops the cached balance of userID and every cached
// history page of walletID. Runs after commit; failures only get logged.
func (s *service) invalidateWalletCaches(ctx context.Context, userID, walletID string) {
	if err := s.cache.InvalidateWallet(ctx, userID); err != nil {
		zap.L().Warn("failed to invalidate wallet cache",
			zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.cache.InvalidateHistory(ctx, walletID); err != nil {
		zap.L().Warn("failed to invalidate transaction history cache",
			zap.String("wallet_id", walletID), zap.Error(err))
	}
}

// invalidateTransferCaches invalidates cache for both sides of
// a transfer.
func (s *service) invalidateTransferCaches(ctx context.Context, sourceUserID, sourceWalletID, destUserID, destWalletID string) {
	s.invalidateWalletCaches(ctx, sourceUserID, sourceWalletID)
	s.invalidateWalletCaches(ctx, destUserID, destWalletID)
}
