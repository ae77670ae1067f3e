// Command admin_seed prepares a development ledger: it creates a funded
// wallet for each user in SEED_USERS and prints bearer tokens for them, plus
// an operator token for ADMIN_USER_ID when set.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"walletd/internal/bootstrap"
	"walletd/internal/config"
	applogger "walletd/internal/logger"
	"walletd/internal/models"
	"walletd/internal/services/wallet"
	"walletd/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	_, syncLogger := applogger.Initialize()
	defer syncLogger()

	users := config.GetListEnv("SEED_USERS")
	if len(users) == 0 {
		users = []string{"alice", "bob"}
	}
	deposit, err := decimal.NewFromString(config.GetEnv("SEED_DEPOSIT", "100.00"))
	if err != nil {
		log.Fatalf("Invalid SEED_DEPOSIT: %v", err)
	}
	ttl := config.GetDurationEnv("SEED_TOKEN_TTL", 24*time.Hour)

	deps, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			zap.L().Warn("failed to release resources", zap.Error(err))
		}
	}()

	ctx := context.Background()
	for _, userID := range users {
		w, err := seedWallet(ctx, deps.WalletService, userID, deposit)
		if err != nil {
			log.Fatalf("Failed to seed wallet for %s: %v", userID, err)
		}
		token, err := utils.GenerateToken(cfg.JWTSecret, models.UserClaims{
			UserID:      userID,
			Role:        "user",
			Permissions: models.GetDefaultPermissions("user"),
		}, ttl)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", userID, err)
		}
		fmt.Printf("%s\twallet=%s\tbalance=%s\ttoken=%s\n", userID, w.ID, w.Balance.StringFixed(2), token)
	}

	if adminID := config.GetEnv("ADMIN_USER_ID", ""); adminID != "" {
		token, err := utils.GenerateToken(cfg.JWTSecret, models.UserClaims{
			UserID:      adminID,
			Role:        "admin",
			Permissions: models.GetDefaultPermissions("admin"),
		}, ttl)
		if err != nil {
			log.Fatalf("Failed to sign admin token: %v", err)
		}
		fmt.Printf("%s\tadmin\ttoken=%s\n", adminID, token)
	}
}

// seedWallet creates the user's wallet and funds it. A wallet that already
// exists is left untouched.
func seedWallet(ctx context.Context, svc wallet.Service, userID string, amount decimal.Decimal) (*models.Wallet, error) {
	w, err := svc.CreateWallet(ctx, userID)
	if errors.Is(err, wallet.ErrWalletExists) {
		zap.L().Info("wallet already seeded", zap.String("user_id", userID))
		return svc.GetWallet(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	if amount.IsPositive() {
		if _, err := svc.Deposit(ctx, models.DepositRequest{WalletID: w.ID, Amount: amount}, userID); err != nil {
			return nil, err
		}
	}
	return svc.GetWallet(ctx, userID)
}
