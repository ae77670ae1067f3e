// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"walletd/internal/handlers"
	"walletd/internal/metrics"
	"walletd/internal/middleware"
	"walletd/internal/models"
	"walletd/internal/services/transaction"
	"walletd/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
)

// Dependencies are the services the HTTP layer adapts.
type Dependencies struct {
	WalletService  wallet.Service
	HistoryService transaction.Service
	Queue          handlers.QueueInspector
	HealthChecks   map[string]handlers.Pinger
	JWTSecret      string
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	walletHandler := handlers.NewWalletHandler(deps.WalletService)
	transactionHandler := handlers.NewTransactionHandler(deps.WalletService, deps.HistoryService)
	adminHandler := handlers.NewAdminHandler(deps.WalletService, deps.Queue)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)

	// Public endpoints (no auth required)
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", metrics.Handler())

	authMiddleware := middleware.NewAuthMiddleware(deps.JWTSecret)
	api := app.Group("/api", authMiddleware.Handler)

	setupWalletRoutes(api, walletHandler, transactionHandler)
	setupAdminRoutes(api, adminHandler)
}

func setupWalletRoutes(api fiber.Router, walletHandler *handlers.WalletHandler, transactionHandler *handlers.TransactionHandler) {
	readWallet := middleware.HasPermission(models.PermissionWalletRead)
	writeWallet := middleware.HasPermission(models.PermissionWalletWrite)
	readTransactions := middleware.HasPermission(models.PermissionTransactionRead)
	writeTransactions := middleware.HasPermission(models.PermissionTransactionWrite)

	w := api.Group("/wallet")
	w.Post("/create", writeWallet, walletHandler.CreateWallet)
	w.Get("/", readWallet, walletHandler.GetWallet)
	w.Post("/deposit", writeWallet, walletHandler.Deposit)
	w.Post("/withdraw", writeTransactions, walletHandler.Withdraw)
	w.Post("/transfer", writeTransactions, walletHandler.Transfer)
	w.Get("/transactions/:walletId", readTransactions, transactionHandler.GetHistory)
	w.Get("/jobs/:id", readTransactions, walletHandler.GetJobStatus)
}

func setupAdminRoutes(api fiber.Router, adminHandler *handlers.AdminHandler) {
	admin := api.Group("/admin", middleware.HasPermission(models.PermissionLedgerAdmin))
	admin.Get("/wallets/:walletId/verify", adminHandler.VerifyWallet)
	admin.Get("/queue", adminHandler.QueueStats)
}
