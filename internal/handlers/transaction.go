package handlers

import (
	"walletd/internal/services/transaction"
	"walletd/internal/services/wallet"
	"walletd/internal/utils"
	"walletd/internal/utils/pagination"
	"walletd/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	walletService  wallet.Service
	historyService transaction.Service
}

func NewTransactionHandler(walletService wallet.Service, historyService transaction.Service) *TransactionHandler {
	return &TransactionHandler{
		walletService:  walletService,
		historyService: historyService,
	}
}

// GetHistory lists the ledger of one of the caller's wallets.
func (h *TransactionHandler) GetHistory(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	walletID := c.Params("walletId")
	owned, err := h.walletService.GetWallet(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	if owned.ID != walletID {
		return response.FromError(c, wallet.ErrWalletNotFound)
	}

	page, limit, err := pagination.ParseFromRequest(c)
	if err != nil {
		return response.FromError(c, transaction.ErrInvalidPagination.WithMessage("page and limit must be integers"))
	}

	result, err := h.historyService.GetHistory(c.UserContext(), walletID, transaction.HistoryQuery{
		Page:   page,
		Limit:  limit,
		Order:  c.Query("order"),
		Status: c.Query("status"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(result)
}
