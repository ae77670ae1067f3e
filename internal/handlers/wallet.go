package handlers

import (
	"walletd/internal/models"
	"walletd/internal/services/wallet"
	"walletd/internal/utils"
	"walletd/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	w, err := h.walletService.CreateWallet(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Wallet created", w)
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	w, err := h.walletService.GetWallet(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Wallet retrieved", w)
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req models.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	entry, err := h.walletService.Deposit(c.UserContext(), req, claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Deposit successful", entry)
}

// Withdraw only admits the withdrawal; the returned job reports the outcome.
func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req models.WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	handle, err := h.walletService.RequestWithdrawal(c.UserContext(), req, claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Accepted(c, "Withdrawal queued", handle)
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req models.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	handle, err := h.walletService.RequestTransfer(c.UserContext(), req, claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Accepted(c, "Transfer queued", handle)
}

// GetJobStatus reports a queued command. Jobs of other users look missing.
func (h *WalletHandler) GetJobStatus(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	job, err := h.walletService.GetJobStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	if commandOwner(job.Command) != claims.UserID {
		return response.FromError(c, wallet.ErrJobNotFound)
	}
	return response.Success(c, "Job retrieved", job)
}

func commandOwner(cmd models.Command) string {
	switch v := cmd.(type) {
	case models.WithdrawCommand:
		return v.UserID
	case models.TransferCommand:
		return v.UserID
	default:
		return ""
	}
}
