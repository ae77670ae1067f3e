package handlers

import (
	"context"
	"errors"

	"walletd/internal/queue"
	"walletd/internal/services/wallet"
	"walletd/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// QueueInspector exposes the queue's bookkeeping to operators.
type QueueInspector interface {
	Stats(ctx context.Context) (*queue.Stats, error)
	DeadLetters(ctx context.Context, limit int64) ([]string, error)
}

type AdminHandler struct {
	walletService wallet.Service
	queue         QueueInspector
}

func NewAdminHandler(walletService wallet.Service, q QueueInspector) *AdminHandler {
	return &AdminHandler{walletService: walletService, queue: q}
}

// VerifyWallet compares one wallet's balance with its ledger.
func (h *AdminHandler) VerifyWallet(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	totals, err := h.walletService.VerifyConservation(c.UserContext(), walletID)
	if errors.Is(err, wallet.ErrLedgerMismatch) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   err.Error(),
			"credits": totals.Credits,
			"debits":  totals.Debits,
			"entries": totals.Entries,
		})
	}
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Ledger consistent", fiber.Map{
		"wallet_id": walletID,
		"credits":   totals.Credits,
		"debits":    totals.Debits,
		"net":       totals.Net(),
		"entries":   totals.Entries,
	})
}

// QueueStats lists queue sizes and the most recent dead jobs.
func (h *AdminHandler) QueueStats(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("dead_limit", 20))
	if limit < 1 || limit > 500 {
		return response.BadRequest(c, "dead_limit must be between 1 and 500")
	}

	stats, err := h.queue.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	dead, err := h.queue.DeadLetters(c.UserContext(), limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Queue stats", fiber.Map{
		"stats":        stats,
		"dead_letters": dead,
	})
}
