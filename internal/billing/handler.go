package billing

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/pin"
)

// Handler exposes the bill payment endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a billing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type payRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	PhoneNumber string `json:"phone_number"`
	PIN         string `json:"pin"`
}

// Pay processes an airtime or data purchase for the authenticated holder.
func (h *Handler) Pay(c *fiber.Ctx) error {
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	res, err := h.service.Pay(c.UserContext(), Input{
		HolderID:  uid,
		Category:  req.Type,
		Amount:    req.Amount,
		Reference: req.PhoneNumber,
		PIN:       req.PIN,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCategory), errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, pin.ErrInvalidPIN), errors.Is(err, pin.ErrNotSet), errors.Is(err, pin.ErrMismatch):
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		case errors.Is(err, ErrSettlementUnavailable):
			return fiber.NewError(http.StatusBadGateway, "settlement provider unavailable")
		case errors.Is(err, ErrReconciliationRequired):
			return fiber.NewError(http.StatusInternalServerError, "payment is being reconciled, do not retry")
		default:
			return fiber.NewError(http.StatusInternalServerError, "bill payment failed")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":        "Purchase successful",
		"new_balance":    res.NewBalance,
		"transaction_id": res.TransactionID,
		"provider_ref":   res.ProviderRef,
		"completed_at":   res.CompletedAt,
	})
}
