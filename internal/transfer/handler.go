package transfer

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/pin"
)

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a transfer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	Amount          string `json:"amount"`
	AccountNumber   string `json:"account_number"`
	BankCode        string `json:"bank_code"`
	Description     string `json:"description"`
	PIN             string `json:"pin"`
	RecipientName   string `json:"recipient_name"`
	SaveBeneficiary bool   `json:"save_beneficiary"`
	Nickname        string `json:"nickname"`
}

// Create processes a transfer for the authenticated holder.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	res, err := h.service.Transfer(c.UserContext(), Input{
		SenderID:         uid,
		Amount:           req.Amount,
		RecipientAccount: req.AccountNumber,
		BankCode:         req.BankCode,
		Description:      req.Description,
		PIN:              req.PIN,
		RecipientName:    req.RecipientName,
		SaveBeneficiary:  req.SaveBeneficiary,
		Nickname:         req.Nickname,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "invalid amount")
		case errors.Is(err, pin.ErrInvalidPIN), errors.Is(err, pin.ErrNotSet), errors.Is(err, pin.ErrMismatch):
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		case errors.Is(err, ErrRecipientNotFound):
			return fiber.NewError(http.StatusBadRequest, "recipient account not found")
		case errors.Is(err, ErrSelfTransfer):
			return fiber.NewError(http.StatusBadRequest, "cannot transfer to own account")
		case errors.Is(err, ErrRecipientNameRequired):
			return fiber.NewError(http.StatusBadRequest, "recipient name required for external transfers")
		case errors.Is(err, ErrUnknownBank):
			return fiber.NewError(http.StatusBadRequest, "unknown bank code")
		default:
			return fiber.NewError(http.StatusInternalServerError, "transfer failed")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":        "Transfer successful",
		"new_balance":    res.NewBalance,
		"transaction_id": res.TransactionID,
		"completed_at":   res.CompletedAt,
	})
}
