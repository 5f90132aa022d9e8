package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/banks"
	"github.com/owobank/owobank/internal/identity"
	"github.com/owobank/owobank/internal/ledger"
	"github.com/owobank/owobank/internal/wallet"
)

const maxTransactionPage = 100

// RegisterWalletRoutes exposes the holder's profile, wallet, deposits,
// transaction log and counterparty account verification.
func RegisterWalletRoutes(r fiber.Router, wallets *wallet.Service, idRepo identity.Repository, led ledger.Ledger) {
	r.Get("/profile", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		user, err := idRepo.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"email":      user.Email,
			"phone":      user.Phone,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"name":       user.DisplayName(),
			"pin_set":    len(user.PINHash) > 0,
			"created_at": user.CreatedAt,
		})
	})

	r.Get("/wallet", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		w, err := wallets.GetByOwner(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		bal, err := wallets.Balance(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not read balance")
		}
		return c.JSON(fiber.Map{
			"id":             w.ID,
			"account_number": w.AccountNumber,
			"bank_code":      banks.InternalCode,
			"balance":        bal.Amount,
			"as_of":          bal.AsOf,
			"created_at":     w.CreatedAt,
		})
	})

	r.Post("/wallet/deposit", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		var req struct {
			Amount string `json:"amount"`
			Source string `json:"source"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		res, err := wallets.Deposit(c.UserContext(), uid, req.Amount, req.Source)
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "amount must be a positive decimal with at most two decimal places")
		case errors.Is(err, wallet.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, "deposit failed")
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"transaction_id": res.TransactionID,
			"new_balance":    res.NewBalance.StringFixed(2),
		})
	})

	r.Get("/transactions", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		w, err := wallets.GetByOwner(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}

		limit := 20
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > maxTransactionPage {
				return fiber.NewError(http.StatusBadRequest, "limit must be between 1 and 100")
			}
			limit = n
		}

		entries, err := led.Entries(c.UserContext(), ledger.EntryQuery{
			Account:  w.AccountNumber,
			Category: c.Query("category"),
			Limit:    limit,
		})
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not read transactions")
		}

		out := make([]fiber.Map, 0, len(entries))
		for _, e := range entries {
			out = append(out, fiber.Map{
				"id":                   e.ID,
				"amount":               e.Amount.StringFixed(2),
				"category":             e.Category,
				"description":          e.Description,
				"counterparty":         e.Counterparty,
				"counterparty_account": e.CounterpartyAccount,
				"created_at":           e.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{"transactions": out})
	})

	r.Get("/verify-account", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		accountNumber := c.Query("account_number")
		bankCode := c.Query("bank_code", banks.InternalCode)
		if accountNumber == "" {
			return fiber.NewError(http.StatusBadRequest, "account_number is required")
		}
		bank, ok := banks.Lookup(bankCode)
		if !ok {
			return fiber.NewError(http.StatusBadRequest, "unknown bank code")
		}

		// External accounts cannot be resolved; the caller supplies the name.
		if bankCode != banks.InternalCode {
			return c.JSON(fiber.Map{
				"bank_name":   bank.Name,
				"resolved":    false,
				"can_proceed": true,
			})
		}

		w, err := wallets.FindByAccountNumber(c.UserContext(), accountNumber)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		if w.OwnerID == uid {
			return fiber.NewError(http.StatusBadRequest, "cannot transfer to your own account")
		}
		owner, err := idRepo.FindByID(c.UserContext(), w.OwnerID)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return c.JSON(fiber.Map{
			"bank_name":    bank.Name,
			"account_name": owner.DisplayName(),
			"resolved":     true,
			"can_proceed":  true,
		})
	})
}
