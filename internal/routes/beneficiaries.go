package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/banks"
	"github.com/owobank/owobank/internal/beneficiary"
)

// RegisterBeneficiaryRoutes exposes saved-counterparty management.
func RegisterBeneficiaryRoutes(r fiber.Router, repo beneficiary.Repository) {
	grp := r.Group("/beneficiaries")

	grp.Get("/", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		list, err := repo.ListByOwner(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not list beneficiaries")
		}
		out := make([]fiber.Map, 0, len(list))
		for _, b := range list {
			out = append(out, beneficiaryResponse(b))
		}
		return c.JSON(fiber.Map{"beneficiaries": out})
	})

	grp.Post("/", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		var req struct {
			Name          string `json:"name"`
			AccountNumber string `json:"account_number"`
			BankCode      string `json:"bank_code"`
			Nickname      string `json:"nickname"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.AccountNumber) == "" {
			return fiber.NewError(http.StatusBadRequest, "name and account_number are required")
		}
		code := req.BankCode
		if code == "" {
			code = banks.InternalCode
		}
		bank, ok := banks.Lookup(code)
		if !ok {
			return fiber.NewError(http.StatusBadRequest, "unknown bank code")
		}

		saved, err := repo.Save(c.UserContext(), beneficiary.Beneficiary{
			OwnerID:       uid,
			Name:          strings.TrimSpace(req.Name),
			AccountNumber: strings.TrimSpace(req.AccountNumber),
			BankCode:      bank.Code,
			BankName:      bank.Name,
			Nickname:      strings.TrimSpace(req.Nickname),
		})
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not save beneficiary")
		}
		return c.Status(http.StatusCreated).JSON(beneficiaryResponse(saved))
	})

	grp.Patch("/:id", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		var req struct {
			Nickname string `json:"nickname"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		err := repo.UpdateNickname(c.UserContext(), uid, c.Params("id"), strings.TrimSpace(req.Nickname))
		switch {
		case err == nil:
		case errors.Is(err, beneficiary.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "beneficiary not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, "could not update beneficiary")
		}
		return c.JSON(fiber.Map{"message": "beneficiary updated"})
	})

	grp.Delete("/:id", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		err := repo.Delete(c.UserContext(), uid, c.Params("id"))
		switch {
		case err == nil:
		case errors.Is(err, beneficiary.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "beneficiary not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, "could not delete beneficiary")
		}
		return c.JSON(fiber.Map{"message": "beneficiary removed"})
	})
}

func beneficiaryResponse(b beneficiary.Beneficiary) fiber.Map {
	return fiber.Map{
		"id":             b.ID,
		"name":           b.Name,
		"account_number": b.AccountNumber,
		"bank_code":      b.BankCode,
		"bank_name":      b.BankName,
		"nickname":       b.Nickname,
		"transfer_count": b.TransferCount,
		"last_used":      b.LastUsed,
		"created_at":     b.CreatedAt,
	}
}
