package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/pin"
)

// RegisterPINRoutes exposes transaction PIN management. The old PIN is
// required only when one is already set.
func RegisterPINRoutes(r fiber.Router, gate *pin.Gate) {
	r.Post("/pin", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		var req struct {
			OldPIN     string `json:"old_pin"`
			NewPIN     string `json:"new_pin"`
			ConfirmPIN string `json:"confirm_pin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}

		err := gate.Update(c.UserContext(), uid, req.OldPIN, req.NewPIN, req.ConfirmPIN)
		switch {
		case err == nil:
		case errors.Is(err, pin.ErrMismatch):
			return fiber.NewError(http.StatusUnauthorized, "incorrect pin")
		case errors.Is(err, pin.ErrInvalidPIN), errors.Is(err, pin.ErrWeakPIN), errors.Is(err, pin.ErrConfirmation):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "could not update pin")
		}
		return c.JSON(fiber.Map{"message": "pin updated"})
	})
}
