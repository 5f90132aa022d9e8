package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/banks"
)

// RegisterBankRoutes exposes the static bank directory used by transfer
// screens to populate bank pickers.
func RegisterBankRoutes(r fiber.Router) {
	r.Get("/banks", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"banks": banks.Directory()})
	})
}
