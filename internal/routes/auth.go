package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/owobank/owobank/internal/auth"
)

// RegisterAuthRoutes wires registration, login and token refresh.
// Login is rate-limited per email or client IP.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	grp := r.Group("/auth")
	grp.Post("/register", h.Register)
	grp.Post("/login", rateLimiter, h.Login)
	grp.Post("/refresh", h.Refresh)
}
