package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/cardledger/cardledger/internal/user"
)

// RegisterUserRoutes wires user endpoints.
func RegisterUserRoutes(r fiber.Router, h *user.Handler) {
    r.Put("/users", h.Create)
    r.Delete("/users/:userId", h.Delete)
}
