package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/cardledger/cardledger/internal/card"
)

// RegisterCardRoutes wires credit card endpoints.
func RegisterCardRoutes(r fiber.Router, h *card.Handler) {
    r.Post("/credit-cards", h.Create)
    r.Get("/users/:userId/credit-cards", h.ListByUser)
    r.Get("/credit-cards/:cardNumber/user", h.Owner)
    r.Delete("/credit-cards/:cardNumber", h.Delete)
}
