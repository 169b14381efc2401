package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/cardledger/cardledger/internal/correction"
)

// RegisterBalanceRoutes wires balance correction and read endpoints.
// guards run in front of the batch update only.
func RegisterBalanceRoutes(r fiber.Router, h *correction.Handler, guards ...fiber.Handler) {
    update := append(guards, h.UpdateBalances)
    r.Post("/credit-cards/balances", update...)
    r.Get("/credit-cards/:cardNumber/balance", h.Balance)
    r.Get("/credit-cards/:cardNumber/balance-history", h.History)
    r.Get("/corrections", h.Journal)
}
