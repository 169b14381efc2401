package card

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardledger/cardledger/internal/user"
)

// Handler exposes credit card HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a card HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	UserID           string `json:"user_id"`
	CardIssuanceBank string `json:"card_issuance_bank"`
	CardNumber       string `json:"card_number"`
}

// Create adds a credit card to a user.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	card, err := h.service.Create(c.UserContext(), CreateInput{
		UserID:       req.UserID,
		IssuanceBank: req.CardIssuanceBank,
		Number:       req.CardNumber,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"card_id": card.ID})
}

// ListByUser returns every card held by the user.
func (h *Handler) ListByUser(c *fiber.Ctx) error {
	cards, err := h.service.ListByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return toHTTPError(err)
	}
	views := make([]View, 0, len(cards))
	for _, card := range cards {
		views = append(views, View{IssuanceBank: card.IssuanceBank, Number: card.Number})
	}
	return c.Status(http.StatusOK).JSON(views)
}

// Owner resolves the user holding a card number.
func (h *Handler) Owner(c *fiber.Ctx) error {
	userID, err := h.service.OwnerOf(c.UserContext(), c.Params("cardNumber"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user_id": userID})
}

// Delete removes a card and its balance history.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("cardNumber")); err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted"})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidNumber):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCardExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrCardNotFound), errors.Is(err, user.ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
