package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes user endpoints.
type Handler struct {
	service *Service
	// onDelete runs before the user row is removed, e.g. to drop the user's cards.
	onDelete func(ctx context.Context, userID string) error
}

// NewHandler constructs a user HTTP handler. onDelete may be nil.
func NewHandler(service *Service, onDelete func(ctx context.Context, userID string) error) *Handler {
	return &Handler{service: service, onDelete: onDelete}
}

type createRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create handles user registration.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	u, err := h.service.Create(c.UserContext(), CreateInput{Name: req.Name, Email: req.Email})
	if err != nil {
		if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrInvalidEmail) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user_id": u.ID})
}

// Delete removes a user and everything it owns.
func (h *Handler) Delete(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := h.service.Get(c.UserContext(), userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fiber.NewError(http.StatusNotFound, "user with id "+userID+" does not exist")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if h.onDelete != nil {
		if err := h.onDelete(c.UserContext(), userID); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	if err := h.service.Delete(c.UserContext(), userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted", "user_id": userID})
}
