package correction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/journal"
	"github.com/cardledger/cardledger/internal/ledger"
)

// Handler exposes balance endpoints.
type Handler struct {
	service *Service
	journal journal.Journal
}

// NewHandler constructs a balance handler. j may be nil when no journal is kept.
func NewHandler(service *Service, j journal.Journal) *Handler {
	if j == nil {
		j = journal.Nop{}
	}
	return &Handler{service: service, journal: j}
}

type updateRequest struct {
	CreditCardNumber string          `json:"credit_card_number"`
	BalanceDate      string          `json:"balance_date"`
	BalanceAmount    json.RawMessage `json:"balance_amount"`
}

type correctionView struct {
	Date           string `json:"date"`
	Previous       string `json:"previous"`
	Amount         string `json:"amount"`
	Delta          string `json:"delta"`
	PropagatedDays int    `json:"propagated_days"`
}

type resultView struct {
	Index            int             `json:"index"`
	CreditCardNumber string          `json:"credit_card_number"`
	Status           string          `json:"status"`
	Error            string          `json:"error,omitempty"`
	Correction       *correctionView `json:"correction,omitempty"`
}

// UpdateBalances applies a batch of balance corrections. It answers 200 when
// every item succeeded and 207 when some failed; each item carries its own status.
func (h *Handler) UpdateBalances(c *fiber.Ctx) error {
	var items []updateRequest
	if err := json.Unmarshal(c.Body(), &items); err != nil {
		return fiber.NewError(http.StatusBadRequest, "body must be a JSON array of balance updates")
	}

	reqs := make([]Request, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, toRequest(item))
	}

	results := h.service.ApplyBatch(c.UserContext(), reqs)

	status := http.StatusOK
	views := make([]resultView, 0, len(results))
	for _, res := range results {
		v := resultView{Index: res.Index, CreditCardNumber: res.CardNumber, Status: res.Status}
		if res.Err != nil {
			status = http.StatusMultiStatus
			v.Error = res.Err.Error()
		} else {
			v.Correction = &correctionView{
				Date:           res.Correction.Date.Format(ledger.DateLayout),
				Previous:       res.Correction.Previous.StringFixed(2),
				Amount:         res.Correction.Amount.StringFixed(2),
				Delta:          res.Correction.Delta.StringFixed(2),
				PropagatedDays: res.Correction.Propagated,
			}
		}
		views = append(views, v)
	}
	return c.Status(status).JSON(fiber.Map{"results": views})
}

// toRequest converts a wire item. Unparsable dates and amounts are left zero
// so the service rejects them as invalid without touching the ledger.
func toRequest(item updateRequest) Request {
	req := Request{CardNumber: item.CreditCardNumber}
	if d, err := ledger.ParseDate(item.BalanceDate); err == nil {
		req.Date = d
	}
	raw := strings.Trim(strings.TrimSpace(string(item.BalanceAmount)), `"`)
	if raw != "" && raw != "null" {
		if amount, err := decimal.NewFromString(raw); err == nil {
			req.Amount = decimal.NewNullDecimal(amount)
		}
	}
	return req
}

// Balance returns the effective balance of a card on ?date= (default today).
func (h *Handler) Balance(c *fiber.Ctx) error {
	number := c.Params("cardNumber")
	date := h.service.Today()
	if raw := c.Query("date"); raw != "" {
		d, err := ledger.ParseDate(raw)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, ErrInvalidDate.Error())
		}
		date = d
	}
	amount, err := h.service.Balance(c.UserContext(), number, date)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"credit_card_number": number,
		"date":               date.Format(ledger.DateLayout),
		"balance":            amount.StringFixed(2),
	})
}

// History renders the card's balance history as text, most recent day first.
func (h *Handler) History(c *fiber.Ctx) error {
	l, err := h.service.History(c.UserContext(), c.Params("cardNumber"))
	if err != nil {
		return toHTTPError(err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Status(http.StatusOK)
	return l.WriteHistory(c)
}

// Journal lists committed corrections after ?after= (default 0).
func (h *Handler) Journal(c *fiber.Ctx) error {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "after must be a non-negative integer")
		}
		after = v
	}
	entries, err := h.journal.Since(after)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []journal.Indexed{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"entries":   entries,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, "credit card does not exist")
	case errors.Is(err, ErrInvalidAccountKey), errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
