package transfer

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/transfers/internal/account"
	"github.com/congo-pay/transfers/internal/httpx"
	"github.com/congo-pay/transfers/internal/ledger"
)

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a transfer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	AccountFromID    string              `json:"accountFromId"`
	AccountToID      string              `json:"accountToId"`
	AmountToTransfer decimal.NullDecimal `json:"amountToTransfer"`
}

type transferResponse struct {
	TransactionID string      `json:"transactionId"`
	FromBalance   json.Number `json:"accountFromBalance"`
	ToBalance     json.Number `json:"accountToBalance"`
	CompletedAt   string      `json:"completedAt"`
}

// Transfer moves funds between two accounts.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	res, err := h.service.Transfer(c.UserContext(), req.AccountFromID, req.AccountToID, req.AmountToTransfer)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return fiber.NewError(http.StatusBadRequest, verr.Error())
		case errors.Is(err, account.ErrNotFound):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrAborted):
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "transfer failed")
		}
	}

	return c.Status(http.StatusOK).JSON(transferResponse{
		TransactionID: res.TransactionID,
		FromBalance:   json.Number(res.FromBalance.String()),
		ToBalance:     json.Number(res.ToBalance.String()),
		CompletedAt:   res.CompletedAt.Format(time.RFC3339Nano),
	})
}

type postingResponse struct {
	TransactionID string      `json:"transactionId"`
	AccountFromID string      `json:"accountFromId"`
	AccountToID   string      `json:"accountToId"`
	Amount        json.Number `json:"amount"`
	FromBalance   json.Number `json:"accountFromBalance"`
	ToBalance     json.Number `json:"accountToBalance"`
	CommittedAt   string      `json:"committedAt"`
}

func toPostingResponse(p ledger.Posting) postingResponse {
	return postingResponse{
		TransactionID: p.TransactionID,
		AccountFromID: p.FromID,
		AccountToID:   p.ToID,
		Amount:        json.Number(p.Amount.String()),
		FromBalance:   json.Number(p.FromBalance.String()),
		ToBalance:     json.Number(p.ToBalance.String()),
		CommittedAt:   p.CommittedAt.UTC().Format(time.RFC3339Nano),
	}
}

// History lists committed transfers for an account. The optional limit query
// parameter caps the result.
func (h *Handler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return fiber.NewError(http.StatusBadRequest, "limit must not be negative")
	}

	postings, err := h.service.History(c.UserContext(), c.Params("accountId"), limit)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "history unavailable")
	}

	items := make([]postingResponse, 0, len(postings))
	for _, p := range postings {
		items = append(items, toPostingResponse(p))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"items": items})
}
