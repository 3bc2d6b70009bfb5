package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/transfers/internal/httpx"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	AccountID string           `json:"accountId" validate:"required,max=128"`
	Balance   *decimal.Decimal `json:"balance" validate:"required"`
}

type accountResponse struct {
	AccountID string      `json:"accountId"`
	Balance   json.Number `json:"balance"`
}

func toResponse(a Account) accountResponse {
	return accountResponse{AccountID: a.ID, Balance: json.Number(a.Balance.String())}
}

// Create opens a new account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := httpx.ParseBody(c, &req); err != nil {
		return err
	}

	account, err := h.service.Create(c.UserContext(), CreateInput{ID: req.AccountID, Balance: *req.Balance})
	if err != nil {
		// Duplicate ids and rejected input are both caller errors.
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(account))
}

// Get returns the account identity and balance.
func (h *Handler) Get(c *fiber.Ctx) error {
	account, err := h.service.Get(c.UserContext(), c.Params("accountId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(account))
}
