package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/transfers/internal/account"
	"github.com/congo-pay/transfers/internal/transfer"
)

// RegisterAccountRoutes wires account and transfer endpoints.
func RegisterAccountRoutes(r fiber.Router, accounts *account.Handler, transfers *transfer.Handler) {
	group := r.Group("/accounts")
	group.Post("", accounts.Create)
	group.Put("/transfer", transfers.Transfer)
	group.Get("/:accountId", accounts.Get)
	group.Get("/:accountId/transfers", transfers.History)
}
