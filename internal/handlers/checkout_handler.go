package handlers

import (
	"errors"
	"log"

	"phsar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler starts payment for the authenticated customer's cart.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// RegisterRoutes registers the checkout route behind auth.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Post("/checkout/:customerId", auth, h.HandleCheckout)
}

// HandleCheckout snapshots the cart into pending orders and returns the
// payment session. The path customer must be the caller.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	callerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	customerID, err := uintParam(c, "customerId")
	if err != nil {
		return badRequest(c, "Invalid customer ID", err)
	}
	if customerID != callerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Cannot check out another customer's cart",
		})
	}

	result, err := h.service.Checkout(c.UserContext(), customerID)
	if err != nil {
		if errors.Is(err, services.ErrGateway) {
			log.Printf("Checkout for customer %d failed at the payment gateway: %v", customerID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Payment session could not be created",
				"error":   err.Error(),
			})
		}
		return respondError(c, "Checkout failed", err)
	}
	return c.JSON(result)
}
