package handlers

import (
	"phsar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler serves the gateway webhook, the return redirects and the
// payment status query.
type PaymentHandler struct {
	service *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers the payment status query on the API router.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/payment/status", h.HandlePaymentStatus)
}

// RegisterGatewayRoutes registers, at the application root, the endpoints
// the gateway calls or redirects to.
func (h *PaymentHandler) RegisterGatewayRoutes(router fiber.Router) {
	router.Post("/payment-webhook", h.HandleWebhook)
	router.Get("/payment-return", h.HandleReturn)
	router.Get("/payment-cancel", h.HandleCancel)
}

// HandleWebhook verifies and applies a gateway event. Non-2xx responses make
// the gateway retry.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	_, err := h.service.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		return respondError(c, "Webhook rejected", err)
	}
	return c.Status(fiber.StatusOK).SendString("Received")
}

func (h *PaymentHandler) HandleReturn(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "session_id is required",
		})
	}
	return c.Redirect(h.service.ReturnURL(sessionID, c.Query("client", "mobile")), fiber.StatusSeeOther)
}

func (h *PaymentHandler) HandleCancel(c *fiber.Ctx) error {
	return c.Redirect(h.service.CancelURL(c.Query("client", "mobile")), fiber.StatusSeeOther)
}

func (h *PaymentHandler) HandlePaymentStatus(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "session_id is required",
		})
	}
	status, err := h.service.PaymentStatus(c.UserContext(), sessionID)
	if err != nil {
		return respondError(c, "Could not retrieve payment status", err)
	}
	return c.JSON(fiber.Map{
		"sessionId": sessionID,
		"status":    status,
	})
}
