package handlers

import (
	"phsar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the buyer history and seller workflow routes
// behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/orders/history", auth, h.HandleOrderHistory)
	router.Get("/seller/orders/:tab", auth, h.HandleSellerOrders)
	router.Patch("/seller/orders/:orderId/status", auth, h.HandleUpdateOrderStatus)
}

// UpdateStatusRequest is the body of PATCH /seller/orders/:orderId/status.
type UpdateStatusRequest struct {
	NewStatus string `json:"newStatus" validate:"required"`
}

func (h *OrderHandler) HandleOrderHistory(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	orders, err := h.service.CustomerOrders(c.UserContext(), customerID)
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleSellerOrders(c *fiber.Ctx) error {
	sellerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	orders, err := h.service.SellerOrders(c.UserContext(), sellerID, c.Params("tab"))
	if err != nil {
		return respondError(c, "Could not retrieve seller orders", err)
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus lets the seller owning the order's item move it
// along the fulfilment workflow.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	sellerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, err := uintParam(c, "orderId")
	if err != nil {
		return badRequest(c, "Invalid order ID", err)
	}
	var req UpdateStatusRequest
	if valid, err := validateBody(c, h.validate, &req); !valid {
		return err
	}

	summary, err := h.service.UpdateStatus(c.UserContext(), orderID, sellerID, req.NewStatus)
	if err != nil {
		return respondError(c, "Could not update order status", err)
	}
	return c.JSON(summary)
}
