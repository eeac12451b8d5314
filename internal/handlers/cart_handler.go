package handlers

import (
	"phsar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated customer's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Get("/total", h.HandleGetTotal)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:itemId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:itemId", h.HandleRemoveItem)
}

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ItemID   uint `json:"itemId" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/:itemId. A quantity
// of zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	cart, err := h.service.GetOrCreateCart(c.UserContext(), customerID)
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleGetTotal(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	total, err := h.service.Total(c.UserContext(), customerID)
	if err != nil {
		return respondError(c, "Could not compute cart total", err)
	}
	return c.JSON(fiber.Map{
		"customerId": customerID,
		"total":      total.StringFixed(2),
	})
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var req AddCartItemRequest
	if valid, err := validateBody(c, h.validate, &req); !valid {
		return err
	}

	cart, err := h.service.AddItem(c.UserContext(), customerID, req.ItemID, req.Quantity)
	if err != nil {
		return respondError(c, "Could not add item to cart", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, err := uintParam(c, "itemId")
	if err != nil {
		return badRequest(c, "Invalid item ID", err)
	}
	var req UpdateCartItemRequest
	if valid, err := validateBody(c, h.validate, &req); !valid {
		return err
	}

	cart, err := h.service.UpdateQuantity(c.UserContext(), customerID, itemID, req.Quantity)
	if err != nil {
		return respondError(c, "Could not update cart item", err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, err := uintParam(c, "itemId")
	if err != nil {
		return badRequest(c, "Invalid item ID", err)
	}

	cart, err := h.service.RemoveItem(c.UserContext(), customerID, itemID)
	if err != nil {
		return respondError(c, "Could not remove cart item", err)
	}
	return c.JSON(cart)
}
