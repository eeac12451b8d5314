package handlers

import (
	"phsar/internal/models"
	"phsar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles the authenticated customer's profile and
// shipping addresses.
type CustomerHandler struct {
	service  *services.CustomerService
	validate *validator.Validate
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer routes behind auth.
func (h *CustomerHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	customerRoutes := router.Group("/customer", auth)
	customerRoutes.Get("/profile/ensure", h.HandleEnsureProfile)
	customerRoutes.Get("/addresses", h.HandleListAddresses)
	customerRoutes.Post("/addresses", h.HandleCreateAddress)
	customerRoutes.Put("/addresses/:id", h.HandleUpdateAddress)
	customerRoutes.Delete("/addresses/:id", h.HandleDeleteAddress)
	customerRoutes.Post("/addresses/:id/default", h.HandleSetDefaultAddress)
}

func (h *CustomerHandler) HandleEnsureProfile(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	customer, err := h.service.EnsureProfile(c.UserContext(), customerID)
	if err != nil {
		return respondError(c, "Could not load profile", err)
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) HandleListAddresses(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	addresses, err := h.service.Addresses(c.UserContext(), customerID)
	if err != nil {
		return respondError(c, "Could not retrieve addresses", err)
	}
	return c.JSON(addresses)
}

func (h *CustomerHandler) HandleCreateAddress(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var address models.ShippingAddress
	if valid, err := validateBody(c, h.validate, &address); !valid {
		return err
	}

	saved, err := h.service.SaveAddress(c.UserContext(), customerID, address)
	if err != nil {
		return respondError(c, "Could not save address", err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *CustomerHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	addressID, err := uintParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid address ID", err)
	}
	var address models.ShippingAddress
	if valid, err := validateBody(c, h.validate, &address); !valid {
		return err
	}

	saved, err := h.service.UpdateAddress(c.UserContext(), customerID, addressID, address)
	if err != nil {
		return respondError(c, "Could not update address", err)
	}
	return c.JSON(saved)
}

func (h *CustomerHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	addressID, err := uintParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid address ID", err)
	}

	if err := h.service.DeleteAddress(c.UserContext(), customerID, addressID); err != nil {
		return respondError(c, "Could not delete address", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CustomerHandler) HandleSetDefaultAddress(c *fiber.Ctx) error {
	customerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	addressID, err := uintParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid address ID", err)
	}

	address, err := h.service.SetDefaultAddress(c.UserContext(), customerID, addressID)
	if err != nil {
		return respondError(c, "Could not set default address", err)
	}
	return c.JSON(address)
}
