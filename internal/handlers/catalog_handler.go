package handlers

import (
	"phsar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves public listing browsing and seller listing
// management.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public catalog routes and the seller listing
// routes, the latter behind auth.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/public/listings", h.HandlePublicListings)
	router.Get("/public/listings/:id", h.HandleGetListing)
	router.Get("/public/items/:id", h.HandleGetItem)
	router.Get("/categories", h.HandleCategories)

	router.Get("/seller/listings", auth, h.HandleSellerListings)
	router.Post("/seller/listings", auth, h.HandleCreateListing)
}

func (h *CatalogHandler) HandlePublicListings(c *fiber.Ctx) error {
	page, err := h.service.PublicListings(c.UserContext(), c.QueryInt("page", 0), c.QueryInt("size", 0))
	if err != nil {
		return respondError(c, "Could not retrieve listings", err)
	}
	return c.JSON(page)
}

func (h *CatalogHandler) HandleGetListing(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid listing ID", err)
	}
	listing, err := h.service.Listing(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve listing", err)
	}
	return c.JSON(listing)
}

func (h *CatalogHandler) HandleGetItem(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid item ID", err)
	}
	item, err := h.service.Item(c.UserContext(), id)
	if err != nil {
		return respondError(c, "Could not retrieve item", err)
	}
	return c.JSON(item)
}

func (h *CatalogHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

func (h *CatalogHandler) HandleSellerListings(c *fiber.Ctx) error {
	sellerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	listings, err := h.service.SellerListings(c.UserContext(), sellerID)
	if err != nil {
		return respondError(c, "Could not retrieve listings", err)
	}
	return c.JSON(listings)
}

func (h *CatalogHandler) HandleCreateListing(c *fiber.Ctx) error {
	sellerID, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}
	var req services.ListingRequest
	if valid, err := validateBody(c, h.validate, &req); !valid {
		return err
	}

	listing, err := h.service.CreateListing(c.UserContext(), sellerID, req)
	if err != nil {
		return respondError(c, "Could not create listing", err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}
