package handlers

import (
	"tcw1/internal/models"
	"tcw1/internal/services/marketplace"
	"tcw1/internal/utils/pagination"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MarketplaceHandler struct {
	listings marketplace.Service
}

func NewMarketplaceHandler(listings marketplace.Service) *MarketplaceHandler {
	return &MarketplaceHandler{listings: listings}
}

func actorFrom(claims *models.UserClaims) marketplace.Actor {
	return marketplace.Actor{UserID: claims.UserID, IsAdmin: claims.IsAdmin()}
}

func (h *MarketplaceHandler) Search(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c, marketplace.DefaultLimit)
	result, err := h.listings.SearchListings(c.UserContext(), c.Query("q"), c.Query("category"), p.Skip, p.Limit)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", result)
}

func (h *MarketplaceHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "listing ID")
	}

	listing, err := h.listings.GetListing(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", listing)
}

func (h *MarketplaceHandler) BySeller(c *fiber.Ctx) error {
	sellerID, ok := paramID(c, "sellerId")
	if !ok {
		return invalidID(c, "seller ID")
	}

	listings, err := h.listings.GetSellerListings(c.UserContext(), sellerID)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", listings)
}

func (h *MarketplaceHandler) Create(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input marketplace.ListingInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	listing, err := h.listings.CreateListing(c.UserContext(), claims.UserID, input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Listing created", listing)
}

func (h *MarketplaceHandler) Update(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "listing ID")
	}

	var update marketplace.ListingUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c)
	}

	listing, err := h.listings.UpdateListing(c.UserContext(), id, actorFrom(claims), update)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Listing updated", listing)
}

func (h *MarketplaceHandler) Delete(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "listing ID")
	}

	if err := h.listings.DeleteListing(c.UserContext(), id, actorFrom(claims)); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Listing deleted", nil)
}

func (h *MarketplaceHandler) MarkSold(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "listing ID")
	}

	listing, err := h.listings.MarkAsSold(c.UserContext(), id, actorFrom(claims))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Listing marked as sold", listing)
}

func (h *MarketplaceHandler) IncrementSales(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "listing ID")
	}

	listing, err := h.listings.IncrementSales(c.UserContext(), id, actorFrom(claims))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Sales count updated", listing)
}

// ExpireOld moves every active listing past its expiry to expired.
func (h *MarketplaceHandler) ExpireOld(c *fiber.Ctx) error {
	n, err := h.listings.ExpireOldListings(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Expired listings processed", fiber.Map{"expired": n})
}
