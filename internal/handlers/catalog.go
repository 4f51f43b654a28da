package handlers

import (
	"tcw1/internal/services/catalog"
	"tcw1/internal/utils/pagination"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	products catalog.Service
}

func NewCatalogHandler(products catalog.Service) *CatalogHandler {
	return &CatalogHandler{products: products}
}

// Search lists active products. Query params: q, category, skip, limit.
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c, catalog.DefaultLimit)
	result, err := h.products.SearchProducts(c.UserContext(), c.Query("q"), c.Query("category"), p.Skip, p.Limit)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", result)
}

func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product ID")
	}

	product, err := h.products.GetProduct(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", product)
}

func (h *CatalogHandler) ByCategory(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c, catalog.DefaultLimit)
	result, err := h.products.GetProductsByCategory(c.UserContext(), c.Params("category"), p.Skip, p.Limit)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", result)
}

func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input catalog.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	product, err := h.products.CreateProduct(c.UserContext(), claims.UserID, input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Product created", product)
}

func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product ID")
	}

	var update catalog.ProductUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c)
	}

	product, err := h.products.UpdateProduct(c.UserContext(), id, update)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Product updated", product)
}

func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product ID")
	}

	if err := h.products.DeleteProduct(c.UserContext(), id); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Product deleted", nil)
}

func (h *CatalogHandler) UpdateStock(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product ID")
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	product, err := h.products.UpdateStock(c.UserContext(), id, input.Quantity)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Stock updated", product)
}
