package handlers

import (
	"tcw1/internal/models"
	"tcw1/internal/services/order"
	"tcw1/internal/utils/pagination"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	var input order.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	input.UserID = claims.UserID

	o, err := h.orders.CreateOrder(c.UserContext(), input)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "Order placed", o)
}

func (h *OrderHandler) GetMine(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}

	p := pagination.ParseFromRequest(c, order.DefaultLimit)
	result, err := h.orders.GetUserOrders(c.UserContext(), claims.UserID, p.Skip, p.Limit)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "", result)
}

// Get returns an order to its owner or an admin; everyone else gets a 404.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order ID")
	}

	o, err := h.orders.GetOrder(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	if o.UserID != claims.UserID && !claims.IsAdmin() {
		return response.NotFound(c, order.ErrOrderNotFound.Error())
	}
	return response.Success(c, "", o)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	claims, ok := userClaims(c)
	if !ok {
		return invalidClaims(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order ID")
	}

	o, err := h.orders.CancelOrder(c.UserContext(), id, claims.UserID, claims.IsAdmin())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Order cancelled", o)
}

// Admin endpoints

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order ID")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	o, err := h.orders.UpdateOrderStatus(c.UserContext(), id, input.Status)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Order status updated", o)
}

func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order ID")
	}

	var input struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	o, err := h.orders.UpdatePaymentStatus(c.UserContext(), id, input.PaymentStatus)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Payment status updated", o)
}

func (h *OrderHandler) AddShipping(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order ID")
	}

	var input struct {
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
		TrackingNumber  string                 `json:"trackingNumber"`
	}
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	o, err := h.orders.AddShippingInfo(c.UserContext(), id, input.ShippingAddress, input.TrackingNumber)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Shipping information added", o)
}
