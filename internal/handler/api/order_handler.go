package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrderHandler exposes the confirmed-order list to staff. Orders are
// immutable once created; there is no edit or delete action here.
type OrderHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewOrderHandler(repos *Repos, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{repos: repos, logger: logger}
}

// Handle routes order API requests.
// POST /api/orders
func (h *OrderHandler) Handle(c echo.Context) error {
	action, body, err := parseBodyAction(c)
	if err != nil {
		return errorResponse(c, "Invalid request body")
	}

	switch action {
	case "orders":
		return h.listOrders(c, body)
	case "order":
		return h.getOrder(c, body)
	default:
		return errorResponse(c, "Unknown action: "+action)
	}
}

func (h *OrderHandler) listOrders(c echo.Context, body map[string]interface{}) error {
	limit := getIntField(body, "limit", 50)
	page := getIntField(body, "page", 1)
	q := getStringField(body, "q")

	orders, total, err := h.repos.Order.FindAll(limit, page, q)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		return errorResponse(c, "Failed to retrieve orders")
	}
	return successResponse(c, "Successful", paginatedResponse(orders, total, page, limit))
}

func (h *OrderHandler) getOrder(c echo.Context, body map[string]interface{}) error {
	id := getStringField(body, "id")
	if id == "" {
		return errorResponse(c, "id is required")
	}

	order, err := h.repos.Order.FindByID(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, "Order not found")
	}
	return successResponse(c, "Successful", map[string]interface{}{
		"order": order,
		"items": order.Items(),
	})
}
