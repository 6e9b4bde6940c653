package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/orderflow-api/internal/application/analytics"
	"github.com/jhoicas/orderflow-api/internal/application/dto"
)

// AnalyticsHandler maneja las consultas agregadas del dashboard.
type AnalyticsHandler struct {
	uc *analytics.AnalyticsUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// Summary devuelve las tarjetas del dashboard.
// GET /api/analytics/summary?customer_id=
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	customerID := c.Query("customer_id")
	summary, err := h.uc.GetSummary(c.Context(), tenantID, customerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(summary)
}

// TopProducts devuelve los SKUs más pedidos.
// GET /api/analytics/top-products?limit=
func (h *AnalyticsHandler) TopProducts(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	limit := c.QueryInt("limit", 0)
	rows, err := h.uc.GetTopProducts(c.Context(), tenantID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(rows)
}
