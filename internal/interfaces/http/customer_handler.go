package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/orderflow-api/internal/application/customers"
	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/domain"
)

// CustomerHandler maneja las peticiones HTTP de clientes.
type CustomerHandler struct {
	uc *customers.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *customers.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// List lista los clientes del tenant con sus agregados históricos.
// GET /api/customers
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	list, err := h.uc.List(tenantID, page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}

// Get devuelve un cliente por ID.
// GET /api/customers/:id
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	id := c.Params("id")
	customer, err := h.uc.Get(tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(customer)
}
