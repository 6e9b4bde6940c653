package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

// Local key para TenantID en Fiber.
const LocalTenantID = "tenant_id"

// TenantMiddleware exige el header X-Tenant-ID en toda ruta acotada por tenant
// y verifica que el tenant exista. El aislamiento real ocurre en los repos
// (toda consulta filtra por tenant_id); esto solo rechaza temprano.
func TenantMiddleware(tenantRepo repository.TenantRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Get("X-Tenant-ID")
		if tenantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "TENANT_REQUIRED", Message: "header X-Tenant-ID requerido"})
		}
		tenant, err := tenantRepo.GetByID(tenantID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		if tenant == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "TENANT_UNKNOWN", Message: "tenant no encontrado"})
		}
		c.Locals(LocalTenantID, tenantID)
		return c.Next()
	}
}

// GetTenantID devuelve el TenantID del contexto (después del middleware de tenant).
func GetTenantID(c *fiber.Ctx) string {
	v := c.Locals(LocalTenantID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
