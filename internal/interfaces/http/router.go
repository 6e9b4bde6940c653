package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/orderflow-api/internal/application/analytics"
	"github.com/jhoicas/orderflow-api/internal/application/auth"
	"github.com/jhoicas/orderflow-api/internal/application/customers"
	"github.com/jhoicas/orderflow-api/internal/application/inventory"
	"github.com/jhoicas/orderflow-api/internal/application/orders"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProcessOrderUC *orders.ProcessOrderUseCase
	OrderUC        *orders.OrderUseCase
	PDFUC          *orders.PDFUseCase
	CustomerUC     *customers.CustomerUseCase
	InventoryUC    *inventory.InventoryUseCase
	AnalyticsUC    *analytics.AnalyticsUseCase
	AuthUC         *auth.AuthUseCase
	TenantRepo     repository.TenantRepository
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público: el tenant viaja en el body/token, no en el header)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas acotadas por tenant (requieren X-Tenant-ID)
	tenant := api.Group("/", TenantMiddleware(deps.TenantRepo))

	ordersGroup := tenant.Group("/orders")
	orderHandler := NewOrderHandler(deps.ProcessOrderUC, deps.OrderUC, deps.PDFUC)
	ordersGroup.Post("/process", orderHandler.Process)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.Get)
	ordersGroup.Get("/:id/pdf", orderHandler.GetPDF)
	ordersGroup.Patch("/:id/status", orderHandler.UpdateStatus)

	customersGroup := tenant.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customersGroup.Get("/", customerHandler.List)
	customersGroup.Get("/:id", customerHandler.Get)

	inventoryGroup := tenant.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inventoryGroup.Get("/", inventoryHandler.List)

	analyticsGroup := tenant.Group("/analytics")
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	analyticsGroup.Get("/summary", analyticsHandler.Summary)
	analyticsGroup.Get("/top-products", analyticsHandler.TopProducts)
}
