package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// StatusCount pedidos agrupados por estado.
type StatusCount struct {
	Status string
	Count  int
}

// SummaryResult agregados para las tarjetas del dashboard.
type SummaryResult struct {
	TotalOrders   int
	TotalRevenue  decimal.Decimal
	AvgOrderValue decimal.Decimal
	ByStatus      []StatusCount
	ErrorCount    int
}

// TopProductResult demanda agregada de un SKU a través de todos los pedidos.
type TopProductResult struct {
	SKU          string
	ProductName  string
	TotalQty     int
	TotalRevenue decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura para el dashboard.
// Las implementaciones son read-only y siempre acotadas por tenant.
type AnalyticsRepository interface {
	// GetSummary devuelve totales, promedio y distribución por estado.
	// customerID vacío agrega sobre todos los clientes del tenant.
	GetSummary(ctx context.Context, tenantID, customerID string) (*SummaryResult, error)

	// GetTopProducts devuelve los `limit` SKUs con mayor cantidad pedida.
	GetTopProducts(ctx context.Context, tenantID string, limit int) ([]TopProductResult, error)
}
