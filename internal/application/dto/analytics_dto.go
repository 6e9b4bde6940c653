package dto

import "github.com/shopspring/decimal"

// AnalyticsSummaryResponse tarjetas del dashboard.
type AnalyticsSummaryResponse struct {
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	OrdersByStatus map[string]int  `json:"orders_by_status"`
	ErrorCount     int             `json:"error_count"`
}

// TopProductResponse demanda agregada por SKU.
type TopProductResponse struct {
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	TotalQty     int             `json:"total_qty"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
