package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de pedidos.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetSummary devuelve los agregados de pedidos del tenant (opcionalmente de un
// solo cliente): total, ingresos, ticket promedio y distribución por estado.
// Los ingresos y el promedio excluyen pedidos en error: un pedido fallido
// no tiene monto confiable.
func (r *AnalyticsRepo) GetSummary(ctx context.Context, tenantID, customerID string) (*repository.SummaryResult, error) {
	query := `
	SELECT
	    status,
	    COUNT(*)                       AS order_count,
	    COALESCE(SUM(total_amount), 0) AS revenue
	FROM orders
	WHERE tenant_id = $1`
	args := []any{tenantID}
	if customerID != "" {
		args = append(args, customerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	query += `
	GROUP BY status
	ORDER BY status`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSummary: %w", err)
	}
	defer rows.Close()

	result := &repository.SummaryResult{
		TotalRevenue:  decimal.Zero,
		AvgOrderValue: decimal.Zero,
	}
	countedOrders := 0
	for rows.Next() {
		var sc repository.StatusCount
		var revenue decimal.Decimal
		if err := rows.Scan(&sc.Status, &sc.Count, &revenue); err != nil {
			return nil, fmt.Errorf("analytics.GetSummary scan: %w", err)
		}
		result.ByStatus = append(result.ByStatus, sc)
		result.TotalOrders += sc.Count
		if sc.Status == entity.OrderStatusError {
			result.ErrorCount = sc.Count
			continue
		}
		result.TotalRevenue = result.TotalRevenue.Add(revenue)
		countedOrders += sc.Count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.GetSummary rows: %w", err)
	}
	if countedOrders > 0 {
		result.AvgOrderValue = result.TotalRevenue.Div(decimal.NewFromInt(int64(countedOrders))).Round(2)
	}
	return result, nil
}

// GetTopProducts devuelve los SKUs más pedidos del tenant por cantidad total.
// Excluye líneas de pedidos en error.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, tenantID string, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    i.sku,
	    MAX(i.product_name)          AS product_name,
	    SUM(i.quantity)              AS total_qty,
	    COALESCE(SUM(i.line_total), 0) AS total_revenue
	FROM order_items i
	JOIN orders o ON o.id = i.order_id
	WHERE o.tenant_id = $1
	  AND o.status <> 'error'
	GROUP BY i.sku
	ORDER BY total_qty DESC
	LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.SKU, &row.ProductName, &row.TotalQty, &row.TotalRevenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
