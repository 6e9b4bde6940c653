package analytics

import (
	"context"

	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

const defaultTopProducts = 10

// AnalyticsUseCase consultas agregadas para el dashboard.
type AnalyticsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewAnalyticsUseCase construye el caso de uso.
func NewAnalyticsUseCase(analyticsRepo repository.AnalyticsRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{analyticsRepo: analyticsRepo}
}

// GetSummary devuelve las tarjetas del dashboard (totales, ticket promedio,
// distribución por estado). customerID vacío agrega todo el tenant.
func (uc *AnalyticsUseCase) GetSummary(ctx context.Context, tenantID, customerID string) (*dto.AnalyticsSummaryResponse, error) {
	summary, err := uc.analyticsRepo.GetSummary(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int, len(summary.ByStatus))
	for _, sc := range summary.ByStatus {
		byStatus[sc.Status] = sc.Count
	}
	return &dto.AnalyticsSummaryResponse{
		TotalOrders:    summary.TotalOrders,
		TotalRevenue:   summary.TotalRevenue,
		AvgOrderValue:  summary.AvgOrderValue,
		OrdersByStatus: byStatus,
		ErrorCount:     summary.ErrorCount,
	}, nil
}

// GetTopProducts devuelve los SKUs más pedidos del tenant.
func (uc *AnalyticsUseCase) GetTopProducts(ctx context.Context, tenantID string, limit int) ([]dto.TopProductResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultTopProducts
	}
	rows, err := uc.analyticsRepo.GetTopProducts(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopProductResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductResponse{
			SKU:          r.SKU,
			ProductName:  r.ProductName,
			TotalQty:     r.TotalQty,
			TotalRevenue: r.TotalRevenue,
		})
	}
	return out, nil
}
