package inventory

import (
	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

// InventoryUseCase lecturas del catálogo para el dashboard.
type InventoryUseCase struct {
	productRepo repository.ProductRepository
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(productRepo repository.ProductRepository) *InventoryUseCase {
	return &InventoryUseCase{productRepo: productRepo}
}

// List devuelve el catálogo del tenant con stock disponible calculado.
func (uc *InventoryUseCase) List(tenantID string, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	list, err := uc.productRepo.ListByTenant(tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		UnitPrice:         p.UnitPrice,
		QuantityInStock:   p.QuantityInStock,
		QuantityReserved:  p.QuantityReserved,
		QuantityAvailable: p.QuantityAvailable(),
		ReorderPoint:      p.ReorderPoint,
		SupplierName:      p.SupplierName,
	}
}
