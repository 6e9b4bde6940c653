package repository

import "github.com/jhoicas/orderflow-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para el catálogo.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetBySKU(tenantID, sku string) (*entity.Product, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Product, error)
	// ReserveStock incrementa quantity_reserved del SKU (reserva al crear pedido).
	ReserveStock(tenantID, sku string, quantity int) error
}
