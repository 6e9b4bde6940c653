package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/orderflow-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para clientes.
// Todas las consultas están acotadas por tenant.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(tenantID, id string) (*entity.Customer, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Customer, error)
	// IncrementOrderStats suma un pedido y su monto a los agregados históricos
	// del cliente (order_count, total_lifetime_value).
	IncrementOrderStats(tenantID, id string, amount decimal.Decimal) error
}
