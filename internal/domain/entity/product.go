package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un SKU del catálogo del tenant.
// QuantityReserved se incrementa cuando un pedido reserva unidades; el stock
// disponible es QuantityInStock - QuantityReserved.
type Product struct {
	ID               string
	TenantID         string
	SKU              string // único por tenant
	Name             string
	Description      string
	Category         string
	UnitPrice        decimal.Decimal
	QuantityInStock  int
	QuantityReserved int
	ReorderPoint     int
	SupplierName     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// QuantityAvailable unidades disponibles para nuevos pedidos.
func (p *Product) QuantityAvailable() int {
	return p.QuantityInStock - p.QuantityReserved
}
