package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente B2B del tenant.
// OrderCount y TotalLifetimeValue son agregados que se actualizan al crear cada
// pedido; de ellos se deriva el promedio histórico que alimenta la detección de anomalías.
type Customer struct {
	ID                 string
	TenantID           string
	CompanyName        string
	ContactName        string
	Email              string
	Phone              string
	Industry           string
	OrderCount         int
	TotalLifetimeValue decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AverageOrderAmount devuelve el valor promedio de los pedidos históricos del cliente.
// Cero si el cliente no tiene pedidos (la regla de volumen no aplica en ese caso).
func (c *Customer) AverageOrderAmount() decimal.Decimal {
	if c.OrderCount <= 0 {
		return decimal.Zero
	}
	return c.TotalLifetimeValue.Div(decimal.NewFromInt(int64(c.OrderCount)))
}
