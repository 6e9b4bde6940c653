package entity

import "github.com/shopspring/decimal"

// OrderItem es una línea de pedido. Se crea atómicamente con su Order y es
// inmutable: LineTotal = Quantity × UnitPrice debe cuadrar con el total del
// pedido dentro de una tolerancia de redondeo de 0.01.
type OrderItem struct {
	ID          string
	OrderID     string
	SKU         string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}
