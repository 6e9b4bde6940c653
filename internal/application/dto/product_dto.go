package dto

import "github.com/shopspring/decimal"

// ProductResponse SKU del catálogo para GET /api/inventory.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Category          string          `json:"category,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	QuantityInStock   int             `json:"quantity_in_stock"`
	QuantityReserved  int             `json:"quantity_reserved"`
	QuantityAvailable int             `json:"quantity_available"`
	ReorderPoint      int             `json:"reorder_point"`
	SupplierName      string          `json:"supplier_name,omitempty"`
}
