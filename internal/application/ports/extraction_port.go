package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogItem entrada del catálogo que se envía al modelo como contexto
// (SKU | nombre | precio) para anclar la extracción.
type CatalogItem struct {
	SKU       string
	Name      string
	UnitPrice decimal.Decimal
}

// ExtractedItem línea de pedido ya validada en forma por el adaptador:
// sku y producto no vacíos, qty entero positivo, precio no negativo.
type ExtractedItem struct {
	SKU         string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// OrderExtractor define el puerto de salida hacia el LLM de extracción.
// Cero líneas es un resultado válido (el orquestador decide el status);
// una respuesta que viole el esquema debe retornar domain.ErrExtractionMalformed,
// nunca adivinar valores.
type OrderExtractor interface {
	Extract(ctx context.Context, transcript string, catalog []CatalogItem) ([]ExtractedItem, error)
}
