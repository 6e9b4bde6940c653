// Package anomaly implementa la detección de anomalías sobre pedidos
// extraídos (servicio de dominio puro: sin I/O, determinista).
package anomaly

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/orderflow-api/internal/domain/entity"
)

// Categorías de flags emitidas por las reglas, en orden de declaración.
const (
	CategoryUnusualVolume = "unusual-volume"
	CategoryUnknownSKU    = "unknown-sku"
	CategoryPriceMismatch = "price-mismatch"
	CategoryNoItemsParsed = "no-items-parsed"
)

// ParsedItem es una línea extraída por el LLM, ya validada en forma.
type ParsedItem struct {
	SKU         string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// ParsedOrder es el pedido extraído que evalúan las reglas.
type ParsedOrder struct {
	Items       []ParsedItem
	TotalAmount decimal.Decimal
}

// CustomerHistory son los agregados históricos del cliente.
type CustomerHistory struct {
	OrderCount         int
	AverageOrderAmount decimal.Decimal
}

// CatalogEntry es la referencia de catálogo contra la que se validan SKU y precio.
type CatalogEntry struct {
	ProductName string
	UnitPrice   decimal.Decimal
}

// Config umbrales de las reglas. Los valores por defecto vienen de DefaultConfig.
type Config struct {
	VolumeMultiplier decimal.Decimal // múltiplo del promedio histórico que dispara unusual-volume
	PriceTolerance   decimal.Decimal // tolerancia relativa de precio (0.01 = 1%)
}

// DefaultConfig umbrales estándar: 2.5× el promedio histórico y 1% de desviación de precio.
func DefaultConfig() Config {
	return Config{
		VolumeMultiplier: decimal.NewFromFloat(2.5),
		PriceTolerance:   decimal.NewFromFloat(0.01),
	}
}

// Detector evalúa las reglas de anomalías con umbrales fijos.
type Detector struct {
	cfg Config
}

// NewDetector construye el detector. Umbrales cero se sustituyen por los por defecto.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.VolumeMultiplier.LessThanOrEqual(decimal.Zero) {
		cfg.VolumeMultiplier = def.VolumeMultiplier
	}
	if cfg.PriceTolerance.LessThanOrEqual(decimal.Zero) {
		cfg.PriceTolerance = def.PriceTolerance
	}
	return &Detector{cfg: cfg}
}

// Detect evalúa todas las reglas y devuelve los flags en orden de declaración
// de las reglas. Cada categoría se emite como máximo una vez aunque varias
// líneas la disparen. Mismas entradas producen siempre el mismo resultado.
func (d *Detector) Detect(order ParsedOrder, history CustomerHistory, catalog map[string]CatalogEntry) []entity.AnomalyFlag {
	var flags []entity.AnomalyFlag

	// Regla 1, volumen inusual: total > multiplicador × promedio histórico.
	// Sin historial (promedio cero) la regla no aplica: no hay línea base.
	if history.AverageOrderAmount.GreaterThan(decimal.Zero) {
		threshold := history.AverageOrderAmount.Mul(d.cfg.VolumeMultiplier)
		if order.TotalAmount.GreaterThan(threshold) {
			flags = append(flags, entity.AnomalyFlag{
				Category: CategoryUnusualVolume,
				Severity: entity.SeverityReviewRequired,
				Reason: fmt.Sprintf(
					"total %s excede %s× el promedio histórico del cliente (%s)",
					order.TotalAmount.StringFixed(2),
					d.cfg.VolumeMultiplier.String(),
					history.AverageOrderAmount.StringFixed(2),
				),
			})
		}
	}

	// Regla 2, SKU desconocido: alguna línea referencia un SKU fuera del catálogo.
	for _, item := range order.Items {
		if _, ok := catalog[item.SKU]; !ok {
			flags = append(flags, entity.AnomalyFlag{
				Category: CategoryUnknownSKU,
				Severity: entity.SeverityReviewRequired,
				Reason:   fmt.Sprintf("SKU %s (%s) no existe en el catálogo", item.SKU, item.ProductName),
			})
			break // una sola emisión por categoría
		}
	}

	// Regla 3: precio fuera de tolerancia respecto al catálogo.
	for _, item := range order.Items {
		ref, ok := catalog[item.SKU]
		if !ok || ref.UnitPrice.LessThanOrEqual(decimal.Zero) {
			continue // sin referencia de precio; lo cubre la regla 2
		}
		diff := item.UnitPrice.Sub(ref.UnitPrice).Abs()
		if diff.GreaterThan(ref.UnitPrice.Mul(d.cfg.PriceTolerance)) {
			flags = append(flags, entity.AnomalyFlag{
				Category: CategoryPriceMismatch,
				Severity: entity.SeverityReviewRequired,
				Reason: fmt.Sprintf(
					"SKU %s: precio %s difiere del catálogo (%s) más del %s%%",
					item.SKU,
					item.UnitPrice.StringFixed(2),
					ref.UnitPrice.StringFixed(2),
					d.cfg.PriceTolerance.Mul(decimal.NewFromInt(100)).String(),
				),
			})
			break
		}
	}

	// Regla 4, pedido vacío: ninguna línea extraída.
	// Distinto de una falla dura de transcripción/extracción (esas terminan en status error).
	if len(order.Items) == 0 {
		flags = append(flags, entity.AnomalyFlag{
			Category: CategoryNoItemsParsed,
			Severity: entity.SeverityReviewRequired,
			Reason:   "no se pudo extraer ninguna línea de pedido del mensaje",
		})
	}

	return flags
}

// RequiresReview indica si algún flag obliga revisión humana.
func RequiresReview(flags []entity.AnomalyFlag) bool {
	for _, f := range flags {
		if f.Severity == entity.SeverityReviewRequired {
			return true
		}
	}
	return false
}
