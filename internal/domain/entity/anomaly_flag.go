package entity

// Severidad de un flag de anomalía.
const (
	SeverityReviewRequired = "review_required" // fuerza status review
	SeverityInformational  = "informational"   // solo registro (ej. veredicto de moderación en modo log)
)

// AnomalyFlag es una anotación producida por las reglas de detección sobre un
// pedido. Se crea durante el procesamiento y es de solo lectura después.
type AnomalyFlag struct {
	ID       string
	OrderID  string
	Category string // unusual-volume | unknown-sku | price-mismatch | no-items-parsed | content-flagged
	Reason   string
	Severity string // review_required | informational
}
