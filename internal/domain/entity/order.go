package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido. Conjunto cerrado: cancelled es el quinto estado
// terminal (rechazo humano), separado de error (falla del pipeline).
const (
	OrderStatusProcessing = "processing" // sin flags, avanza hacia completed
	OrderStatusReview     = "review"     // al menos un flag review_required
	OrderStatusCompleted  = "completed"  // aprobado por un humano (terminal)
	OrderStatusError      = "error"      // falla fatal del pipeline (terminal)
	OrderStatusCancelled  = "cancelled"  // rechazado por un humano (terminal)
)

// Origen del mensaje del pedido.
const (
	SourceVoiceMessage = "voice_message"
	SourceTextFile     = "text_file"
)

// Order representa un pedido estructurado derivado de un mensaje de texto o voz.
// Nunca se borra; solo transiciona de estado vía UpdateStatus.
type Order struct {
	ID                    string
	OrderNumber           string // legible: ORD-YYYYMMDDnn
	TenantID              string
	CustomerID            string
	CustomerCompanyName   string
	SourceType            string // voice_message | text_file
	OriginalMessage       string
	Transcript            string
	TranscriptionProvider string // proveedor que produjo el transcript (voz)
	Status                string
	TotalAmount           decimal.Decimal
	ItemCount             int
	ErrorMessage          string
	ReviewedBy            string
	ReviewedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ValidStatus indica si s pertenece al conjunto cerrado de estados.
func ValidStatus(s string) bool {
	switch s {
	case OrderStatusProcessing, OrderStatusReview, OrderStatusCompleted, OrderStatusError, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition valida la máquina de estados del flujo aprobar/rechazar:
// solo los pedidos en review o processing aceptan completed (aprobar) o
// cancelled (rechazar). completed, error y cancelled son terminales.
func CanTransition(from, to string) bool {
	if to != OrderStatusCompleted && to != OrderStatusCancelled {
		return false
	}
	return from == OrderStatusReview || from == OrderStatusProcessing
}
