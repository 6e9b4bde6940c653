package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessOrderRequest cuerpo JSON de POST /api/orders/process (fuente texto).
// Para voz la petición llega como multipart con un campo de archivo "audio".
type ProcessOrderRequest struct {
	CustomerID      string `json:"customer_id" form:"customer_id"`
	SourceType      string `json:"source_type" form:"source_type"` // voice_message | text_file
	OriginalMessage string `json:"original_message" form:"original_message"`
}

// ProcessOrderResponse resumen del pedido creado por el pipeline.
// Se devuelve también cuando el pipeline falla: el pedido queda en status
// "error" con el mensaje capturado, nunca se pierde la evidencia.
type ProcessOrderResponse struct {
	OrderID           string          `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	Status            string          `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ItemCount         int             `json:"item_count"`
	AnomaliesDetected int             `json:"anomalies_detected"`
	ErrorMessage      string          `json:"error_message,omitempty"`
}

// OrderListRequest filtros de GET /api/orders.
type OrderListRequest struct {
	CustomerID string `query:"customer_id"`
	Status     string `query:"status"`
	PageRequest
}

// OrderResponse cabecera de pedido para listados.
type OrderResponse struct {
	ID                  string          `json:"id"`
	OrderNumber         string          `json:"order_number"`
	CustomerID          string          `json:"customer_id"`
	CustomerCompanyName string          `json:"customer_company_name"`
	SourceType          string          `json:"source_type"`
	Status              string          `json:"status"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	ItemCount           int             `json:"item_count"`
	ErrorMessage        string          `json:"error_message,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// OrderItemResponse línea de pedido.
type OrderItemResponse struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// AnomalyFlagResponse flag de anomalía de un pedido.
type AnomalyFlagResponse struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

// OrderDetailResponse detalle completo: cabecera + líneas + flags.
type OrderDetailResponse struct {
	OrderResponse
	OriginalMessage       string                `json:"original_message"`
	Transcript            string                `json:"transcript,omitempty"`
	TranscriptionProvider string                `json:"transcription_provider,omitempty"`
	ReviewedBy            string                `json:"reviewed_by,omitempty"`
	ReviewedAt            *time.Time            `json:"reviewed_at,omitempty"`
	Items                 []OrderItemResponse   `json:"items"`
	Flags                 []AnomalyFlagResponse `json:"flags"`
}

// RejectedOrderResponse cuerpo del 422 cuando la política strict bloquea el
// contenido: código estable + el pedido en status error que quedó persistido.
type RejectedOrderResponse struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Order   *ProcessOrderResponse `json:"order"`
}

// UpdateOrderStatusRequest cuerpo de PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"` // completed (aprobar) | cancelled (rechazar)
	Actor  string `json:"actor"`  // quién revisó
}
