package http

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/application/orders"
	"github.com/jhoicas/orderflow-api/internal/domain"
)

// maxAudioBytes tamaño máximo aceptado para una nota de voz (20 MB).
const maxAudioBytes = 20 << 20

// OrderHandler maneja las peticiones HTTP de pedidos.
type OrderHandler struct {
	processUC *orders.ProcessOrderUseCase
	orderUC   *orders.OrderUseCase
	pdfUC     *orders.PDFUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(processUC *orders.ProcessOrderUseCase, orderUC *orders.OrderUseCase, pdfUC *orders.PDFUseCase) *OrderHandler {
	return &OrderHandler{processUC: processUC, orderUC: orderUC, pdfUC: pdfUC}
}

// Process ejecuta el pipeline de captura de un pedido (texto o voz).
// POST /api/orders/process
//
// Acepta JSON {customer_id, source_type, original_message} o multipart con
// los mismos campos más un archivo "audio". Responde 201 con el resumen del
// pedido incluso cuando el pipeline falla (status error); solo el rechazo de
// contenido en modo strict produce 422.
func (h *OrderHandler) Process(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)

	var in dto.ProcessOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := orders.ProcessInput{
		CustomerID:      in.CustomerID,
		SourceType:      in.SourceType,
		OriginalMessage: in.OriginalMessage,
	}

	// Nota de voz: el audio llega como archivo multipart.
	if file, err := c.FormFile("audio"); err == nil && file != nil {
		if file.Size > maxAudioBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "AUDIO_TOO_LARGE", Message: "el audio supera el tamaño máximo permitido"})
		}
		f, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo leer el archivo de audio"})
		}
		defer f.Close()
		audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes+1))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo leer el archivo de audio"})
		}
		input.Audio = audio
		input.AudioFilename = file.Filename
	}

	resp, err := h.processUC.Process(c.Context(), tenantID, input)
	if err != nil {
		if errors.Is(err, domain.ErrContentRejected) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.RejectedOrderResponse{
				Code:    "CONTENT_REJECTED",
				Message: "contenido rechazado por la política de seguridad",
				Order:   resp,
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos: customer_id y source_type son obligatorios"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List lista los pedidos del tenant con filtros opcionales.
// GET /api/orders?customer_id=&status=&limit=&offset=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.OrderListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	list, err := h.orderUC.List(c.Context(), tenantID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status de filtro desconocido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}

// Get devuelve el detalle completo de un pedido: cabecera, líneas y flags.
// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	id := c.Params("id")
	detail, err := h.orderUC.Get(c.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(detail)
}

// GetPDF descarga la confirmación de pedido en PDF.
// GET /api/orders/:id/pdf
func (h *OrderHandler) GetPDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	id := c.Params("id")
	pdfBytes, filename, err := h.pdfUC.GenerateOrderPDF(c.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// UpdateStatus aplica aprobar (completed) o rechazar (cancelled) a un pedido.
// PATCH /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	id := c.Params("id")
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.Status = strings.TrimSpace(in.Status)

	detail, err := h.orderUC.UpdateStatus(c.Context(), tenantID, id, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "el pedido no admite esa transición de estado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status debe ser completed o cancelled"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(detail)
}
