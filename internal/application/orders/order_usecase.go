package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

// OrderUseCase consultas de pedidos y la transición aprobar/rechazar.
type OrderUseCase struct {
	orderRepo repository.OrderRepository
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(orderRepo repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orderRepo: orderRepo}
}

// List lista pedidos del tenant con filtros opcionales por cliente y estado.
func (uc *OrderUseCase) List(ctx context.Context, tenantID string, in dto.OrderListRequest) ([]dto.OrderResponse, error) {
	in.DefaultPage()
	if in.Status != "" && !entity.ValidStatus(in.Status) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.orderRepo.List(tenantID, repository.OrderFilter{
		CustomerID: in.CustomerID,
		Status:     in.Status,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar pedidos: %w", err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// Get devuelve el detalle completo: cabecera + líneas + flags.
func (uc *OrderUseCase) Get(ctx context.Context, tenantID, id string) (*dto.OrderDetailResponse, error) {
	order, err := uc.orderRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("buscar pedido: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.orderRepo.GetItems(order.ID)
	if err != nil {
		return nil, fmt.Errorf("líneas del pedido: %w", err)
	}
	flags, err := uc.orderRepo.GetFlags(order.ID)
	if err != nil {
		return nil, fmt.Errorf("flags del pedido: %w", err)
	}
	return toOrderDetail(order, items, flags), nil
}

// UpdateStatus aplica la transición aprobar (completed) o rechazar (cancelled).
// Solo pedidos en review o processing la aceptan; sobre un pedido completed,
// error o cancelled retorna ErrInvalidTransition y el pedido queda intacto.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, tenantID, id string, in dto.UpdateOrderStatusRequest) (*dto.OrderDetailResponse, error) {
	if in.Status != entity.OrderStatusCompleted && in.Status != entity.OrderStatusCancelled {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("buscar pedido: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !entity.CanTransition(order.Status, in.Status) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	if err := uc.orderRepo.UpdateStatus(tenantID, id, in.Status, in.Actor, now); err != nil {
		return nil, fmt.Errorf("actualizar estado: %w", err)
	}
	return uc.Get(ctx, tenantID, id)
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerID:          o.CustomerID,
		CustomerCompanyName: o.CustomerCompanyName,
		SourceType:          o.SourceType,
		Status:              o.Status,
		TotalAmount:         o.TotalAmount,
		ItemCount:           o.ItemCount,
		ErrorMessage:        o.ErrorMessage,
		CreatedAt:           o.CreatedAt,
	}
}

func toOrderDetail(o *entity.Order, items []*entity.OrderItem, flags []*entity.AnomalyFlag) *dto.OrderDetailResponse {
	detail := &dto.OrderDetailResponse{
		OrderResponse:         toOrderResponse(o),
		OriginalMessage:       o.OriginalMessage,
		Transcript:            o.Transcript,
		TranscriptionProvider: o.TranscriptionProvider,
		ReviewedBy:            o.ReviewedBy,
		ReviewedAt:            o.ReviewedAt,
		Items:                 make([]dto.OrderItemResponse, 0, len(items)),
		Flags:                 make([]dto.AnomalyFlagResponse, 0, len(flags)),
	}
	for _, it := range items {
		detail.Items = append(detail.Items, dto.OrderItemResponse{
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	for _, f := range flags {
		detail.Flags = append(detail.Flags, dto.AnomalyFlagResponse{
			Category: f.Category,
			Reason:   f.Reason,
			Severity: f.Severity,
		})
	}
	return detail
}
