package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

// PDFUseCase genera la confirmación de pedido en PDF (GET /api/orders/:id/pdf).
type PDFUseCase struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	generator    OrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	generator OrderPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{orderRepo: orderRepo, customerRepo: customerRepo, generator: generator}
}

// GenerateOrderPDF carga el pedido (acotado por tenant) y genera el PDF.
// Devuelve los bytes y el nombre de archivo sugerido.
func (uc *PDFUseCase) GenerateOrderPDF(ctx context.Context, tenantID, orderID string) ([]byte, string, error) {
	order, err := uc.orderRepo.GetByID(tenantID, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("buscar pedido: %w", err)
	}
	if order == nil {
		return nil, "", domain.ErrNotFound
	}
	items, err := uc.orderRepo.GetItems(order.ID)
	if err != nil {
		return nil, "", fmt.Errorf("líneas del pedido: %w", err)
	}
	flags, err := uc.orderRepo.GetFlags(order.ID)
	if err != nil {
		return nil, "", fmt.Errorf("flags del pedido: %w", err)
	}
	customer, err := uc.customerRepo.GetByID(tenantID, order.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("buscar cliente: %w", err)
	}

	pdfBytes, err := uc.generator.GenerateOrderPDF(ctx, order, customer, items, flags)
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF: %w", err)
	}
	filename := fmt.Sprintf("pedido-%s.pdf", order.OrderNumber)
	return pdfBytes, filename, nil
}
