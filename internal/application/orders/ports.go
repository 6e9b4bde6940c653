package orders

import (
	"context"

	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

// OrderTxRunner ejecuta un callback con repos atados a una transacción.
// Toda la escritura de un pedido (cabecera + líneas + flags + agregados del
// cliente + reserva de stock) ocurre dentro de un solo Run: o persiste todo
// o no persiste nada.
type OrderTxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		customerRepo repository.CustomerRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// OrderPDFGenerator genera la confirmación de pedido en PDF para el dashboard.
type OrderPDFGenerator interface {
	GenerateOrderPDF(
		ctx context.Context,
		order *entity.Order,
		customer *entity.Customer,
		items []*entity.OrderItem,
		flags []*entity.AnomalyFlag,
	) ([]byte, error)
}
