package repository

import (
	"time"

	"github.com/jhoicas/orderflow-api/internal/domain/entity"
)

// OrderFilter filtros opcionales para listar pedidos (siempre dentro de un tenant).
type OrderFilter struct {
	CustomerID string // vacío = todos los clientes
	Status     string // vacío = todos los estados
	Limit      int
	Offset     int
}

// OrderRepository define el puerto de persistencia para pedidos, líneas y flags.
// La escritura de un pedido completo (cabecera + líneas + flags) debe ocurrir
// dentro de una transacción vía OrderTxRunner para preservar el invariante
// total_amount == Σ line_total.
type OrderRepository interface {
	Create(order *entity.Order) error
	CreateItem(item *entity.OrderItem) error
	CreateFlag(flag *entity.AnomalyFlag) error
	GetByID(tenantID, id string) (*entity.Order, error)
	GetItems(orderID string) ([]*entity.OrderItem, error)
	GetFlags(orderID string) ([]*entity.AnomalyFlag, error)
	List(tenantID string, filter OrderFilter) ([]*entity.Order, error)
	// UpdateStatus persiste una transición ya validada por el caso de uso.
	UpdateStatus(tenantID, id, status, reviewedBy string, reviewedAt time.Time) error
	// CountByDate cuenta los pedidos del tenant creados el día dado
	// (secuencia del número legible ORD-YYYYMMDDnn).
	CountByDate(tenantID string, day time.Time) (int, error)
}
