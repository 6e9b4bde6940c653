package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// orderSelect incluye el nombre de empresa del cliente vía JOIN: el dashboard
// lo muestra en cada fila del listado sin una segunda consulta.
const orderSelect = `
	SELECT o.id, o.order_number, o.tenant_id, o.customer_id, COALESCE(c.company_name, ''),
	       o.source_type, o.original_message, o.transcript, o.transcription_provider,
	       o.status, o.total_amount, o.item_count, o.error_message,
	       o.reviewed_by, o.reviewed_at, o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id AND c.tenant_id = o.tenant_id`

// Create persiste la cabecera de un pedido.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, order_number, tenant_id, customer_id, source_type,
			original_message, transcript, transcription_provider, status, total_amount,
			item_count, error_message, reviewed_by, reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.OrderNumber, order.TenantID, order.CustomerID, order.SourceType,
		order.OriginalMessage, order.Transcript, order.TranscriptionProvider, order.Status,
		order.TotalAmount, order.ItemCount, order.ErrorMessage,
		nullIfEmpty(order.ReviewedBy), order.ReviewedAt, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de pedido.
func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, sku, product_name, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.SKU, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// CreateFlag persiste un flag de anomalía.
func (r *OrderRepo) CreateFlag(flag *entity.AnomalyFlag) error {
	query := `
		INSERT INTO anomaly_flags (id, order_id, category, reason, severity)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		flag.ID, flag.OrderID, flag.Category, flag.Reason, flag.Severity,
	)
	if err != nil {
		return fmt.Errorf("insert anomaly flag: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID dentro del tenant.
func (r *OrderRepo) GetByID(tenantID, id string) (*entity.Order, error) {
	query := orderSelect + ` WHERE o.tenant_id = $1 AND o.id = $2`
	row := r.q.QueryRow(context.Background(), query, tenantID, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetItems obtiene las líneas de un pedido.
func (r *OrderRepo) GetItems(orderID string) ([]*entity.OrderItem, error) {
	query := `
		SELECT id, order_id, sku, product_name, quantity, unit_price, line_total
		FROM order_items WHERE order_id = $1 ORDER BY sku`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.SKU, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// GetFlags obtiene los flags de anomalía de un pedido.
func (r *OrderRepo) GetFlags(orderID string) ([]*entity.AnomalyFlag, error) {
	query := `
		SELECT id, order_id, category, reason, severity
		FROM anomaly_flags WHERE order_id = $1 ORDER BY category`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list anomaly flags: %w", err)
	}
	defer rows.Close()
	var list []*entity.AnomalyFlag
	for rows.Next() {
		var f entity.AnomalyFlag
		if err := rows.Scan(&f.ID, &f.OrderID, &f.Category, &f.Reason, &f.Severity); err != nil {
			return nil, fmt.Errorf("scan anomaly flag: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}

// List lista los pedidos del tenant, más recientes primero, con filtros opcionales.
func (r *OrderRepo) List(tenantID string, filter repository.OrderFilter) ([]*entity.Order, error) {
	query := orderSelect + ` WHERE o.tenant_id = $1`
	args := []any{tenantID}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		query += fmt.Sprintf(" AND o.customer_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// UpdateStatus persiste una transición de estado ya validada por el caso de uso.
func (r *OrderRepo) UpdateStatus(tenantID, id, status, reviewedBy string, reviewedAt time.Time) error {
	query := `
		UPDATE orders
		SET status = $3, reviewed_by = $4, reviewed_at = $5, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query, tenantID, id, status, reviewedBy, reviewedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByDate cuenta los pedidos del tenant creados el día dado (UTC).
// Alimenta la secuencia del número legible ORD-YYYYMMDDnn.
func (r *OrderRepo) CountByDate(tenantID string, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	query := `
		SELECT COUNT(*) FROM orders
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3`
	var count int
	if err := r.q.QueryRow(context.Background(), query, tenantID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders by date: %w", err)
	}
	return count, nil
}

// scanOrder escanea una fila del orderSelect (pgx.Row y pgx.Rows comparten Scan).
func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var reviewedBy *string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.TenantID, &o.CustomerID, &o.CustomerCompanyName,
		&o.SourceType, &o.OriginalMessage, &o.Transcript, &o.TranscriptionProvider,
		&o.Status, &o.TotalAmount, &o.ItemCount, &o.ErrorMessage,
		&reviewedBy, &o.ReviewedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reviewedBy != nil {
		o.ReviewedBy = *reviewedBy
	}
	return &o, nil
}

// nullIfEmpty mapea string vacío a NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
