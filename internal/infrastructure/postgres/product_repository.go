package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, tenant_id, sku, name, description, category, unit_price,
		quantity_in_stock, quantity_reserved, reorder_point, supplier_name, created_at, updated_at`

// Create persiste un nuevo producto del catálogo.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.TenantID, product.SKU, product.Name, product.Description, product.Category,
		product.UnitPrice, product.QuantityInStock, product.QuantityReserved, product.ReorderPoint,
		product.SupplierName, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetBySKU obtiene un producto por SKU dentro del tenant.
func (r *ProductRepo) GetBySKU(tenantID, sku string) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE tenant_id = $1 AND sku = $2`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, tenantID, sku).Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Description, &p.Category,
		&p.UnitPrice, &p.QuantityInStock, &p.QuantityReserved, &p.ReorderPoint,
		&p.SupplierName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListByTenant lista el catálogo del tenant con paginación.
func (r *ProductRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE tenant_id = $1 ORDER BY sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Description, &p.Category,
			&p.UnitPrice, &p.QuantityInStock, &p.QuantityReserved, &p.ReorderPoint,
			&p.SupplierName, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ReserveStock incrementa quantity_reserved del SKU al crear un pedido.
// No falla si la reserva supera el stock: el faltante se refleja en el
// dashboard de inventario, no bloquea la captura del pedido.
func (r *ProductRepo) ReserveStock(tenantID, sku string, quantity int) error {
	query := `
		UPDATE products
		SET quantity_reserved = quantity_reserved + $3, updated_at = NOW()
		WHERE tenant_id = $1 AND sku = $2`
	_, err := r.q.Exec(context.Background(), query, tenantID, sku, quantity)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	return nil
}
