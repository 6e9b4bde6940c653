package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, tenant_id, company_name, contact_name, email, phone, industry,
		order_count, total_lifetime_value, created_at, updated_at`

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.TenantID, customer.CompanyName, customer.ContactName,
		customer.Email, customer.Phone, customer.Industry,
		customer.OrderCount, customer.TotalLifetimeValue,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID dentro del tenant.
func (r *CustomerRepo) GetByID(tenantID, id string) (*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers WHERE tenant_id = $1 AND id = $2`
	var c entity.Customer
	err := r.q.QueryRow(context.Background(), query, tenantID, id).Scan(
		&c.ID, &c.TenantID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.Industry,
		&c.OrderCount, &c.TotalLifetimeValue, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// ListByTenant lista los clientes del tenant con paginación.
func (r *CustomerRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers WHERE tenant_id = $1 ORDER BY company_name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(
			&c.ID, &c.TenantID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.Industry,
			&c.OrderCount, &c.TotalLifetimeValue, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// IncrementOrderStats suma un pedido y su monto a los agregados históricos del cliente.
func (r *CustomerRepo) IncrementOrderStats(tenantID, id string, amount decimal.Decimal) error {
	query := `
		UPDATE customers
		SET order_count = order_count + 1,
		    total_lifetime_value = total_lifetime_value + $3,
		    updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query, tenantID, id, amount)
	if err != nil {
		return fmt.Errorf("increment customer stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
