package repository

import "github.com/jhoicas/orderflow-api/internal/domain/entity"

// TenantRepository define el puerto de persistencia para tenants.
type TenantRepository interface {
	Create(tenant *entity.Tenant) error
	GetByID(id string) (*entity.Tenant, error)
}
