package repository

import "github.com/jhoicas/orderflow-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para usuarios del dashboard.
type UserRepository interface {
	Create(user *entity.User) error
	FindByEmail(email string) (*entity.User, error)
	GetByEmailAndTenant(email, tenantID string) (*entity.User, error)
}
