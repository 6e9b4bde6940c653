package entity

import "time"

// Roles de usuario de la aplicación.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User representa un empleado con acceso al dashboard.
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin | operator
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
