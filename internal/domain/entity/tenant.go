package entity

import "time"

// Tenant es la frontera de aislamiento: agrupa usuarios, clientes y pedidos de una organización.
// Ninguna consulta puede cruzar tenants; el header X-Tenant-ID define el alcance de cada petición.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
