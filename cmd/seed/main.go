// seed aplica el esquema y puebla la base con datos de demo: un tenant,
// un usuario admin, clientes B2B y el catálogo de productos.
//
// Uso: go run ./cmd/seed
// Idempotente: si el tenant de demo ya existe no inserta nada.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/infrastructure/postgres"
	"github.com/jhoicas/orderflow-api/pkg/config"
)

const (
	demoTenantID   = "00000000-0000-0000-0000-000000000001"
	demoTenantName = "Distribuidora Demo"
	demoAdminEmail = "admin@demo.local"
	migrationPath  = "internal/infrastructure/postgres/migrations/001_init.sql"
)

type seedCustomer struct {
	company, contact, email, phone, industry string
}

type seedProduct struct {
	sku, name, description, category, supplier string
	price                                      string
	stock, reorder                             int
}

var customers = []seedCustomer{
	{"Acme Manufacturing", "John Mitchell", "orders@acme-mfg.com", "+1 (415) 555-0142", "Manufactura"},
	{"BuildCo", "Sarah Chen", "procurement@buildco.io", "+1 (415) 555-0198", "Construcción"},
	{"TechParts Inc", "Alex Rivera", "hello@techparts.co", "+1 (650) 555-0177", "Electrónica"},
	{"Global Widgets", "Maria Thompson", "orders@globalwidgets.com", "+1 (212) 555-0134", "Retail"},
	{"MegaCorp", "David Park", "supply@megacorp.com", "+1 (310) 555-0156", "Corporativo"},
}

var products = []seedProduct{
	{"WIDGET-001", "Blue Widget", "Standard blue widget, industrial grade", "Widgets", "Widget Corp", "15.50", 10000, 500},
	{"WIDGET-002", "Red Widget", "Standard red widget, industrial grade", "Widgets", "Widget Corp", "16.00", 8000, 400},
	{"WIDGET-003", "Green Widget", "Standard green widget, industrial grade", "Widgets", "Widget Corp", "17.67", 5000, 300},
	{"GADGET-PRO", "Gadget Pro", "Premium gadget with advanced features", "Gadgets", "Gadget Works", "23.50", 5000, 200},
	{"STL-100", "Steel Beam A", "Standard I-beam, 6m length", "Steel", "SteelMax Industries", "45.00", 3000, 100},
	{"STL-200", "Steel Beam B", "Heavy-duty I-beam, 8m length", "Steel", "SteelMax Industries", "52.00", 2500, 100},
	{"BLT-050", "Bolt Pack (100)", "Industrial grade bolts, pack of 100", "Fasteners", "FastenerPro", "8.50", 20000, 1000},
	{"NUT-050", "Nut Pack (100)", "Industrial grade nuts, pack of 100", "Fasteners", "FastenerPro", "6.75", 20000, 1000},
	{"PCB-200", "Circuit Board v2", "Multi-layer PCB, standard footprint", "Electronics", "CircuitTech", "52.00", 4000, 200},
	{"SNS-100", "Sensor Module", "Multi-sensor IoT module with WiFi", "Electronics", "SensorTech", "60.00", 3000, 150},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	// Aplicar esquema (idempotente: CREATE TABLE IF NOT EXISTS)
	schema, err := os.ReadFile(migrationPath)
	if err != nil {
		fail("leer migración %s: %v", migrationPath, err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		fail("aplicar esquema: %v", err)
	}

	tenantRepo := postgres.NewTenantRepository(pool)
	existing, err := tenantRepo.GetByID(demoTenantID)
	if err != nil {
		fail("verificar tenant: %v", err)
	}
	if existing != nil {
		fmt.Println("La base ya tiene datos de demo. No se inserta nada.")
		return
	}

	now := time.Now()
	if err := tenantRepo.Create(&entity.Tenant{ID: demoTenantID, Name: demoTenantName, CreatedAt: now}); err != nil {
		fail("crear tenant: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		fail("hash de password: %v", err)
	}
	userRepo := postgres.NewUserRepository(pool)
	if err := userRepo.Create(&entity.User{
		ID:           uuid.New().String(),
		TenantID:     demoTenantID,
		Email:        demoAdminEmail,
		PasswordHash: string(hash),
		Name:         "Admin Demo",
		Role:         entity.RoleAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		fail("crear usuario admin: %v", err)
	}

	customerRepo := postgres.NewCustomerRepository(pool)
	for _, c := range customers {
		if err := customerRepo.Create(&entity.Customer{
			ID:                 uuid.New().String(),
			TenantID:           demoTenantID,
			CompanyName:        c.company,
			ContactName:        c.contact,
			Email:              c.email,
			Phone:              c.phone,
			Industry:           c.industry,
			TotalLifetimeValue: decimal.Zero,
			CreatedAt:          now,
			UpdatedAt:          now,
		}); err != nil {
			fail("crear cliente %s: %v", c.company, err)
		}
	}

	productRepo := postgres.NewProductRepository(pool)
	for _, p := range products {
		if err := productRepo.Create(&entity.Product{
			ID:              uuid.New().String(),
			TenantID:        demoTenantID,
			SKU:             p.sku,
			Name:            p.name,
			Description:     p.description,
			Category:        p.category,
			UnitPrice:       decimal.RequireFromString(p.price),
			QuantityInStock: p.stock,
			ReorderPoint:    p.reorder,
			SupplierName:    p.supplier,
			CreatedAt:       now,
			UpdatedAt:       now,
		}); err != nil {
			fail("crear producto %s: %v", p.sku, err)
		}
	}

	fmt.Printf("Seed completado: tenant %s, %d clientes, %d productos.\n", demoTenantID, len(customers), len(products))
	fmt.Printf("Login demo: %s / demo1234\n", demoAdminEmail)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
