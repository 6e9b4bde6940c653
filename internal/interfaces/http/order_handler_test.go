package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/application/orders"
	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
	apphttp "github.com/jhoicas/orderflow-api/internal/interfaces/http"
)

// fakeOrderRepo lo mínimo para probar el mapeo de errores del handler.
type fakeOrderRepo struct {
	orders map[string]*entity.Order
	items  map[string][]*entity.OrderItem
	flags  map[string][]*entity.AnomalyFlag
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*entity.Order),
		items:  make(map[string][]*entity.OrderItem),
		flags:  make(map[string][]*entity.AnomalyFlag),
	}
}

func (r *fakeOrderRepo) Create(o *entity.Order) error { r.orders[o.ID] = o; return nil }
func (r *fakeOrderRepo) CreateItem(it *entity.OrderItem) error {
	r.items[it.OrderID] = append(r.items[it.OrderID], it)
	return nil
}
func (r *fakeOrderRepo) CreateFlag(f *entity.AnomalyFlag) error {
	r.flags[f.OrderID] = append(r.flags[f.OrderID], f)
	return nil
}
func (r *fakeOrderRepo) GetByID(tenantID, id string) (*entity.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, nil
	}
	return o, nil
}
func (r *fakeOrderRepo) GetItems(orderID string) ([]*entity.OrderItem, error) {
	return r.items[orderID], nil
}
func (r *fakeOrderRepo) GetFlags(orderID string) ([]*entity.AnomalyFlag, error) {
	return r.flags[orderID], nil
}
func (r *fakeOrderRepo) List(tenantID string, f repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.orders {
		if o.TenantID != tenantID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
func (r *fakeOrderRepo) UpdateStatus(tenantID, id, status, reviewedBy string, reviewedAt time.Time) error {
	o, ok := r.orders[id]
	if !ok || o.TenantID != tenantID {
		return domain.ErrNotFound
	}
	o.Status = status
	o.ReviewedBy = reviewedBy
	o.ReviewedAt = &reviewedAt
	return nil
}
func (r *fakeOrderRepo) CountByDate(tenantID string, day time.Time) (int, error) { return 0, nil }

// buildOrderApp monta las rutas de consulta y transición de pedidos con el
// middleware de tenant delante, como en el router real.
func buildOrderApp(repo *fakeOrderRepo) *fiber.App {
	app := fiber.New()
	uc := orders.NewOrderUseCase(repo)
	h := apphttp.NewOrderHandler(nil, uc, nil)

	g := app.Group("/api/orders", apphttp.TenantMiddleware(&fakeTenantRepo{}))
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id/status", h.UpdateStatus)
	return app
}

func seedFakeOrder(repo *fakeOrderRepo, id, status string) {
	_ = repo.Create(&entity.Order{
		ID:          id,
		TenantID:    testTenantID,
		OrderNumber: "ORD-2026082901",
		CustomerID:  "cliente-1",
		SourceType:  entity.SourceTextFile,
		Status:      status,
		TotalAmount: decimal.RequireFromString("99.90"),
		ItemCount:   2,
		CreatedAt:   time.Now(),
	})
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("X-Tenant-ID", testTenantID)
	if body != "" {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/orders y /api/orders/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderHandler_GetDetalle(t *testing.T) {
	repo := newFakeOrderRepo()
	seedFakeOrder(repo, "order-1", entity.OrderStatusReview)
	app := buildOrderApp(repo)

	resp := doJSON(t, app, http.MethodGet, "/api/orders/order-1", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var detail dto.OrderDetailResponse
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, "ORD-2026082901", detail.OrderNumber)
	assert.Equal(t, entity.OrderStatusReview, detail.Status)
}

func TestOrderHandler_GetInexistenteEs404(t *testing.T) {
	app := buildOrderApp(newFakeOrderRepo())

	resp := doJSON(t, app, http.MethodGet, "/api/orders/no-existe", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestOrderHandler_ListFiltraPorStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	seedFakeOrder(repo, "order-1", entity.OrderStatusReview)
	seedFakeOrder(repo, "order-2", entity.OrderStatusCompleted)
	app := buildOrderApp(repo)

	resp := doJSON(t, app, http.MethodGet, "/api/orders/?status=review", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var list []dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "order-1", list[0].ID)
}

func TestOrderHandler_ListStatusDesconocidoEs400(t *testing.T) {
	app := buildOrderApp(newFakeOrderRepo())

	resp := doJSON(t, app, http.MethodGet, "/api/orders/?status=pendiente", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// PATCH /api/orders/:id/status
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderHandler_AprobarPedido(t *testing.T) {
	repo := newFakeOrderRepo()
	seedFakeOrder(repo, "order-1", entity.OrderStatusReview)
	app := buildOrderApp(repo)

	resp := doJSON(t, app, http.MethodPatch, "/api/orders/order-1/status",
		`{"status":"completed","actor":"ana@demo.local"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var detail dto.OrderDetailResponse
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, entity.OrderStatusCompleted, detail.Status)
	assert.Equal(t, "ana@demo.local", detail.ReviewedBy)
}

func TestOrderHandler_TransicionInvalidaEs409(t *testing.T) {
	repo := newFakeOrderRepo()
	seedFakeOrder(repo, "order-1", entity.OrderStatusCompleted)
	app := buildOrderApp(repo)

	resp := doJSON(t, app, http.MethodPatch, "/api/orders/order-1/status",
		`{"status":"cancelled","actor":"ana@demo.local"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, resp).Code)
}

func TestOrderHandler_StatusDestinoInvalidoEs400(t *testing.T) {
	repo := newFakeOrderRepo()
	seedFakeOrder(repo, "order-1", entity.OrderStatusReview)
	app := buildOrderApp(repo)

	resp := doJSON(t, app, http.MethodPatch, "/api/orders/order-1/status",
		`{"status":"error"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
}
