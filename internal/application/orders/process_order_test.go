package orders_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/orderflow-api/internal/application/orders"
	"github.com/jhoicas/orderflow-api/internal/application/ports"
	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/anomaly"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
	"github.com/jhoicas/orderflow-api/pkg/config"
	"github.com/jhoicas/orderflow-api/pkg/logger"
)

const (
	tenantDemo   = "tenant-1"
	clienteAcme  = "cliente-acme"
	mensajeTexto = "necesito 10 Blue Widget y 5 Gadget Pro"
)

// ── Fakes en memoria ──────────────────────────────────────────────────────────

type memStore struct {
	orders    map[string]*entity.Order
	items     map[string][]*entity.OrderItem
	flags     map[string][]*entity.AnomalyFlag
	customers map[string]*entity.Customer
	products  map[string]*entity.Product // clave: sku
}

func newMemStore() *memStore {
	return &memStore{
		orders:    make(map[string]*entity.Order),
		items:     make(map[string][]*entity.OrderItem),
		flags:     make(map[string][]*entity.AnomalyFlag),
		customers: make(map[string]*entity.Customer),
		products:  make(map[string]*entity.Product),
	}
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(o *entity.Order) error {
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}
func (r *memOrderRepo) CreateItem(it *entity.OrderItem) error {
	cp := *it
	r.s.items[it.OrderID] = append(r.s.items[it.OrderID], &cp)
	return nil
}
func (r *memOrderRepo) CreateFlag(f *entity.AnomalyFlag) error {
	cp := *f
	r.s.flags[f.OrderID] = append(r.s.flags[f.OrderID], &cp)
	return nil
}
func (r *memOrderRepo) GetByID(tenantID, id string) (*entity.Order, error) {
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}
func (r *memOrderRepo) GetItems(orderID string) ([]*entity.OrderItem, error) {
	return r.s.items[orderID], nil
}
func (r *memOrderRepo) GetFlags(orderID string) ([]*entity.AnomalyFlag, error) {
	return r.s.flags[orderID], nil
}
func (r *memOrderRepo) List(tenantID string, f repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.TenantID != tenantID {
			continue
		}
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
func (r *memOrderRepo) UpdateStatus(tenantID, id, status, reviewedBy string, reviewedAt time.Time) error {
	o, ok := r.s.orders[id]
	if !ok || o.TenantID != tenantID {
		return domain.ErrNotFound
	}
	o.Status = status
	o.ReviewedBy = reviewedBy
	o.ReviewedAt = &reviewedAt
	return nil
}
func (r *memOrderRepo) CountByDate(tenantID string, day time.Time) (int, error) {
	n := 0
	for _, o := range r.s.orders {
		if o.TenantID == tenantID && o.CreatedAt.Format("20060102") == day.Format("20060102") {
			n++
		}
	}
	return n, nil
}

type memCustomerRepo struct{ s *memStore }

func (r *memCustomerRepo) Create(c *entity.Customer) error {
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}
func (r *memCustomerRepo) GetByID(tenantID, id string) (*entity.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}
func (r *memCustomerRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.s.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (r *memCustomerRepo) IncrementOrderStats(tenantID, id string, amount decimal.Decimal) error {
	c, ok := r.s.customers[id]
	if !ok || c.TenantID != tenantID {
		return domain.ErrNotFound
	}
	c.OrderCount++
	c.TotalLifetimeValue = c.TotalLifetimeValue.Add(amount)
	return nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.s.products[p.SKU] = &cp
	return nil
}
func (r *memProductRepo) GetBySKU(tenantID, sku string) (*entity.Product, error) {
	p, ok := r.s.products[sku]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *memProductRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r *memProductRepo) ReserveStock(tenantID, sku string, quantity int) error {
	if p, ok := r.s.products[sku]; ok && p.TenantID == tenantID {
		p.QuantityReserved += quantity
	}
	return nil
}

// memTxRunner ejecuta el callback directamente sobre el store compartido.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(&memOrderRepo{t.s}, &memCustomerRepo{t.s}, &memProductRepo{t.s})
}

// ── Stubs de puertos externos ─────────────────────────────────────────────────

type stubTranscriber struct {
	nombre string
	texto  string
	err    error
	llamas int
}

func (s *stubTranscriber) Name() string { return s.nombre }
func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	s.llamas++
	if s.err != nil {
		return "", s.err
	}
	return s.texto, nil
}

type stubModeration struct {
	verdict *ports.SafetyVerdict
	err     error
	llamas  int
}

func (s *stubModeration) Check(ctx context.Context, text string) (*ports.SafetyVerdict, error) {
	s.llamas++
	return s.verdict, s.err
}

type stubExtractor struct {
	items []ports.ExtractedItem
	err   error
}

func (s *stubExtractor) Extract(ctx context.Context, transcript string, catalog []ports.CatalogItem) ([]ports.ExtractedItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

// ── Armado del caso de uso para tests ─────────────────────────────────────────

type fixture struct {
	store      *memStore
	extractor  *stubExtractor
	moderation *stubModeration
	primario   *stubTranscriber
	fallback   *stubTranscriber
	cfg        orders.PipelineConfig
}

func newFixture() *fixture {
	s := newMemStore()
	_ = (&memCustomerRepo{s}).Create(&entity.Customer{
		ID:                 clienteAcme,
		TenantID:           tenantDemo,
		CompanyName:        "Acme Manufacturing",
		TotalLifetimeValue: decimal.Zero,
	})
	_ = (&memProductRepo{s}).Create(&entity.Product{
		ID: "p1", TenantID: tenantDemo, SKU: "WIDGET-001", Name: "Blue Widget",
		UnitPrice: decimal.RequireFromString("15.50"), QuantityInStock: 10000,
	})
	_ = (&memProductRepo{s}).Create(&entity.Product{
		ID: "p2", TenantID: tenantDemo, SKU: "GADGET-PRO", Name: "Gadget Pro",
		UnitPrice: decimal.RequireFromString("23.50"), QuantityInStock: 5000,
	})
	return &fixture{
		store:      s,
		extractor:  &stubExtractor{},
		moderation: &stubModeration{verdict: &ports.SafetyVerdict{Decision: ports.DecisionAllow}},
		primario:   &stubTranscriber{nombre: "elevenlabs", texto: "transcripción primaria"},
		fallback:   &stubTranscriber{nombre: "whisper", texto: "transcripción fallback"},
		cfg: orders.PipelineConfig{
			SafetyMode:        config.SafetyModeLog,
			ModerationHasKey:  true,
			TranscribeTimeout: time.Second,
			ExtractTimeout:    time.Second,
			ModerationTimeout: time.Second,
			PipelineTimeout:   5 * time.Second,
		},
	}
}

func (f *fixture) build(t *testing.T) *orders.ProcessOrderUseCase {
	t.Helper()
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return orders.NewProcessOrderUseCase(
		&memTxRunner{f.store},
		&memOrderRepo{f.store},
		&memCustomerRepo{f.store},
		&memProductRepo{f.store},
		[]ports.Transcriber{f.primario, f.fallback},
		f.moderation,
		f.extractor,
		anomaly.NewDetector(anomaly.DefaultConfig()),
		f.cfg,
		log,
	)
}

func textInput() orders.ProcessInput {
	return orders.ProcessInput{
		CustomerID:      clienteAcme,
		SourceType:      entity.SourceTextFile,
		OriginalMessage: mensajeTexto,
	}
}

func itemWidget(qty int) ports.ExtractedItem {
	return ports.ExtractedItem{
		SKU: "WIDGET-001", ProductName: "Blue Widget",
		Quantity: qty, UnitPrice: decimal.RequireFromString("15.50"),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Camino feliz: texto, sin anomalías
// ─────────────────────────────────────────────────────────────────────────────

func TestProcess_TextoSinAnomalias(t *testing.T) {
	f := newFixture()
	f.extractor.items = []ports.ExtractedItem{itemWidget(10)}
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusProcessing, resp.Status)
	assert.Equal(t, 1, resp.ItemCount)
	assert.Equal(t, 0, resp.AnomaliesDetected)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("155.00")),
		"total = 10 × 15.50, obtuvo %s", resp.TotalAmount)

	// Número legible: ORD-YYYYMMDD01 (primer pedido del día)
	hoy := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("ORD-%s01", hoy), resp.OrderNumber)

	// El total persistido cuadra con la suma de líneas
	order := f.store.orders[resp.OrderID]
	require.NotNil(t, order)
	suma := decimal.Zero
	for _, it := range f.store.items[resp.OrderID] {
		suma = suma.Add(it.LineTotal)
	}
	assert.True(t, order.TotalAmount.Sub(suma).Abs().LessThanOrEqual(decimal.RequireFromString("0.01")))

	// Agregados del cliente y reserva de stock actualizados
	cliente := f.store.customers[clienteAcme]
	assert.Equal(t, 1, cliente.OrderCount)
	assert.True(t, cliente.TotalLifetimeValue.Equal(decimal.RequireFromString("155.00")))
	assert.Equal(t, 10, f.store.products["WIDGET-001"].QuantityReserved)
}

func TestProcess_SecuenciaDiariaIncrementa(t *testing.T) {
	f := newFixture()
	f.extractor.items = []ports.ExtractedItem{itemWidget(1)}
	uc := f.build(t)

	primero, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)
	segundo, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)

	hoy := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("ORD-%s01", hoy), primero.OrderNumber)
	assert.Equal(t, fmt.Sprintf("ORD-%s02", hoy), segundo.OrderNumber)
}

// ─────────────────────────────────────────────────────────────────────────────
// Anomalías → status review
// ─────────────────────────────────────────────────────────────────────────────

func TestProcess_VolumenInusualQuedaEnReview(t *testing.T) {
	f := newFixture()
	// Historial: 4 pedidos, promedio 100. Umbral = 250.
	f.store.customers[clienteAcme].OrderCount = 4
	f.store.customers[clienteAcme].TotalLifetimeValue = decimal.RequireFromString("400")
	// 20 × 15.50 = 310 > 250
	f.extractor.items = []ports.ExtractedItem{itemWidget(20)}
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusReview, resp.Status)
	assert.Equal(t, 1, resp.AnomaliesDetected)
	flags := f.store.flags[resp.OrderID]
	require.Len(t, flags, 1)
	assert.Equal(t, anomaly.CategoryUnusualVolume, flags[0].Category)
	assert.Equal(t, entity.SeverityReviewRequired, flags[0].Severity)
}

func TestProcess_SKUDesconocidoQuedaEnReview(t *testing.T) {
	f := newFixture()
	f.extractor.items = []ports.ExtractedItem{
		{SKU: "UNKNOWN", ProductName: "gizmo misterioso", Quantity: 2, UnitPrice: decimal.Zero},
	}
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusReview, resp.Status)
	flags := f.store.flags[resp.OrderID]
	require.Len(t, flags, 1)
	assert.Equal(t, anomaly.CategoryUnknownSKU, flags[0].Category)
}

// ─────────────────────────────────────────────────────────────────────────────
// Transcripción: fallback y falla total
// ─────────────────────────────────────────────────────────────────────────────

func TestProcess_VozUsaFallbackSiElPrimarioFalla(t *testing.T) {
	f := newFixture()
	f.primario.err = errors.New("elevenlabs caído")
	f.extractor.items = []ports.ExtractedItem{itemWidget(3)}
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, orders.ProcessInput{
		CustomerID:    clienteAcme,
		SourceType:    entity.SourceVoiceMessage,
		Audio:         []byte("audio falso"),
		AudioFilename: "pedido.ogg",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusProcessing, resp.Status)
	assert.Equal(t, 1, f.primario.llamas)
	assert.Equal(t, 1, f.fallback.llamas)
	order := f.store.orders[resp.OrderID]
	assert.Equal(t, "whisper", order.TranscriptionProvider)
	assert.Equal(t, "transcripción fallback", order.Transcript)
}

func TestProcess_VozAmbosProveedoresFallanPersisteError(t *testing.T) {
	f := newFixture()
	f.primario.err = errors.New("elevenlabs caído")
	f.fallback.err = errors.New("whisper caído")
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, orders.ProcessInput{
		CustomerID:    clienteAcme,
		SourceType:    entity.SourceVoiceMessage,
		Audio:         []byte("audio falso"),
		AudioFilename: "pedido.ogg",
	})
	// La falla no se pierde: se refleja en el pedido, no en el error de retorno.
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusError, resp.Status)
	assert.NotEmpty(t, resp.ErrorMessage)

	order := f.store.orders[resp.OrderID]
	require.NotNil(t, order)
	assert.Equal(t, entity.OrderStatusError, order.Status)
	// Pedido fallido: sin reserva ni agregados
	assert.Equal(t, 0, f.store.customers[clienteAcme].OrderCount)
	assert.Equal(t, 0, f.store.products["WIDGET-001"].QuantityReserved)
}

// ─────────────────────────────────────────────────────────────────────────────
// Filtro de seguridad: strict, log, off
// ─────────────────────────────────────────────────────────────────────────────

func TestProcess_StrictBloqueaYPersisteError(t *testing.T) {
	f := newFixture()
	f.cfg.SafetyMode = config.SafetyModeStrict
	f.moderation.verdict = &ports.SafetyVerdict{Decision: ports.DecisionBlock, Reason: "contenido prohibido"}
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.ErrorIs(t, err, domain.ErrContentRejected)
	require.NotNil(t, resp, "el pedido en error debe venir en la respuesta")
	assert.Equal(t, entity.OrderStatusError, resp.Status)

	// El registro queda persistido y nada más allá del registro error
	order := f.store.orders[resp.OrderID]
	require.NotNil(t, order)
	assert.Empty(t, f.store.items[resp.OrderID])
	assert.Equal(t, 0, f.store.customers[clienteAcme].OrderCount)
}

func TestProcess_LogModeContinuaConFlagInformativo(t *testing.T) {
	f := newFixture()
	f.cfg.SafetyMode = config.SafetyModeLog
	f.moderation.verdict = &ports.SafetyVerdict{Decision: ports.DecisionBlock, Reason: "contenido dudoso"}
	f.extractor.items = []ports.ExtractedItem{itemWidget(2)}
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)

	// El flag informativo no fuerza revisión
	assert.Equal(t, entity.OrderStatusProcessing, resp.Status)
	assert.Equal(t, 1, resp.AnomaliesDetected)
	flags := f.store.flags[resp.OrderID]
	require.Len(t, flags, 1)
	assert.Equal(t, orders.CategoryContentFlagged, flags[0].Category)
	assert.Equal(t, entity.SeverityInformational, flags[0].Severity)
}

func TestProcess_OffNoLlamaModeracion(t *testing.T) {
	f := newFixture()
	f.cfg.SafetyMode = config.SafetyModeOff
	f.extractor.items = []ports.ExtractedItem{itemWidget(2)}
	uc := f.build(t)

	_, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)
	assert.Equal(t, 0, f.moderation.llamas)
}

func TestProcess_SinKeyOmiteModeracion(t *testing.T) {
	f := newFixture()
	f.cfg.ModerationHasKey = false
	f.extractor.items = []ports.ExtractedItem{itemWidget(2)}
	uc := f.build(t)

	_, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)
	assert.Equal(t, 0, f.moderation.llamas)
}

func TestProcess_StrictConModeracionCaidaPersisteError(t *testing.T) {
	f := newFixture()
	f.cfg.SafetyMode = config.SafetyModeStrict
	f.moderation.verdict = nil
	f.moderation.err = errors.New("white circle caído")
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	// En strict una falla de transporte no aprueba contenido: pedido en error.
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusError, resp.Status)
	assert.Contains(t, resp.ErrorMessage, "verificación de contenido no disponible")
}

func TestProcess_LogConModeracionCaidaContinua(t *testing.T) {
	f := newFixture()
	f.moderation.verdict = nil
	f.moderation.err = errors.New("white circle caído")
	f.extractor.items = []ports.ExtractedItem{itemWidget(2)}
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusProcessing, resp.Status)
}

// ─────────────────────────────────────────────────────────────────────────────
// Extracción: malformada y vacía
// ─────────────────────────────────────────────────────────────────────────────

func TestProcess_ExtraccionMalformadaPersisteError(t *testing.T) {
	f := newFixture()
	f.extractor.err = fmt.Errorf("%w: ítem 0 con claves faltantes", domain.ErrExtractionMalformed)
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusError, resp.Status)
	assert.Contains(t, resp.ErrorMessage, "extracción fallida")
}

func TestProcess_CeroLineasQuedaEnErrorConFlag(t *testing.T) {
	f := newFixture()
	f.extractor.items = nil // extracción válida pero vacía
	uc := f.build(t)

	resp, err := uc.Process(context.Background(), tenantDemo, textInput())
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusError, resp.Status)
	assert.Equal(t, "no se pudo extraer ninguna línea de pedido del mensaje", resp.ErrorMessage)
	assert.Equal(t, 0, resp.ItemCount)

	flags := f.store.flags[resp.OrderID]
	require.Len(t, flags, 1)
	assert.Equal(t, anomaly.CategoryNoItemsParsed, flags[0].Category)
	// Sin reserva ni agregados para pedidos en error
	assert.Equal(t, 0, f.store.customers[clienteAcme].OrderCount)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ─────────────────────────────────────────────────────────────────────────────

func TestProcess_EntradaInvalida(t *testing.T) {
	f := newFixture()
	uc := f.build(t)

	casos := []struct {
		nombre string
		in     orders.ProcessInput
	}{
		{"sin customer_id", orders.ProcessInput{SourceType: entity.SourceTextFile, OriginalMessage: "hola"}},
		{"source_type desconocido", orders.ProcessInput{CustomerID: clienteAcme, SourceType: "email"}},
		{"texto sin mensaje", orders.ProcessInput{CustomerID: clienteAcme, SourceType: entity.SourceTextFile}},
		{"voz sin audio", orders.ProcessInput{CustomerID: clienteAcme, SourceType: entity.SourceVoiceMessage}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := uc.Process(context.Background(), tenantDemo, c.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProcess_ClienteInexistente(t *testing.T) {
	f := newFixture()
	uc := f.build(t)

	in := textInput()
	in.CustomerID = "no-existe"
	_, err := uc.Process(context.Background(), tenantDemo, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcess_ClienteDeOtroTenantNoEsVisible(t *testing.T) {
	f := newFixture()
	uc := f.build(t)

	_, err := uc.Process(context.Background(), "otro-tenant", textInput())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
