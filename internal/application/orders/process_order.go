package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/orderflow-api/internal/application/dto"
	"github.com/jhoicas/orderflow-api/internal/application/ports"
	"github.com/jhoicas/orderflow-api/internal/domain"
	"github.com/jhoicas/orderflow-api/internal/domain/anomaly"
	"github.com/jhoicas/orderflow-api/internal/domain/entity"
	"github.com/jhoicas/orderflow-api/internal/domain/repository"
	"github.com/jhoicas/orderflow-api/pkg/config"
	"github.com/jhoicas/orderflow-api/pkg/logger"
)

// CategoryContentFlagged flag informativo del veredicto de moderación en modo log.
const CategoryContentFlagged = "content-flagged"

// catalogPageSize tamaño máximo del catálogo que se envía al LLM como contexto.
const catalogPageSize = 500

// PipelineConfig parámetros inmutables del pipeline, inyectados en el constructor.
type PipelineConfig struct {
	SafetyMode        string // strict | log | off
	ModerationHasKey  bool   // sin key la verificación se omite (warning único al arrancar)
	TranscribeTimeout time.Duration
	ExtractTimeout    time.Duration
	ModerationTimeout time.Duration
	PipelineTimeout   time.Duration
}

// ProcessInput entrada cruda de una petición de procesamiento.
type ProcessInput struct {
	CustomerID      string
	SourceType      string // voice_message | text_file
	OriginalMessage string
	Audio           []byte
	AudioFilename   string
}

// ProcessOrderUseCase orquesta el pipeline completo de un pedido:
// recibido → transcripción (solo voz) → moderación → extracción → anomalías → persistencia.
// Las etapas son estrictamente secuenciales; cada llamada externa lleva su
// propio timeout. Ante cualquier falla fatal igual se persiste un pedido en
// status error con el mensaje capturado: la falla parcial siempre es visible.
type ProcessOrderUseCase struct {
	txRunner     OrderTxRunner
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	transcribers []ports.Transcriber // cadena ordenada: primario, fallback
	moderation   ports.ModerationService
	extractor    ports.OrderExtractor
	detector     *anomaly.Detector
	cfg          PipelineConfig
	log          *logger.Logger
}

// NewProcessOrderUseCase construye el caso de uso. Advierte una sola vez si
// la moderación está habilitada pero no hay API key configurada.
func NewProcessOrderUseCase(
	txRunner OrderTxRunner,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	transcribers []ports.Transcriber,
	moderation ports.ModerationService,
	extractor ports.OrderExtractor,
	detector *anomaly.Detector,
	cfg PipelineConfig,
	log *logger.Logger,
) *ProcessOrderUseCase {
	if cfg.SafetyMode != config.SafetyModeOff && !cfg.ModerationHasKey {
		log.Warn().
			Str("safety_mode", cfg.SafetyMode).
			Msg("WHITE_CIRCLE_API_KEY no configurado: la verificación de contenido se omitirá hasta que haya key")
	}
	return &ProcessOrderUseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		transcribers: transcribers,
		moderation:   moderation,
		extractor:    extractor,
		detector:     detector,
		cfg:          cfg,
		log:          log.Component("pipeline"),
	}
}

// Process ejecuta el pipeline de punta a punta.
//
// El contexto de la petición se desacopla con context.WithoutCancel: si el
// cliente se desconecta a mitad del pipeline, el procesamiento continúa y el
// resultado (o el error) queda persistido igual. El deadline total del
// pipeline acota la vida de la tarea.
//
// Retorna error solo cuando no hay pedido que mostrar (entrada inválida,
// cliente inexistente) o cuando la política strict rechaza el contenido
// (ErrContentRejected, con el registro error ya persistido y referenciado en
// la respuesta). Las demás fallas fatales se reflejan en la respuesta como
// un pedido en status error.
func (uc *ProcessOrderUseCase) Process(ctx context.Context, tenantID string, in ProcessInput) (*dto.ProcessOrderResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.PipelineTimeout)
	defer cancel()

	customer, err := uc.customerRepo.GetByID(tenantID, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente: %w", err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}

	// ── Etapa 1: transcripción (solo voz) ────────────────────────────────
	transcript := in.OriginalMessage
	provider := ""
	if in.SourceType == entity.SourceVoiceMessage {
		transcript, provider, err = uc.transcribe(ctx, in.Audio, in.AudioFilename)
		if err != nil {
			resp, perr := uc.persistErrorOrder(ctx, tenantID, customer, in, "", "", err.Error())
			if perr != nil {
				return nil, perr
			}
			return resp, nil
		}
	}

	// ── Etapa 2: filtro de seguridad de contenido ────────────────────────
	var safetyFlag *entity.AnomalyFlag
	verdict, err := uc.checkSafety(ctx, transcript)
	switch {
	case err != nil && uc.cfg.SafetyMode == config.SafetyModeStrict:
		// En strict una falla de transporte NUNCA aprueba contenido en silencio.
		uc.log.Error().Err(err).Msg("moderación no disponible en modo strict: pipeline abortado")
		resp, perr := uc.persistErrorOrder(ctx, tenantID, customer, in, transcript, provider,
			"verificación de contenido no disponible: "+err.Error())
		if perr != nil {
			return nil, perr
		}
		return resp, nil
	case err != nil:
		uc.log.Warn().Err(err).Str("safety_mode", uc.cfg.SafetyMode).Msg("moderación no disponible, se continúa")
	case verdict != nil && verdict.Unsafe():
		if uc.cfg.SafetyMode == config.SafetyModeStrict {
			uc.log.Warn().Str("decision", verdict.Decision).Str("reason", verdict.Reason).
				Msg("contenido bloqueado por la política de seguridad (strict)")
			resp, perr := uc.persistErrorOrder(ctx, tenantID, customer, in, transcript, provider,
				"contenido rechazado por la política de seguridad: "+verdict.Reason)
			if perr != nil {
				return nil, perr
			}
			return resp, domain.ErrContentRejected
		}
		uc.log.Warn().Str("decision", verdict.Decision).Str("reason", verdict.Reason).
			Msg("contenido marcado por moderación (modo log), se continúa")
		safetyFlag = &entity.AnomalyFlag{
			Category: CategoryContentFlagged,
			Severity: entity.SeverityInformational,
			Reason:   fmt.Sprintf("moderación: decisión %s (%s)", verdict.Decision, verdict.Reason),
		}
	}

	// ── Etapa 3: extracción estructurada vía LLM ─────────────────────────
	catalog, catalogMap, err := uc.loadCatalog(tenantID)
	if err != nil {
		return nil, fmt.Errorf("cargar catálogo: %w", err)
	}

	extractCtx, cancelExtract := context.WithTimeout(ctx, uc.cfg.ExtractTimeout)
	items, err := uc.extractor.Extract(extractCtx, transcript, catalog)
	cancelExtract()
	if err != nil {
		uc.log.Error().Err(err).Msg("extracción fallida")
		resp, perr := uc.persistErrorOrder(ctx, tenantID, customer, in, transcript, provider,
			"extracción fallida: "+err.Error())
		if perr != nil {
			return nil, perr
		}
		return resp, nil
	}

	// ── Etapa 4: detección de anomalías (pura) ───────────────────────────
	orderItems, total := buildLines(items)
	parsed := anomaly.ParsedOrder{TotalAmount: total}
	for _, it := range items {
		parsed.Items = append(parsed.Items, anomaly.ParsedItem{
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	history := anomaly.CustomerHistory{
		OrderCount:         customer.OrderCount,
		AverageOrderAmount: customer.AverageOrderAmount(),
	}
	flags := uc.detector.Detect(parsed, history, catalogMap)
	if safetyFlag != nil {
		flags = append(flags, *safetyFlag)
	}

	// ── Etapa 5: decisión de estado + persistencia atómica ───────────────
	status := entity.OrderStatusProcessing
	errorMessage := ""
	switch {
	case len(orderItems) == 0:
		// Un pedido sin líneas nunca queda en processing.
		status = entity.OrderStatusError
		errorMessage = "no se pudo extraer ninguna línea de pedido del mensaje"
	case anomaly.RequiresReview(flags):
		status = entity.OrderStatusReview
	}

	order := &entity.Order{
		ID:                    uuid.New().String(),
		TenantID:              tenantID,
		CustomerID:            customer.ID,
		CustomerCompanyName:   customer.CompanyName,
		SourceType:            in.SourceType,
		OriginalMessage:       in.OriginalMessage,
		Transcript:            transcript,
		TranscriptionProvider: provider,
		Status:                status,
		TotalAmount:           total,
		ItemCount:             len(orderItems),
		ErrorMessage:          errorMessage,
	}

	if err := uc.persistOrder(ctx, order, orderItems, flags, customer); err != nil {
		return nil, fmt.Errorf("persistir pedido: %w", err)
	}

	uc.log.Info().
		Str("order_number", order.OrderNumber).
		Str("customer", customer.CompanyName).
		Str("status", order.Status).
		Int("items", order.ItemCount).
		Int("anomalies", len(flags)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("pedido procesado")

	return &dto.ProcessOrderResponse{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		Status:            order.Status,
		TotalAmount:       order.TotalAmount,
		ItemCount:         order.ItemCount,
		AnomaliesDetected: len(flags),
		ErrorMessage:      order.ErrorMessage,
	}, nil
}

func validateInput(in ProcessInput) error {
	if in.CustomerID == "" {
		return domain.ErrInvalidInput
	}
	switch in.SourceType {
	case entity.SourceVoiceMessage:
		if len(in.Audio) == 0 {
			return domain.ErrInvalidInput
		}
	case entity.SourceTextFile:
		if in.OriginalMessage == "" {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// transcribe recorre la cadena de proveedores en orden hasta que uno responda.
// Un solo fallback documentado, sin reintentos por proveedor. Si todos fallan
// retorna ErrTranscriptionUnavailable (fatal para esta petición).
func (uc *ProcessOrderUseCase) transcribe(ctx context.Context, audio []byte, filename string) (text, provider string, err error) {
	for _, t := range uc.transcribers {
		callCtx, cancel := context.WithTimeout(ctx, uc.cfg.TranscribeTimeout)
		text, err = t.Transcribe(callCtx, audio, filename)
		cancel()
		if err == nil {
			return text, t.Name(), nil
		}
		uc.log.Warn().Err(err).Str("provider", t.Name()).Msg("proveedor de transcripción falló, probando siguiente")
	}
	return "", "", domain.ErrTranscriptionUnavailable
}

// checkSafety llama al servicio de moderación según el modo configurado.
// Retorna (nil, nil) cuando la verificación se omite (modo off o sin key).
func (uc *ProcessOrderUseCase) checkSafety(ctx context.Context, text string) (*ports.SafetyVerdict, error) {
	if uc.cfg.SafetyMode == config.SafetyModeOff {
		uc.log.Debug().Msg("verificación de contenido omitida (SAFETY_MODE=off)")
		return nil, nil
	}
	if !uc.cfg.ModerationHasKey {
		uc.log.Debug().Msg("verificación de contenido omitida: sin API key")
		return nil, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, uc.cfg.ModerationTimeout)
	defer cancel()
	return uc.moderation.Check(callCtx, text)
}

// loadCatalog carga el catálogo del tenant en las dos formas que lo consumen
// el extractor (lista para el prompt) y el detector (mapa por SKU).
func (uc *ProcessOrderUseCase) loadCatalog(tenantID string) ([]ports.CatalogItem, map[string]anomaly.CatalogEntry, error) {
	products, err := uc.productRepo.ListByTenant(tenantID, catalogPageSize, 0)
	if err != nil {
		return nil, nil, err
	}
	list := make([]ports.CatalogItem, 0, len(products))
	m := make(map[string]anomaly.CatalogEntry, len(products))
	for _, p := range products {
		list = append(list, ports.CatalogItem{SKU: p.SKU, Name: p.Name, UnitPrice: p.UnitPrice})
		m[p.SKU] = anomaly.CatalogEntry{ProductName: p.Name, UnitPrice: p.UnitPrice}
	}
	return list, m, nil
}

// buildLines convierte las líneas extraídas en OrderItems y calcula el total.
// LineTotal = qty × precio extraído; el invariante total == Σ líneas se
// cumple por construcción.
func buildLines(items []ports.ExtractedItem) ([]*entity.OrderItem, decimal.Decimal) {
	total := decimal.Zero
	out := make([]*entity.OrderItem, 0, len(items))
	for _, it := range items {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		out = append(out, &entity.OrderItem{
			ID:          uuid.New().String(),
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return out, total
}

// persistOrder escribe pedido + líneas + flags y, si el pipeline fue sano,
// actualiza agregados del cliente y reserva stock, todo en una transacción.
func (uc *ProcessOrderUseCase) persistOrder(
	ctx context.Context,
	order *entity.Order,
	items []*entity.OrderItem,
	flags []entity.AnomalyFlag,
	customer *entity.Customer,
) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	return uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		customerRepo repository.CustomerRepository,
		productRepo repository.ProductRepository,
	) error {
		seq, err := orderRepo.CountByDate(order.TenantID, now)
		if err != nil {
			return err
		}
		order.OrderNumber = orderNumber(now, seq+1)

		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, item := range items {
			item.OrderID = order.ID
			if err := orderRepo.CreateItem(item); err != nil {
				return err
			}
		}
		for i := range flags {
			flag := flags[i]
			flag.ID = uuid.New().String()
			flag.OrderID = order.ID
			if err := orderRepo.CreateFlag(&flag); err != nil {
				return err
			}
		}

		if order.Status == entity.OrderStatusError {
			return nil // sin reserva ni agregados para pedidos fallidos
		}
		for _, item := range items {
			// Solo se reservan SKUs del catálogo; los desconocidos ya tienen flag.
			if err := productRepo.ReserveStock(order.TenantID, item.SKU, item.Quantity); err != nil {
				return err
			}
		}
		return customerRepo.IncrementOrderStats(order.TenantID, customer.ID, order.TotalAmount)
	})
}

// persistErrorOrder persiste el registro mínimo de una falla fatal del
// pipeline: el usuario siempre ve el intento en el dashboard.
func (uc *ProcessOrderUseCase) persistErrorOrder(
	ctx context.Context,
	tenantID string,
	customer *entity.Customer,
	in ProcessInput,
	transcript, provider, message string,
) (*dto.ProcessOrderResponse, error) {
	order := &entity.Order{
		ID:                    uuid.New().String(),
		TenantID:              tenantID,
		CustomerID:            customer.ID,
		CustomerCompanyName:   customer.CompanyName,
		SourceType:            in.SourceType,
		OriginalMessage:       in.OriginalMessage,
		Transcript:            transcript,
		TranscriptionProvider: provider,
		Status:                entity.OrderStatusError,
		TotalAmount:           decimal.Zero,
		ErrorMessage:          message,
	}
	if err := uc.persistOrder(ctx, order, nil, nil, customer); err != nil {
		return nil, fmt.Errorf("persistir pedido fallido: %w", err)
	}
	uc.log.Error().
		Str("order_number", order.OrderNumber).
		Str("customer", customer.CompanyName).
		Str("error", message).
		Msg("pipeline fallido, pedido registrado en error")

	return &dto.ProcessOrderResponse{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		Status:       entity.OrderStatusError,
		TotalAmount:  decimal.Zero,
		ErrorMessage: message,
	}, nil
}

// orderNumber formato legible ORD-YYYYMMDDnn (secuencia diaria por tenant).
func orderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s%02d", day.Format("20060102"), seq)
}
