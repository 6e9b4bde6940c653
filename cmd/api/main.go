package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	appanalytics "github.com/jhoicas/orderflow-api/internal/application/analytics"
	"github.com/jhoicas/orderflow-api/internal/application/auth"
	"github.com/jhoicas/orderflow-api/internal/application/customers"
	appinventory "github.com/jhoicas/orderflow-api/internal/application/inventory"
	"github.com/jhoicas/orderflow-api/internal/application/orders"
	"github.com/jhoicas/orderflow-api/internal/application/ports"
	"github.com/jhoicas/orderflow-api/internal/domain/anomaly"
	infraai "github.com/jhoicas/orderflow-api/internal/infrastructure/ai"
	infrapdf "github.com/jhoicas/orderflow-api/internal/infrastructure/pdf"
	"github.com/jhoicas/orderflow-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/orderflow-api/internal/interfaces/http"
	"github.com/jhoicas/orderflow-api/pkg/config"
	"github.com/jhoicas/orderflow-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("safety_mode", cfg.Pipeline.SafetyMode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cadena de transcripción: ElevenLabs primario, Whisper fallback.
	transcribers := []ports.Transcriber{
		infraai.NewElevenLabsTranscriber(cfg.AI.ElevenLabsAPIKey),
		infraai.NewWhisperTranscriber(cfg.AI.OpenAIAPIKey),
	}
	moderation := infraai.NewWhiteCircleModeration(cfg.AI.WhiteCircleAPIKey)
	extractor := infraai.NewAnthropicExtractor(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel)

	detector := anomaly.NewDetector(anomaly.Config{
		VolumeMultiplier: decimalFromConfig(cfg.Pipeline.VolumeMultiplier, log, "ANOMALY_VOLUME_MULTIPLIER"),
		PriceTolerance:   decimalFromConfig(cfg.Pipeline.PriceTolerancePct, log, "ANOMALY_PRICE_TOLERANCE_PCT").Div(decimal.NewFromInt(100)),
	})

	processOrderUC := orders.NewProcessOrderUseCase(
		txRunner, orderRepo, customerRepo, productRepo,
		transcribers, moderation, extractor, detector,
		orders.PipelineConfig{
			SafetyMode:        cfg.Pipeline.SafetyMode,
			ModerationHasKey:  cfg.AI.WhiteCircleAPIKey != "",
			TranscribeTimeout: time.Duration(cfg.Pipeline.TranscribeTimeoutSec) * time.Second,
			ExtractTimeout:    time.Duration(cfg.Pipeline.ExtractTimeoutSec) * time.Second,
			ModerationTimeout: time.Duration(cfg.Pipeline.ModerationTimeoutSec) * time.Second,
			PipelineTimeout:   time.Duration(cfg.Pipeline.PipelineTimeoutSec) * time.Second,
		},
		log,
	)
	orderUC := orders.NewOrderUseCase(orderRepo)
	pdfUC := orders.NewPDFUseCase(orderRepo, customerRepo, infrapdf.NewMarotoOrderPDF())
	customerUC := customers.NewCustomerUseCase(customerRepo)
	inventoryUC := appinventory.NewInventoryUseCase(productRepo)
	analyticsUC := appanalytics.NewAnalyticsUseCase(analyticsRepo)
	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    25 << 20, // notas de voz multipart
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "OrderFlow API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProcessOrderUC: processOrderUC,
		OrderUC:        orderUC,
		PDFUC:          pdfUC,
		CustomerUC:     customerUC,
		InventoryUC:    inventoryUC,
		AnalyticsUC:    analyticsUC,
		AuthUC:         authUC,
		TenantRepo:     tenantRepo,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// decimalFromConfig parsea un parámetro decimal de configuración; con valor
// inválido advierte y devuelve cero (el detector aplicará su default).
func decimalFromConfig(s string, log *logger.Logger, name string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Warn().Str("var", name).Str("valor", s).Msg("valor decimal inválido, se usa el default")
		return decimal.Zero
	}
	return d
}
