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

	"github.com/kiosco-app/ventas-api/internal/application/auth"
	"github.com/kiosco-app/ventas-api/internal/application/sales"
	"github.com/kiosco-app/ventas-api/internal/application/usecase"
	inframail "github.com/kiosco-app/ventas-api/internal/infrastructure/mail"
	infrapdf "github.com/kiosco-app/ventas-api/internal/infrastructure/pdf"
	"github.com/kiosco-app/ventas-api/internal/infrastructure/postgres"
	httpRouter "github.com/kiosco-app/ventas-api/internal/interfaces/http"
	"github.com/kiosco-app/ventas-api/pkg/config"
	"github.com/kiosco-app/ventas-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Comprobantes: PDF siempre disponible; envío por email solo si hay SMTP
	// configurado (notifier nil = la venta nunca intenta notificar).
	receiptRenderer := infrapdf.NewMarotoReceiptRenderer(cfg.App.Name)
	var notifier sales.Notifier
	if cfg.SMTP.Host != "" {
		notifier = inframail.NewSMTPNotifier(cfg.SMTP)
	}

	createSaleUC := sales.NewCreateSaleUseCase(
		txRunner, productRepo, customerRepo, saleRepo,
		notifier, receiptRenderer, log,
	)
	saleQueryUC := sales.NewSaleQueryUseCase(saleRepo, customerRepo)
	receiptUC := sales.NewReceiptUseCase(saleQueryUC, receiptRenderer)

	productUC := usecase.NewProductUseCase(productRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	reportUC := usecase.NewReportUseCase(productRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		CustomerUC: customerUC,
		ReportUC:   reportUC,
		CreateSale: createSaleUC,
		SaleQuery:  saleQueryUC,
		Receipt:    receiptUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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
