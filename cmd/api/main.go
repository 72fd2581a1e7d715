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

	"github.com/cannaledger/cannaledger-api/internal/application/batchops"
	"github.com/cannaledger/cannaledger-api/internal/application/losstheft"
	appretention "github.com/cannaledger/cannaledger-api/internal/application/retention"
	"github.com/cannaledger/cannaledger-api/internal/infrastructure/notify"
	"github.com/cannaledger/cannaledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/cannaledger/cannaledger-api/internal/interfaces/http"
	"github.com/cannaledger/cannaledger-api/pkg/config"
	"github.com/cannaledger/cannaledger-api/pkg/logger"
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

	batchRepo := postgres.NewBatchRepository(pool)
	reportRepo := postgres.NewLossTheftReportRepository(pool)
	eventRepo := postgres.NewTraceabilityEventRepository(pool)
	countRepo := postgres.NewPhysicalCountRepository(pool)
	policyRepo := postgres.NewRetentionPolicyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	retentionSvc := appretention.NewService(policyRepo, log)

	notifier := notify.NewWebhookNotifier(
		cfg.Notify.WebhookURL,
		time.Duration(cfg.Notify.TimeoutSeconds)*time.Second,
		log,
	)

	engine := losstheft.NewEngine(
		txRunner, batchRepo, reportRepo, countRepo, userRepo,
		retentionSvc, notifier, log,
	)
	batchUC := batchops.NewBatchUseCase(txRunner, batchRepo, eventRepo, retentionSvc, log)

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
		Title:    "CannaLedger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		BatchUC:     batchUC,
		Engine:      engine,
		RetentionUC: retentionSvc,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log,
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
