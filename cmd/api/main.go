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

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	infrapdf "github.com/jhoicas/bodega-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/bodega-stock/internal/infrastructure/redis"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/bodega-stock/internal/interfaces/http"
	"github.com/jhoicas/bodega-stock/pkg/config"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	version, err := postgres.Migrate(cfg.DB.ConnectionString(), postgres.MigrateUp)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Uint("version", version).Msg("esquema al día")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	levelRepo := postgres.NewInventoryLevelRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.TxTimeout)

	// Redis es opcional: sin REDIS_ADDR no se publican cambios de stock.
	var notifier inventory.StockNotifier
	redisClient, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, cambios de stock sin publicar")
	} else if redisClient != nil {
		defer redisClient.Close()
		notifier = infraredis.NewStockPublisher(redisClient, cfg.Redis.StockChannel)
	}

	lowThreshold, err := decimal.NewFromString(cfg.Inventory.LowStockThreshold)
	if err != nil {
		log.Warn().Str("value", cfg.Inventory.LowStockThreshold).Msg("INVENTORY_LOW_STOCK_THRESHOLD inválido, se usa el valor por defecto")
		lowThreshold = decimal.Zero
	}

	recordMovementUC := inventory.NewRecordMovementUseCase(txRunner, productRepo, notifier, log)
	transferUC := inventory.NewTransferUseCase(txRunner, productRepo, stockRepo, notifier, log)
	reconcileUC := inventory.NewReconcileUseCase(txRunner, productRepo, movementRepo, stockRepo, log)
	migrationUC := inventory.NewAreaMigrationUseCase(txRunner, notifier, log)
	importUC := inventory.NewImportUseCase(txRunner, log)
	queryUC := inventory.NewQueryUseCase(levelRepo, movementRepo, productRepo, lowThreshold)
	reportUC := inventory.NewReportUseCase(levelRepo, infrapdf.NewMarotoStockReportGenerator(cfg.App.Name))

	// Chequeo programado de desvíos (opcional).
	var sched *scheduler.Scheduler
	if cfg.Inventory.ReconcileCron != "" {
		job := scheduler.NewDriftJob(reconcileUC, cfg.Inventory.ReconcileRepair, log)
		sched, err = scheduler.New(cfg.Inventory.ReconcileCron, job, log)
		if err != nil {
			log.Fatal().Err(err).Msg("INVENTORY_RECONCILE_CRON inválido")
		}
		sched.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bodega Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RecordMovement: recordMovementUC,
		Transfer:       transferUC,
		Reconcile:      reconcileUC,
		AreaMigration:  migrationUC,
		Import:         importUC,
		Query:          queryUC,
		Report:         reportUC,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log,
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

	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
