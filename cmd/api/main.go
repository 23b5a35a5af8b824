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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/tienda-empleados-api/docs"
	"github.com/jhoicas/tienda-empleados-api/internal/application/cart"
	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/internal/application/fulfillment"
	"github.com/jhoicas/tienda-empleados-api/internal/application/notification"
	"github.com/jhoicas/tienda-empleados-api/internal/application/orders"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/cache"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/mail"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/tienda-empleados-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/tienda-empleados-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-empleados-api/pkg/config"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

// storage cubre lo que piden todos los casos de uso (postgres.TxRunner o memory.Store).
type storage interface {
	checkout.TxRunner
	fulfillment.TxRunner
	cart.TxRunner
	notification.TxRunner
	orders.Viewer
}

// @title        Tienda de Empleados API
// @version      1.0
// @description  Carrito, checkout con cuota semanal y despacho de pedidos.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store storage
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store = memory.NewStore()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, false); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Msg("migraciones aplicadas")
		}
		store = postgres.NewTxRunner(pool)
	}

	// Caché de reintentos: opcional, la base sigue siendo la fuente de verdad.
	var replay checkout.ReplayCache
	if cfg.Redis.Addr != "" {
		rc := cache.NewReplayCache(cfg.Redis)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, se continúa sin caché")
		} else {
			replay = rc
		}
		defer rc.Close()
	}

	receipts := infrapdf.NewReceiptGenerator("")

	var notifier notification.Notifier = notification.LogNotifier{Log: log.Named("mail")}
	if cfg.SMTP.Enabled() {
		notifier = mail.NewSMTPNotifier(cfg.SMTP)
	}
	dispatcher := notification.NewDispatcher(store, receipts, notifier, 30*time.Second, log)

	calendar := order.Calendar{
		Location:  cfg.Store.Location,
		WeekStart: cfg.Store.WeekStartWeekday,
		Blackout:  cfg.Store.BlackoutWeekday,
	}
	checkoutUC := checkout.NewUseCase(store, checkout.OrderWriter{}, replay, dispatcher, checkout.Config{
		Quota:             cfg.Store.WeeklyQuota,
		Calendar:          calendar,
		IdempotencyWindow: cfg.Store.IdempotencyWindow,
	}, log)
	fulfillmentUC := fulfillment.NewUseCase(store, nil, log)
	cartUC := cart.NewUseCase(store, nil)
	queryUC := orders.NewQueryUseCase(store, cfg.Store.WeeklyQuota, calendar, receipts, nil)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.AccessLog(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tienda de Empleados API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CartUC:         cartUC,
		CheckoutUC:     checkoutUC,
		FulfillmentUC:  fulfillmentUC,
		QueryUC:        queryUC,
		JWTSecret:      cfg.JWT.Secret,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Location:       cfg.Store.Location,
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

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Correos en vuelo antes de cerrar el pool.
	dispatcher.Wait()

	log.Info().Msg("aplicación detenida")
}
