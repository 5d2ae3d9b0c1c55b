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

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/application/report"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
	"github.com/jhoicas/cobranza-etl/internal/infrastructure/feed"
	infrapdf "github.com/jhoicas/cobranza-etl/internal/infrastructure/pdf"
	"github.com/jhoicas/cobranza-etl/internal/infrastructure/postgres"
	"github.com/jhoicas/cobranza-etl/internal/infrastructure/tenantcfg"
	httpRouter "github.com/jhoicas/cobranza-etl/internal/interfaces/http"
	"github.com/jhoicas/cobranza-etl/pkg/config"
	"github.com/jhoicas/cobranza-etl/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al datamart")
	}
	defer pool.Close()

	registry := tenantcfg.NewRegistry(cfg.ETL.TenantsDir, cfg.ETL.ConfigTTL)

	// Datamart al día: schema y migraciones por cada tenant configurado.
	migrator := postgres.NewMigrator(pool, cfg.DB.ConnectionString(), cfg.ETL.MigrationsDir, log)
	tenants, err := registry.ListTenants()
	if err != nil {
		log.Fatal().Err(err).Msg("listar tenants")
	}
	for _, tenantID := range tenants {
		tcfg, err := registry.GetConfig(tenantID)
		if err != nil {
			log.Fatal().Err(err).Str("tenant", tenantID).Msg("cargar configuración de tenant")
		}
		if err := migrator.EnsureSchema(ctx, tcfg.Schema); err != nil {
			log.Fatal().Err(err).Str("tenant", tenantID).Msg("migrar schema de tenant")
		}
	}

	sourceExtractor := postgres.NewSourceExtractor(registry)
	defer sourceExtractor.Close()
	csvExtractor := feed.NewCSVExtractor(cfg.ETL.FeedsDir)

	writer := postgres.NewDatamartWriter(pool)
	orch := etl.NewOrchestrator(registry, writer,
		map[tenant.TipoFuente]etl.Extractor{
			tenant.FuentePostgres: sourceExtractor,
			tenant.FuenteCSV:      csvExtractor,
		},
		log,
		etl.Options{
			TimeoutPorLlamada:      cfg.ETL.PortTimeout,
			LimiteMuestraOmisiones: cfg.ETL.SkipSampleLimit,
			WorkersHomologacion:    cfg.ETL.HomologationWorkers,
		},
	)

	metricsReader := postgres.NewMetricsReader(pool)
	reportSvc := report.NewService(registry, metricsReader, infrapdf.NewMarotoReportGenerator(), log)

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
		Title:    "Cobranza ETL API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orchestrator: orch,
		Registry:     registry,
		ReportSvc:    reportSvc,
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
