// Corrida ETL desde línea de comandos, pensada para cron y backfills:
//
//	etl -tenant alpha -fecha 2026-08-29
//	etl -tenant alpha -desde 2026-08-01 -hasta 2026-08-29
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
	"github.com/jhoicas/cobranza-etl/internal/infrastructure/feed"
	"github.com/jhoicas/cobranza-etl/internal/infrastructure/postgres"
	"github.com/jhoicas/cobranza-etl/internal/infrastructure/tenantcfg"
	"github.com/jhoicas/cobranza-etl/pkg/config"
	"github.com/jhoicas/cobranza-etl/pkg/logger"
)

func main() {
	var (
		tenantID = flag.String("tenant", "", "ID del tenant a procesar (requerido)")
		fechaStr = flag.String("fecha", "", "fecha a procesar, YYYY-MM-DD")
		desdeStr = flag.String("desde", "", "inicio del rango, YYYY-MM-DD")
		hastaStr = flag.String("hasta", "", "fin del rango inclusivo, YYYY-MM-DD")
	)
	flag.Parse()

	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "falta -tenant")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al datamart")
	}
	defer pool.Close()

	registry := tenantcfg.NewRegistry(cfg.ETL.TenantsDir, cfg.ETL.ConfigTTL)

	tcfg, err := registry.GetConfig(*tenantID)
	if err != nil {
		log.Fatal().Err(err).Str("tenant", *tenantID).Msg("cargar configuración de tenant")
	}
	migrator := postgres.NewMigrator(pool, cfg.DB.ConnectionString(), cfg.ETL.MigrationsDir, log)
	if err := migrator.EnsureSchema(ctx, tcfg.Schema); err != nil {
		log.Fatal().Err(err).Msg("migrar schema del tenant")
	}

	sourceExtractor := postgres.NewSourceExtractor(registry)
	defer sourceExtractor.Close()

	orch := etl.NewOrchestrator(registry, postgres.NewDatamartWriter(pool),
		map[tenant.TipoFuente]etl.Extractor{
			tenant.FuentePostgres: sourceExtractor,
			tenant.FuenteCSV:      feed.NewCSVExtractor(cfg.ETL.FeedsDir),
		},
		log,
		etl.Options{
			TimeoutPorLlamada:      cfg.ETL.PortTimeout,
			LimiteMuestraOmisiones: cfg.ETL.SkipSampleLimit,
			WorkersHomologacion:    cfg.ETL.HomologationWorkers,
		},
	)

	summaries, err := correr(ctx, orch, *tenantID, *fechaStr, *desdeStr, *hastaStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	fallidas := 0
	for _, s := range summaries {
		if !s.Exitosa() {
			fallidas++
		}
	}
	if fallidas > 0 {
		log.Error().Int("fechas_fallidas", fallidas).Int("total", len(summaries)).Msg("corrida con fallas")
		os.Exit(1)
	}
	log.Info().Int("fechas", len(summaries)).Msg("corrida completada")
}

func correr(ctx context.Context, orch *etl.Orchestrator, tenantID, fechaStr, desdeStr, hastaStr string) ([]*etl.RunSummary, error) {
	parse := func(s, nombre string) (time.Time, error) {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("-%s inválida, use YYYY-MM-DD", nombre)
		}
		return t, nil
	}

	switch {
	case fechaStr != "":
		fecha, err := parse(fechaStr, "fecha")
		if err != nil {
			return nil, err
		}
		return []*etl.RunSummary{orch.RunForDate(ctx, tenantID, fecha)}, nil

	case desdeStr != "" && hastaStr != "":
		desde, err := parse(desdeStr, "desde")
		if err != nil {
			return nil, err
		}
		hasta, err := parse(hastaStr, "hasta")
		if err != nil {
			return nil, err
		}
		if hasta.Before(desde) {
			return nil, fmt.Errorf("-hasta es anterior a -desde")
		}
		return orch.RunForRange(ctx, tenantID, desde, hasta), nil

	default:
		return nil, fmt.Errorf("indique -fecha o -desde y -hasta")
	}
}
