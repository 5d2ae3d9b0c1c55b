// Package etl orquesta el pipeline diario por tenant: prueba de
// conexiones, extracción concurrente, homologación, carga idempotente y
// refresco de agregados. Cada fecha corre la máquina de estados completa;
// en un rango, la falla de una fecha se aísla y el resto continúa.
package etl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cobranza-etl/internal/domain"
	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
	"github.com/jhoicas/cobranza-etl/internal/domain/homologation"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
	"github.com/jhoicas/cobranza-etl/pkg/logger"
)

// Options ajusta el comportamiento del orquestador.
type Options struct {
	// TimeoutPorLlamada aplica a cada llamada de puerto (extracción,
	// carga, prueba de conexión), no a la corrida completa. Un timeout
	// se trata igual que una falla de conectividad.
	TimeoutPorLlamada time.Duration
	// LimiteMuestraOmisiones acota la muestra de registros omitidos que
	// viaja en el RunSummary.
	LimiteMuestraOmisiones int
	// WorkersHomologacion dimensiona el fan-out de homologación de
	// gestiones. La homologación es pura, así que el único efecto es
	// throughput.
	WorkersHomologacion int
}

func (o Options) conDefaults() Options {
	if o.TimeoutPorLlamada <= 0 {
		o.TimeoutPorLlamada = 60 * time.Second
	}
	if o.LimiteMuestraOmisiones <= 0 {
		o.LimiteMuestraOmisiones = 10
	}
	if o.WorkersHomologacion <= 0 {
		o.WorkersHomologacion = 4
	}
	return o
}

// Orchestrator ejecuta el pipeline extract → homologate → load → aggregate
// para un tenant y una fecha. Los vendors de extracción se seleccionan por
// configuración del tenant al construir el orquestador.
type Orchestrator struct {
	registry    ConfigRegistry
	writer      DatamartWriter
	extractores map[tenant.TipoFuente]Extractor
	opts        Options
	log         *logger.Logger
	estado      *statusStore
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	registry ConfigRegistry,
	writer DatamartWriter,
	extractores map[tenant.TipoFuente]Extractor,
	log *logger.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		writer:      writer,
		extractores: extractores,
		opts:        opts.conDefaults(),
		log:         log,
		estado:      newStatusStore(),
	}
}

// RunForDate ejecuta la máquina de estados completa para una fecha.
// Nunca devuelve error: el resultado, exitoso o no, viaja en el
// RunSummary con el error terminal clasificado.
func (o *Orchestrator) RunForDate(ctx context.Context, tenantID string, fecha time.Time) *RunSummary {
	inicio := time.Now()
	summary := &RunSummary{
		RunID:    uuid.New().String(),
		TenantID: tenantID,
		Fecha:    fecha,
		Estado:   EstadoIdle,
	}
	log := o.log.With().
		Str("run_id", summary.RunID).
		Str("tenant", tenantID).
		Str("fecha", fecha.Format("2006-01-02")).
		Logger()

	log.Info().Msg("iniciando corrida ETL")
	o.ejecutar(ctx, summary, &log)

	summary.Duracion = time.Since(inicio).Seconds()
	o.estado.guardar(summary)

	if summary.Exitosa() {
		log.Info().
			Float64("duracion_segundos", summary.Duracion).
			Int("gestiones_cargadas", summary.GestionesCargadas).
			Int("clientes_cargados", summary.ClientesCargados).
			Int("omitidas", summary.GestionesOmitidas+summary.ClientesOmitidos).
			Msg("corrida ETL completada")
	} else {
		log.Error().
			Float64("duracion_segundos", summary.Duracion).
			Str("clase_error", summary.ClaseError).
			Str("error", summary.Error).
			Msg("corrida ETL fallida")
	}
	return summary
}

// RunForRange ejecuta una pasada completa por cada fecha del rango,
// secuencialmente e incluyendo ambos extremos. La falla de una fecha se
// aísla: las fechas siguientes se ejecutan igual. Un backfill de varios
// días debe ser resiliente a un día malo.
func (o *Orchestrator) RunForRange(ctx context.Context, tenantID string, desde, hasta time.Time) []*RunSummary {
	var summaries []*RunSummary
	for fecha := desde; !fecha.After(hasta); fecha = fecha.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			// Cancelación externa: no iniciar fechas nuevas.
			break
		}
		summaries = append(summaries, o.RunForDate(ctx, tenantID, fecha))
	}
	return summaries
}

// GetStatus devuelve el último resultado registrado para tenant y fecha,
// o domain.ErrNotRun si la fecha no se ha procesado.
func (o *Orchestrator) GetStatus(tenantID string, fecha time.Time) (*RunSummary, error) {
	return o.estado.buscar(tenantID, fecha)
}

// fallar marca la corrida como Failed con el error clasificado.
func fallar(summary *RunSummary, err error) {
	summary.Estado = EstadoFailed
	summary.Error = err.Error()
	summary.ClaseError = clasificar(err)
}

// cancelada verifica la señal de cancelación entre etapas. Un batch en
// vuelo termina antes de honrarla, para no dejar una fecha a medio cargar.
func cancelada(ctx context.Context, summary *RunSummary) bool {
	if err := ctx.Err(); err != nil {
		fallar(summary, err)
		return true
	}
	return false
}

func (o *Orchestrator) ejecutar(ctx context.Context, summary *RunSummary, log *zerolog.Logger) {
	// Configuración: snapshot inmutable para toda la corrida. Una
	// configuración incompleta falla cerrado antes de tocar datos.
	cfg, err := o.registry.GetConfig(summary.TenantID)
	if err != nil {
		fallar(summary, err)
		return
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		detalles := make([]string, len(errs))
		for i, e := range errs {
			detalles[i] = e.Error()
		}
		fallar(summary, &domain.ConfigurationError{TenantID: summary.TenantID, Detalles: detalles})
		return
	}
	extractor, ok := o.extractores[cfg.Fuente.Tipo]
	if !ok {
		fallar(summary, &domain.ConfigurationError{TenantID: summary.TenantID,
			Detalles: []string{fmt.Sprintf("sin extractor registrado para fuente %q", cfg.Fuente.Tipo)}})
		return
	}

	// TestingConnections: fuente y destino deben confirmar antes de
	// intentar trabajo parcial.
	summary.Estado = EstadoProbandoConexiones
	if err := o.probarConexiones(ctx, extractor, summary.TenantID); err != nil {
		fallar(summary, err)
		return
	}
	log.Debug().Msg("conexiones verificadas")

	if cancelada(ctx, summary) {
		return
	}

	// Extracting: clientes y gestiones en paralelo (datos independientes,
	// sin dependencia de orden). Cualquier falla es fatal para la fecha.
	summary.Estado = EstadoExtrayendo
	clientesRaw, gestionesRaw, err := o.extraer(ctx, extractor, summary.TenantID, summary.Fecha)
	if err != nil {
		fallar(summary, err)
		return
	}
	summary.ClientesExtraidos = len(clientesRaw)
	summary.GestionesExtraidas = len(gestionesRaw)
	log.Info().
		Int("clientes", len(clientesRaw)).
		Int("gestiones", len(gestionesRaw)).
		Msg("extracción completada")

	if cancelada(ctx, summary) {
		return
	}

	// Homologating: una omisión nunca escala a falla de corrida; un campo
	// sin mapeo sí, porque es un defecto de configuración.
	summary.Estado = EstadoHomologando
	eng := homologation.New(cfg)

	clientes, err := o.homologarClientes(eng, clientesRaw, summary)
	if err != nil {
		fallar(summary, err)
		return
	}
	gestiones, err := o.homologarGestiones(eng, gestionesRaw, summary)
	if err != nil {
		fallar(summary, err)
		return
	}
	summary.ClientesHomologados = len(clientes)
	summary.GestionesHomologadas = len(gestiones)
	log.Info().
		Int("clientes", len(clientes)).
		Int("gestiones", len(gestiones)).
		Int("omitidos", summary.ClientesOmitidos+summary.GestionesOmitidas).
		Msg("homologación completada")

	if cancelada(ctx, summary) {
		return
	}

	// Loading: clientes antes que gestiones. Las gestiones referencian
	// clientes por documento; el orden de carga preserva la sanidad
	// referencial aunque el destino no declare foreign keys.
	summary.Estado = EstadoCargando
	nClientes, err := o.upsertClientes(ctx, cfg.Schema, clientes)
	if err != nil {
		fallar(summary, &domain.DestinationUnavailableError{Causa: err})
		return
	}
	summary.ClientesCargados = nClientes

	nGestiones, err := o.upsertGestiones(ctx, cfg.Schema, gestiones)
	if err != nil {
		fallar(summary, &domain.DestinationUnavailableError{Causa: err})
		return
	}
	summary.GestionesCargadas = nGestiones
	log.Info().
		Int("clientes", nClientes).
		Int("gestiones", nGestiones).
		Msg("carga completada")

	// RefreshingAggregates: su falla se reporta pero no revierte la
	// carga. Los hechos son la fuente de verdad; el agregado puede
	// rederivarse en la próxima corrida.
	summary.Estado = EstadoRefrescandoAgregados
	if err := o.refrescarAgregados(ctx, cfg.Schema, summary.Fecha); err != nil {
		aggErr := &domain.AggregateRefreshError{Fecha: summary.Fecha.Format("2006-01-02"), Causa: err}
		summary.ErrorAgregados = aggErr.Error()
		log.Warn().Err(aggErr).Msg("refresco de agregados fallido; la carga se mantiene")
	} else {
		summary.AgregadosRefrescados = true
	}

	summary.Estado = EstadoDone
}

func (o *Orchestrator) probarConexiones(ctx context.Context, extractor Extractor, tenantID string) error {
	ctxFuente, cancel := context.WithTimeout(ctx, o.opts.TimeoutPorLlamada)
	defer cancel()
	if err := extractor.TestConnection(ctxFuente, tenantID); err != nil {
		return &domain.SourceUnavailableError{TenantID: tenantID, Causa: err}
	}

	ctxDestino, cancel := context.WithTimeout(ctx, o.opts.TimeoutPorLlamada)
	defer cancel()
	if err := o.writer.TestConnection(ctxDestino); err != nil {
		return &domain.DestinationUnavailableError{Causa: err}
	}
	return nil
}

// extraer corre ambas extracciones en paralelo y falla si cualquiera falla.
func (o *Orchestrator) extraer(
	ctx context.Context,
	extractor Extractor,
	tenantID string,
	fecha time.Time,
) (clientes, gestiones []homologation.RawRecord, err error) {
	var wg sync.WaitGroup
	var errClientes, errGestiones error

	wg.Add(2)
	go func() {
		defer wg.Done()
		ctxCall, cancel := context.WithTimeout(ctx, o.opts.TimeoutPorLlamada)
		defer cancel()
		clientes, errClientes = extractor.ExtractClientes(ctxCall, tenantID, fecha)
	}()
	go func() {
		defer wg.Done()
		ctxCall, cancel := context.WithTimeout(ctx, o.opts.TimeoutPorLlamada)
		defer cancel()
		gestiones, errGestiones = extractor.ExtractGestiones(ctxCall, tenantID, fecha)
	}()
	wg.Wait()

	if errClientes != nil {
		return nil, nil, envolverFuente(tenantID, errClientes)
	}
	if errGestiones != nil {
		return nil, nil, envolverFuente(tenantID, errGestiones)
	}
	return clientes, gestiones, nil
}

func envolverFuente(tenantID string, err error) error {
	var src *domain.SourceUnavailableError
	if errors.As(err, &src) {
		return err
	}
	return &domain.SourceUnavailableError{TenantID: tenantID, Causa: err}
}

// registrarOmision cuenta una omisión y conserva una muestra acotada.
func (o *Orchestrator) registrarOmision(summary *RunSummary, entidad string, secuencia int, motivo string) {
	if entidad == "cliente" {
		summary.ClientesOmitidos++
	} else {
		summary.GestionesOmitidas++
	}
	if len(summary.MuestraOmisiones) < o.opts.LimiteMuestraOmisiones {
		summary.MuestraOmisiones = append(summary.MuestraOmisiones, Omision{
			Entidad: entidad, Secuencia: secuencia, Motivo: motivo,
		})
	}
}

func (o *Orchestrator) homologarClientes(
	eng *homologation.Engine,
	raws []homologation.RawRecord,
	summary *RunSummary,
) ([]*entity.Customer, error) {
	clientes := make([]*entity.Customer, 0, len(raws))
	for i, raw := range raws {
		c, err := eng.Cliente(raw)
		if err != nil {
			if domain.EsErrorDeRegistro(err) {
				o.registrarOmision(summary, "cliente", i+1, err.Error())
				continue
			}
			return nil, err
		}
		clientes = append(clientes, c)
	}
	return clientes, nil
}

// homologarGestiones reparte la homologación en un pool acotado de
// workers. Cada worker escribe solo sus propios índices del slice de
// resultados, así que no hay estado mutable compartido que requiera locks;
// la secuencia (y por tanto el ID determinístico) se fija por posición en
// el batch, no por orden de ejecución.
func (o *Orchestrator) homologarGestiones(
	eng *homologation.Engine,
	raws []homologation.RawRecord,
	summary *RunSummary,
) ([]*entity.Activity, error) {
	actividades := make([]*entity.Activity, len(raws))
	fallas := make([]error, len(raws))

	trabajos := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.opts.WorkersHomologacion; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range trabajos {
				actividades[idx], fallas[idx] = eng.Gestion(raws[idx], summary.Fecha, idx+1)
			}
		}()
	}
	for idx := range raws {
		trabajos <- idx
	}
	close(trabajos)
	wg.Wait()

	resultado := make([]*entity.Activity, 0, len(raws))
	for idx, err := range fallas {
		if err != nil {
			if domain.EsErrorDeRegistro(err) {
				o.registrarOmision(summary, "gestion", idx+1, err.Error())
				continue
			}
			return nil, err
		}
		resultado = append(resultado, actividades[idx])
	}
	return resultado, nil
}

func (o *Orchestrator) upsertClientes(ctx context.Context, schema string, clientes []*entity.Customer) (int, error) {
	if len(clientes) == 0 {
		return 0, nil
	}
	ctxCall, cancel := context.WithTimeout(ctx, o.opts.TimeoutPorLlamada)
	defer cancel()
	return o.writer.UpsertClientes(ctxCall, schema, clientes)
}

func (o *Orchestrator) upsertGestiones(ctx context.Context, schema string, gestiones []*entity.Activity) (int, error) {
	if len(gestiones) == 0 {
		return 0, nil
	}
	ctxCall, cancel := context.WithTimeout(ctx, o.opts.TimeoutPorLlamada)
	defer cancel()
	return o.writer.UpsertGestiones(ctxCall, schema, gestiones)
}

func (o *Orchestrator) refrescarAgregados(ctx context.Context, schema string, fecha time.Time) error {
	ctxCall, cancel := context.WithTimeout(ctx, o.opts.TimeoutPorLlamada)
	defer cancel()
	return o.writer.RefreshDailyAggregates(ctxCall, schema, fecha)
}
