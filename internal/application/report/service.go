// Package report arma el informe diario de gestión de un tenant a partir
// de los agregados del datamart.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
	"github.com/jhoicas/cobranza-etl/pkg/logger"
)

// FilaDiaria es una fila de daily_metrics tal como vive en el datamart.
type FilaDiaria struct {
	Fecha               time.Time
	Ejecutivo           string
	Canal               string
	Servicio            string
	Cartera             string
	TotalGestiones      int
	ContactosEfectivos  int
	GestionesPDP        int
	ClientesGestionados int
	TasaContactabilidad decimal.Decimal
	TasaPDP             decimal.Decimal
}

// MetricsReader lee los agregados diarios del datamart.
type MetricsReader interface {
	DailyMetrics(ctx context.Context, schema string, fecha time.Time) ([]FilaDiaria, error)
}

// Renderer materializa el informe en un formato de salida (PDF).
type Renderer interface {
	RenderDaily(informe *InformeDiario) ([]byte, error)
}

// InformeDiario es el informe de gestión de un tenant para una fecha.
type InformeDiario struct {
	TenantID string
	Nombre   string
	Fecha    time.Time

	TotalGestiones      int
	ContactosEfectivos  int
	GestionesPDP        int
	ClientesGestionados int

	// Métricas derivadas con sus niveles de rendimiento.
	Metricas []entity.Metric

	// Detalle por ejecutivo/canal ordenado por volumen.
	Filas []FilaDiaria
}

// Service caso de uso de reporting diario.
type Service struct {
	registry etl.ConfigRegistry
	reader   MetricsReader
	renderer Renderer
	log      *logger.Logger
}

// NewService construye el caso de uso de reporting.
func NewService(registry etl.ConfigRegistry, reader MetricsReader, renderer Renderer, log *logger.Logger) *Service {
	return &Service{registry: registry, reader: reader, renderer: renderer, log: log}
}

// BuildDaily arma el informe diario del tenant para la fecha.
func (s *Service) BuildDaily(ctx context.Context, tenantID string, fecha time.Time) (*InformeDiario, error) {
	cfg, err := s.registry.GetConfig(tenantID)
	if err != nil {
		return nil, err
	}

	filas, err := s.reader.DailyMetrics(ctx, cfg.Schema, fecha)
	if err != nil {
		return nil, err
	}

	informe := &InformeDiario{
		TenantID: cfg.TenantID,
		Nombre:   cfg.Nombre,
		Fecha:    fecha,
		Filas:    filas,
	}
	for _, f := range filas {
		informe.TotalGestiones += f.TotalGestiones
		informe.ContactosEfectivos += f.ContactosEfectivos
		informe.GestionesPDP += f.GestionesPDP
		informe.ClientesGestionados += f.ClientesGestionados
	}

	informe.Metricas = s.derivarMetricas(informe)
	return informe, nil
}

// RenderDaily arma el informe y lo materializa con el renderer configurado.
func (s *Service) RenderDaily(ctx context.Context, tenantID string, fecha time.Time) ([]byte, error) {
	informe, err := s.BuildDaily(ctx, tenantID, fecha)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderDaily(informe)
}

// derivarMetricas calcula las tasas globales del día desde los totales.
// Las tasas por fila ya vienen materializadas del rollup; aquí se derivan
// las del tenant completo. Una métrica que no pasa sus invariantes (una
// tasa fuera de 0..100 por datos corruptos en el rollup) se excluye del
// informe y se deja rastro en el log.
func (s *Service) derivarMetricas(inf *InformeDiario) []entity.Metric {
	var metricas []entity.Metric
	filtros := map[string]string{"tenant": inf.TenantID}

	agregar := func(nombre string, valor decimal.Decimal, unidad entity.Unidad) {
		m, err := entity.NewMetric(nombre, valor, unidad, entity.PeriodoDiario, filtros)
		if err != nil {
			s.log.Warn().Err(err).
				Str("tenant", inf.TenantID).
				Str("metrica", nombre).
				Str("fecha", inf.Fecha.Format("2006-01-02")).
				Msg("métrica excluida del informe diario")
			return
		}
		metricas = append(metricas, m)
	}

	total := decimal.NewFromInt(int64(inf.TotalGestiones))
	contactos := decimal.NewFromInt(int64(inf.ContactosEfectivos))
	pdp := decimal.NewFromInt(int64(inf.GestionesPDP))
	cien := decimal.NewFromInt(100)

	tasaContactabilidad := decimal.Zero
	if total.IsPositive() {
		tasaContactabilidad = contactos.Mul(cien).Div(total).Round(2)
	}
	agregar("tasa_contactabilidad", tasaContactabilidad, entity.UnidadPorcentaje)

	tasaPDP := decimal.Zero
	if contactos.IsPositive() {
		tasaPDP = pdp.Mul(cien).Div(contactos).Round(2)
	}
	agregar("tasa_pdp", tasaPDP, entity.UnidadPorcentaje)

	agregar("total_gestiones", total, entity.UnidadCantidad)

	return metricas
}
