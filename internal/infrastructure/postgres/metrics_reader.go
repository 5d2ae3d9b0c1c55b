package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cobranza-etl/internal/application/report"
)

var _ report.MetricsReader = (*MetricsReader)(nil)

// MetricsReader lado de lectura de los agregados diarios del datamart
// (usable con pool o tx).
type MetricsReader struct {
	q Querier
}

// NewMetricsReader construye el lector de métricas. Pasar pool o tx (Querier).
func NewMetricsReader(q Querier) *MetricsReader {
	return &MetricsReader{q: q}
}

// DailyMetrics devuelve las filas de daily_metrics del schema para la
// fecha, ordenadas por volumen de gestiones descendente.
func (r *MetricsReader) DailyMetrics(ctx context.Context, schema string, fecha time.Time) ([]report.FilaDiaria, error) {
	query := fmt.Sprintf(`
		SELECT fecha, ejecutivo, canal, servicio, cartera,
		       total_gestiones, contactos_efectivos, gestiones_pdp, clientes_gestionados,
		       tasa_contactabilidad, COALESCE(tasa_pdp, 0)
		FROM %s
		WHERE fecha = $1
		ORDER BY total_gestiones DESC, ejecutivo`, tabla(schema, "daily_metrics"))

	rows, err := r.q.Query(ctx, query, fecha)
	if err != nil {
		return nil, fmt.Errorf("select daily_metrics: %w", err)
	}
	defer rows.Close()

	var filas []report.FilaDiaria
	for rows.Next() {
		var f report.FilaDiaria
		if err := rows.Scan(
			&f.Fecha, &f.Ejecutivo, &f.Canal, &f.Servicio, &f.Cartera,
			&f.TotalGestiones, &f.ContactosEfectivos, &f.GestionesPDP, &f.ClientesGestionados,
			&f.TasaContactabilidad, &f.TasaPDP,
		); err != nil {
			return nil, fmt.Errorf("scan daily_metrics: %w", err)
		}
		filas = append(filas, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterar daily_metrics: %w", err)
	}
	return filas, nil
}
