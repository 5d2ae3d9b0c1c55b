package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
)

var _ etl.DatamartWriter = (*DatamartWriter)(nil)

// DatamartWriter carga clientes y gestiones homologadas en el datamart.
// Cada tenant escribe en su propio schema; todas las escrituras son
// idempotentes (upsert por clave natural, agregados por borrar y recalcular).
type DatamartWriter struct {
	pool *pgxpool.Pool
}

// NewDatamartWriter construye el adaptador de carga sobre el pool del datamart.
func NewDatamartWriter(pool *pgxpool.Pool) *DatamartWriter {
	return &DatamartWriter{pool: pool}
}

// TestConnection verifica que el datamart responde.
func (w *DatamartWriter) TestConnection(ctx context.Context) error {
	if err := w.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping datamart: %w", err)
	}
	return nil
}

// tabla devuelve el identificador schema-qualified ya saneado.
func tabla(schema, nombre string) string {
	return pgx.Identifier{schema, nombre}.Sanitize()
}

// UpsertClientes inserta o actualiza la dimensión de clientes por documento.
// Re-ejecutar la misma carga deja la tabla en el mismo estado.
func (w *DatamartWriter) UpsertClientes(ctx context.Context, schema string, clientes []*entity.Customer) (int, error) {
	if len(clientes) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s
		(documento, nombre, saldo_actual, dias_mora, telefono, email, servicio, cartera, zona, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (documento)
		DO UPDATE SET
			nombre = EXCLUDED.nombre,
			saldo_actual = EXCLUDED.saldo_actual,
			dias_mora = EXCLUDED.dias_mora,
			telefono = EXCLUDED.telefono,
			email = EXCLUDED.email,
			servicio = EXCLUDED.servicio,
			cartera = EXCLUDED.cartera,
			zona = EXCLUDED.zona,
			updated_at = EXCLUDED.updated_at`, tabla(schema, "dim_clientes"))

	ahora := time.Now()
	batch := &pgx.Batch{}
	for _, c := range clientes {
		batch.Queue(query,
			c.Documento, c.Nombre, c.SaldoActual, c.DiasMora,
			c.Telefono, c.Email, c.Servicio, c.Cartera, c.Zona, ahora,
		)
	}

	if err := w.enviarBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("upsert clientes: %w", err)
	}
	return len(clientes), nil
}

// UpsertGestiones inserta o actualiza la tabla de hechos por gestion_id.
// El ID determinístico hace que la re-corrida de una fecha reemplace sus
// propias filas en vez de duplicarlas.
func (w *DatamartWriter) UpsertGestiones(ctx context.Context, schema string, gestiones []*entity.Activity) (int, error) {
	if len(gestiones) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s
		(gestion_id, documento, fecha_gestion, canal, ejecutivo,
		 tipificacion_original, tipificacion_homologada, es_contacto, es_compromiso,
		 monto_compromiso, fecha_compromiso, intentos, duracion_segundos,
		 observaciones, servicio, cartera, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (gestion_id)
		DO UPDATE SET
			documento = EXCLUDED.documento,
			canal = EXCLUDED.canal,
			ejecutivo = EXCLUDED.ejecutivo,
			tipificacion_original = EXCLUDED.tipificacion_original,
			tipificacion_homologada = EXCLUDED.tipificacion_homologada,
			es_contacto = EXCLUDED.es_contacto,
			es_compromiso = EXCLUDED.es_compromiso,
			monto_compromiso = EXCLUDED.monto_compromiso,
			fecha_compromiso = EXCLUDED.fecha_compromiso,
			intentos = EXCLUDED.intentos,
			duracion_segundos = EXCLUDED.duracion_segundos,
			observaciones = EXCLUDED.observaciones,
			servicio = EXCLUDED.servicio,
			cartera = EXCLUDED.cartera,
			updated_at = EXCLUDED.updated_at`, tabla(schema, "fact_gestiones"))

	ahora := time.Now()
	batch := &pgx.Batch{}
	for _, g := range gestiones {
		batch.Queue(query,
			g.ID, g.Documento, g.Fecha, string(g.Canal), g.Ejecutivo,
			g.TipificacionOriginal, string(g.TipificacionHomologada), g.EsContacto, g.EsCompromiso,
			g.MontoCompromiso, g.FechaCompromiso, g.Intentos, g.DuracionSegundos,
			g.Observaciones, g.Servicio, g.Cartera, ahora,
		)
	}

	if err := w.enviarBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("upsert gestiones: %w", err)
	}
	return len(gestiones), nil
}

// RefreshDailyAggregates recalcula las métricas diarias de la fecha
// borrando las filas existentes y rederivándolas de fact_gestiones dentro
// de una transacción. El rollup completo desde los hechos garantiza que
// re-correr una fecha converge al mismo agregado.
func (w *DatamartWriter) RefreshDailyAggregates(ctx context.Context, schema string, fecha time.Time) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin refresh: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteSQL := fmt.Sprintf(`DELETE FROM %s WHERE fecha = $1`, tabla(schema, "daily_metrics"))
	if _, err := tx.Exec(ctx, deleteSQL, fecha); err != nil {
		return fmt.Errorf("delete daily_metrics: %w", err)
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO %s
		(fecha, ejecutivo, canal, servicio, cartera,
		 total_gestiones, contactos_efectivos, gestiones_pdp, clientes_gestionados,
		 tasa_contactabilidad, tasa_pdp)
		SELECT
			fecha_gestion AS fecha,
			ejecutivo,
			canal,
			servicio,
			cartera,
			COUNT(*) AS total_gestiones,
			COUNT(*) FILTER (WHERE es_contacto) AS contactos_efectivos,
			COUNT(*) FILTER (WHERE es_compromiso) AS gestiones_pdp,
			COUNT(DISTINCT documento) AS clientes_gestionados,
			ROUND(COUNT(*) FILTER (WHERE es_contacto) * 100.0 / COUNT(*), 2) AS tasa_contactabilidad,
			ROUND(
				COUNT(*) FILTER (WHERE es_compromiso) * 100.0 /
				NULLIF(COUNT(*) FILTER (WHERE es_contacto), 0),
				2
			) AS tasa_pdp
		FROM %s
		WHERE fecha_gestion = $1
		GROUP BY fecha_gestion, ejecutivo, canal, servicio, cartera`,
		tabla(schema, "daily_metrics"), tabla(schema, "fact_gestiones"))

	if _, err := tx.Exec(ctx, insertSQL, fecha); err != nil {
		return fmt.Errorf("insert daily_metrics: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit refresh: %w", err)
	}
	return nil
}

// enviarBatch ejecuta el batch dentro de una transacción: o entra la carga
// completa o no entra nada.
func (w *DatamartWriter) enviarBatch(ctx context.Context, batch *pgx.Batch) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
