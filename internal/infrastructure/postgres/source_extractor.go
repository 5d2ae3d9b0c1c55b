package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/domain/homologation"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
)

var _ etl.Extractor = (*SourceExtractor)(nil)

// SourceExtractor lee los datos crudos de tenants con fuente relacional.
// Mantiene un pool por tenant, creado en forma perezosa con el DSN de la
// configuración; las filas salen como mapas planos con los nombres de
// columna propios del tenant, sin homologar.
type SourceExtractor struct {
	registry etl.ConfigRegistry

	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

// NewSourceExtractor construye el vendor relacional.
func NewSourceExtractor(registry etl.ConfigRegistry) *SourceExtractor {
	return &SourceExtractor{
		registry: registry,
		pools:    make(map[string]*pgxpool.Pool),
	}
}

// Close cierra todos los pools abiertos.
func (e *SourceExtractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for tenantID, pool := range e.pools {
		pool.Close()
		delete(e.pools, tenantID)
	}
}

func (e *SourceExtractor) pool(ctx context.Context, tenantID string) (*pgxpool.Pool, *tenant.Config, error) {
	cfg, err := e.registry.GetConfig(tenantID)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Fuente.Tipo != tenant.FuentePostgres {
		return nil, nil, fmt.Errorf("tenant %s no tiene fuente postgres", tenantID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if pool, ok := e.pools[tenantID]; ok {
		return pool, cfg, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Fuente.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("conectar fuente de %s: %w", tenantID, err)
	}
	e.pools[tenantID] = pool
	return pool, cfg, nil
}

// TestConnection verifica conectividad con la fuente del tenant.
func (e *SourceExtractor) TestConnection(ctx context.Context, tenantID string) error {
	pool, _, err := e.pool(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping fuente de %s: %w", tenantID, err)
	}
	return nil
}

// ExtractClientes devuelve el snapshot de clientes del día del tenant.
func (e *SourceExtractor) ExtractClientes(ctx context.Context, tenantID string, fecha time.Time) ([]homologation.RawRecord, error) {
	pool, cfg, err := e.pool(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return e.extraerTabla(ctx, pool, cfg.Fuente.TablaClientes, cfg.Fuente.ColumnaFecha, fecha)
}

// ExtractGestiones devuelve las gestiones del día del tenant.
func (e *SourceExtractor) ExtractGestiones(ctx context.Context, tenantID string, fecha time.Time) ([]homologation.RawRecord, error) {
	pool, cfg, err := e.pool(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return e.extraerTabla(ctx, pool, cfg.Fuente.TablaGestiones, cfg.Fuente.ColumnaFecha, fecha)
}

// extraerTabla materializa las filas de la tabla para la fecha como mapas
// columna -> valor. Un NULL de la fuente queda como nil explícito en el
// mapa, para que la homologación distinga ausente de vacío.
func (e *SourceExtractor) extraerTabla(
	ctx context.Context,
	pool *pgxpool.Pool,
	tablaFuente, columnaFecha string,
	fecha time.Time,
) ([]homologation.RawRecord, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s::date = $1`,
		pgx.Identifier{tablaFuente}.Sanitize(),
		pgx.Identifier{columnaFecha}.Sanitize(),
	)

	rows, err := pool.Query(ctx, query, fecha)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", tablaFuente, err)
	}
	defer rows.Close()

	columnas := make([]string, len(rows.FieldDescriptions()))
	for i, fd := range rows.FieldDescriptions() {
		columnas[i] = string(fd.Name)
	}

	var registros []homologation.RawRecord
	for rows.Next() {
		valores, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("leer fila de %s: %w", tablaFuente, err)
		}
		registro := make(homologation.RawRecord, len(columnas))
		for i, col := range columnas {
			registro[col] = valores[i]
		}
		registros = append(registros, registro)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterar %s: %w", tablaFuente, err)
	}
	return registros, nil
}
