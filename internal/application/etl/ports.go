package etl

import (
	"context"
	"time"

	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
	"github.com/jhoicas/cobranza-etl/internal/domain/homologation"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
)

// Extractor abstrae la fuente operacional de un tenant (warehouse
// analítico, base relacional o feed de archivos planos). Devuelve
// registros crudos sin homologar; el orden no está garantizado.
type Extractor interface {
	// ExtractClientes devuelve los clientes crudos del día.
	ExtractClientes(ctx context.Context, tenantID string, fecha time.Time) ([]homologation.RawRecord, error)
	// ExtractGestiones devuelve las gestiones crudas del día.
	ExtractGestiones(ctx context.Context, tenantID string, fecha time.Time) ([]homologation.RawRecord, error)
	// TestConnection verifica conectividad con la fuente del tenant.
	TestConnection(ctx context.Context, tenantID string) error
}

// DatamartWriter abstrae el destino analítico. Los upserts van llaveados
// por llave de negocio (documento para clientes, ID determinístico para
// gestiones) y son seguros de repetir: re-ejecutar tras un crash produce
// el mismo estado final, no duplicados.
type DatamartWriter interface {
	UpsertClientes(ctx context.Context, schema string, clientes []*entity.Customer) (int, error)
	UpsertGestiones(ctx context.Context, schema string, gestiones []*entity.Activity) (int, error)
	// RefreshDailyAggregates recalcula el rollup materializado del día:
	// borrado y recálculo completo de la partición, nunca un parche
	// incremental.
	RefreshDailyAggregates(ctx context.Context, schema string, fecha time.Time) error
	TestConnection(ctx context.Context) error
}

// ConfigRegistry entrega snapshots inmutables de configuración por tenant.
// Solo lectura en tiempo de corrida; la escritura ocurre por una vía
// administrativa fuera del pipeline.
type ConfigRegistry interface {
	GetConfig(tenantID string) (*tenant.Config, error)
	ListTenants() ([]string, error)
}
