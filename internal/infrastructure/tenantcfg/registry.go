// Package tenantcfg implementa el registro de configuración por tenant
// sobre archivos YAML, uno por tenant, leídos con Viper. El pipeline solo
// lee; el alta y edición de tenants ocurre editando los archivos por la
// vía administrativa.
package tenantcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/domain"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
)

var _ etl.ConfigRegistry = (*Registry)(nil)

type entrada struct {
	cfg     *tenant.Config
	cargado time.Time
}

// Registry lee y cachea configuraciones de tenant desde un directorio de
// archivos `<tenant_id>.yaml`. El snapshot cacheado se considera
// inmutable: una corrida trabaja con la configuración vigente al inicio
// aunque el archivo cambie a mitad de camino.
type Registry struct {
	dir string
	ttl time.Duration

	mu    sync.RWMutex
	cache map[string]entrada
}

// NewRegistry construye el registro sobre el directorio de tenants.
// Con ttl cero el caché no expira (solo Invalidate recarga).
func NewRegistry(dir string, ttl time.Duration) *Registry {
	return &Registry{
		dir:   dir,
		ttl:   ttl,
		cache: make(map[string]entrada),
	}
}

// GetConfig devuelve el snapshot de configuración del tenant. Carga desde
// disco la primera vez y después sirve del caché hasta que expira el TTL.
func (r *Registry) GetConfig(tenantID string) (*tenant.Config, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	e, ok := r.cache[tenantID]
	r.mu.RUnlock()
	if ok && (r.ttl <= 0 || time.Since(e.cargado) < r.ttl) {
		return e.cfg, nil
	}

	cfg, err := r.cargar(tenantID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[tenantID] = entrada{cfg: cfg, cargado: time.Now()}
	r.mu.Unlock()
	return cfg, nil
}

// ListTenants devuelve los IDs de tenant con archivo de configuración,
// ordenados alfabéticamente.
func (r *Registry) ListTenants() ([]string, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("leer directorio de tenants: %w", err)
	}

	var tenants []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		ext := filepath.Ext(de.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		tenants = append(tenants, strings.TrimSuffix(de.Name(), ext))
	}
	sort.Strings(tenants)
	return tenants, nil
}

// Invalidate descarta el snapshot cacheado del tenant. La próxima
// corrida relee el archivo.
func (r *Registry) Invalidate(tenantID string) {
	r.mu.Lock()
	delete(r.cache, tenantID)
	r.mu.Unlock()
}

func (r *Registry) archivo(tenantID string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(r.dir, tenantID+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", domain.ErrTenantNotFound
}

func (r *Registry) cargar(tenantID string) (*tenant.Config, error) {
	path, err := r.archivo(tenantID)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer configuración de %s: %w", tenantID, err)
	}

	cfg := &tenant.Config{
		TenantID:  v.GetString("tenant_id"),
		Nombre:    v.GetString("nombre"),
		Schema:    v.GetString("schema"),
		Mapeos:    v.GetStringMapString("mapeos"),
		Taxonomia: normalizarTaxonomia(v.GetStringMapString("taxonomia")),
		Fuente: tenant.Fuente{
			Tipo:           tenant.TipoFuente(v.GetString("fuente.tipo")),
			DSN:            v.GetString("fuente.dsn"),
			TablaClientes:  v.GetString("fuente.tabla_clientes"),
			TablaGestiones: v.GetString("fuente.tabla_gestiones"),
			ColumnaFecha:   v.GetString("fuente.columna_fecha"),
		},
	}
	if cfg.TenantID == "" {
		cfg.TenantID = tenantID
	}

	if cfg.Umbrales.DeudaSignificativa, err = leerDecimal(v, "umbrales.deuda_significativa"); err != nil {
		return nil, fmt.Errorf("configuración de %s: %w", tenantID, err)
	}
	if cfg.Umbrales.MontoCritico, err = leerDecimal(v, "umbrales.monto_critico"); err != nil {
		return nil, fmt.Errorf("configuración de %s: %w", tenantID, err)
	}
	cfg.Umbrales.DiasMoraCriticos = v.GetInt("umbrales.dias_mora_criticos")

	return cfg, nil
}

// normalizarTaxonomia pone los códigos del tenant en mayúsculas para que
// la búsqueda en homologación no dependa de la capitalización del archivo.
func normalizarTaxonomia(cruda map[string]string) map[string]string {
	tax := make(map[string]string, len(cruda))
	for codigo, destino := range cruda {
		tax[strings.ToUpper(strings.TrimSpace(codigo))] = strings.ToUpper(strings.TrimSpace(destino))
	}
	return tax
}

// leerDecimal lee un umbral monetario como decimal exacto. Los montos no
// pasan por float64.
func leerDecimal(v *viper.Viper, clave string) (decimal.Decimal, error) {
	s := strings.TrimSpace(v.GetString(clave))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("umbral %s inválido: %w", clave, err)
	}
	return d, nil
}
