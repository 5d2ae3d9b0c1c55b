// Package tenant define la configuración por tenant que gobierna la
// homologación: mapeo de campos, tabla de taxonomía y umbrales de negocio.
// Una corrida usa siempre un snapshot inmutable de esta configuración.
package tenant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
)

// Nombres canónicos de campo. La tabla de mapeo del tenant traduce cada
// uno de estos al nombre que usa su fuente.
const (
	CampoDocumento  = "documento"
	CampoNombre     = "nombre"
	CampoSaldo      = "saldo_actual"
	CampoDiasMora   = "dias_mora"
	CampoTelefono   = "telefono"
	CampoEmail      = "email"
	CampoServicio   = "servicio"
	CampoCartera    = "cartera"
	CampoZona       = "zona"

	CampoFecha           = "fecha"
	CampoCanal           = "canal"
	CampoEjecutivo       = "ejecutivo"
	CampoTipificacion    = "tipificacion"
	CampoEsContacto      = "es_contacto"
	CampoEsCompromiso    = "es_compromiso"
	CampoMontoCompromiso = "monto_compromiso"
	CampoFechaCompromiso = "fecha_compromiso"
	CampoIntentos        = "intentos"
	CampoDuracion        = "duracion_segundos"
	CampoObservaciones   = "observaciones"
)

// Ignorar marca explícitamente un código de tipificación del tenant que
// no participa del modelo canónico: el registro se omite con motivo en
// lugar de fallar la homologación.
const Ignorar = "IGNORAR"

// CamposClienteRequeridos devuelve los campos canónicos sin los cuales no
// puede construirse un Customer.
func CamposClienteRequeridos() []string {
	return []string{CampoDocumento, CampoNombre, CampoSaldo, CampoDiasMora}
}

// CamposGestionRequeridos devuelve los campos canónicos sin los cuales no
// puede construirse una Activity.
func CamposGestionRequeridos() []string {
	return []string{CampoDocumento, CampoFecha, CampoCanal, CampoEjecutivo,
		CampoTipificacion, CampoEsContacto, CampoEsCompromiso}
}

// TipoFuente identifica el vendor de la fuente del tenant.
type TipoFuente string

const (
	FuentePostgres TipoFuente = "postgres"
	FuenteCSV      TipoFuente = "csv"
)

// Fuente describe dónde viven los datos crudos del tenant.
type Fuente struct {
	Tipo           TipoFuente
	DSN            string // connection string de la fuente (fuentes relacionales)
	TablaClientes  string // tabla o archivo base de clientes
	TablaGestiones string // tabla o archivo base de gestiones
	ColumnaFecha   string // columna de partición por fecha (fuentes relacionales)
}

// Umbrales de negocio del tenant. Son datos de configuración consumidos
// por las reglas de entidad y por reporting; nunca deciden si un registro
// se carga o se omite.
type Umbrales struct {
	DeudaSignificativa decimal.Decimal
	DiasMoraCriticos   int
	MontoCritico       decimal.Decimal
}

// Config es el snapshot de configuración de un tenant para una corrida.
type Config struct {
	TenantID string
	Nombre   string
	// Mapeos: campo canónico -> nombre del campo en la fuente del tenant.
	Mapeos map[string]string
	// Taxonomia: código de tipificación del tenant -> valor canónico
	// (o Ignorar).
	Taxonomia map[string]string
	Umbrales  Umbrales
	Schema    string // schema destino en el datamart
	Fuente    Fuente
}

// CampoFuente devuelve el nombre del campo en la fuente del tenant para
// un campo canónico.
func (c *Config) CampoFuente(canonico string) (string, bool) {
	campo, ok := c.Mapeos[canonico]
	return campo, ok && strings.TrimSpace(campo) != ""
}

// Validate verifica la configuración completa del tenant y devuelve la
// lista de defectos encontrados (vacía si la configuración es usable).
//
// Reglas:
//   - todo campo canónico requerido tiene mapeo;
//   - los umbrales son no negativos;
//   - el rango de la taxonomía es exactamente el conjunto canónico:
//     cada código del tenant mapea a una tipificación válida (o Ignorar) y
//     cada tipificación canónica es alcanzada por al menos un código.
func (c *Config) Validate() []error {
	var errs []error

	if strings.TrimSpace(c.TenantID) == "" {
		errs = append(errs, fmt.Errorf("tenant_id vacío"))
	}
	if strings.TrimSpace(c.Schema) == "" {
		errs = append(errs, fmt.Errorf("schema destino vacío"))
	}

	requeridos := append(CamposClienteRequeridos(), CamposGestionRequeridos()...)
	vistos := map[string]bool{}
	for _, campo := range requeridos {
		if vistos[campo] {
			continue
		}
		vistos[campo] = true
		if _, ok := c.CampoFuente(campo); !ok {
			errs = append(errs, fmt.Errorf("campo canónico %q sin mapeo", campo))
		}
	}

	if c.Umbrales.DeudaSignificativa.IsNegative() {
		errs = append(errs, fmt.Errorf("umbral deuda_significativa negativo"))
	}
	if c.Umbrales.DiasMoraCriticos < 0 {
		errs = append(errs, fmt.Errorf("umbral dias_mora_criticos negativo"))
	}
	if c.Umbrales.MontoCritico.IsNegative() {
		errs = append(errs, fmt.Errorf("umbral monto_critico negativo"))
	}

	alcanzadas := map[entity.Tipificacion]bool{}
	for codigo, destino := range c.Taxonomia {
		if destino == Ignorar {
			continue
		}
		tip, err := entity.ParseTipificacion(destino)
		if err != nil {
			errs = append(errs, fmt.Errorf("código %q mapea a tipificación desconocida %q", codigo, destino))
			continue
		}
		alcanzadas[tip] = true
	}
	for _, tip := range entity.Tipificaciones() {
		if !alcanzadas[tip] {
			errs = append(errs, fmt.Errorf("tipificación canónica %q sin código del tenant que la alcance", tip))
		}
	}

	switch c.Fuente.Tipo {
	case FuentePostgres:
		if strings.TrimSpace(c.Fuente.DSN) == "" {
			errs = append(errs, fmt.Errorf("fuente postgres sin DSN"))
		}
		if strings.TrimSpace(c.Fuente.TablaClientes) == "" || strings.TrimSpace(c.Fuente.TablaGestiones) == "" {
			errs = append(errs, fmt.Errorf("fuente postgres sin tablas de clientes o gestiones"))
		}
		if strings.TrimSpace(c.Fuente.ColumnaFecha) == "" {
			errs = append(errs, fmt.Errorf("fuente postgres sin columna de fecha"))
		}
	case FuenteCSV:
	default:
		errs = append(errs, fmt.Errorf("tipo de fuente desconocido: %q", c.Fuente.Tipo))
	}

	return errs
}
