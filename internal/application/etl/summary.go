package etl

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/cobranza-etl/internal/domain"
)

// Estado de la máquina de estados de una corrida.
type Estado string

const (
	EstadoIdle                 Estado = "IDLE"
	EstadoProbandoConexiones   Estado = "TESTING_CONNECTIONS"
	EstadoExtrayendo           Estado = "EXTRACTING"
	EstadoHomologando          Estado = "HOMOLOGATING"
	EstadoCargando             Estado = "LOADING"
	EstadoRefrescandoAgregados Estado = "REFRESHING_AGGREGATES"
	EstadoDone                 Estado = "DONE"
	EstadoFailed               Estado = "FAILED"
)

// Clasificación del error terminal de una corrida fallida.
const (
	ClaseConfiguracion       = "CONFIGURATION"
	ClaseFuenteNoDisponible  = "SOURCE_UNAVAILABLE"
	ClaseDestinoNoDisponible = "DESTINATION_UNAVAILABLE"
	ClaseCancelada           = "CANCELLED"
	ClaseInterna             = "INTERNAL"
)

// Omision describe un registro individual omitido durante la homologación.
// Se conserva una muestra acotada para diagnóstico; el conteo completo va
// en GestionesOmitidas/ClientesOmitidos.
type Omision struct {
	Entidad   string `json:"entidad"` // "cliente" o "gestion"
	Secuencia int    `json:"secuencia"`
	Motivo    string `json:"motivo"`
}

// RunSummary es el resultado estructurado de una corrida para una fecha.
// Una corrida es exitosa si las conexiones y la carga completaron, aunque
// haya registros omitidos: las omisiones son una señal de calidad de
// datos, no una falla del pipeline.
type RunSummary struct {
	RunID    string    `json:"run_id"`
	TenantID string    `json:"tenant_id"`
	Fecha    time.Time `json:"fecha"`
	Estado   Estado    `json:"estado"`
	Duracion float64   `json:"duracion_segundos"`

	ClientesExtraidos    int `json:"clientes_extraidos"`
	GestionesExtraidas   int `json:"gestiones_extraidas"`
	ClientesHomologados  int `json:"clientes_homologados"`
	GestionesHomologadas int `json:"gestiones_homologadas"`
	ClientesOmitidos     int `json:"clientes_omitidos"`
	GestionesOmitidas    int `json:"gestiones_omitidas"`
	ClientesCargados     int `json:"clientes_cargados"`
	GestionesCargadas    int `json:"gestiones_cargadas"`

	MuestraOmisiones []Omision `json:"muestra_omisiones,omitempty"`

	AgregadosRefrescados bool   `json:"agregados_refrescados"`
	ErrorAgregados       string `json:"error_agregados,omitempty"`

	Error      string `json:"error,omitempty"`
	ClaseError string `json:"clase_error,omitempty"`
}

// Exitosa indica si la corrida terminó en Done.
func (s *RunSummary) Exitosa() bool { return s.Estado == EstadoDone }

// clasificar mapea el error terminal a su clase de la taxonomía.
func clasificar(err error) string {
	var cfgErr *domain.ConfigurationError
	var unmapped *domain.UnmappedFieldError
	var srcErr *domain.SourceUnavailableError
	var dstErr *domain.DestinationUnavailableError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &unmapped), errors.Is(err, domain.ErrTenantNotFound):
		return ClaseConfiguracion
	case errors.As(err, &srcErr):
		return ClaseFuenteNoDisponible
	case errors.As(err, &dstErr):
		return ClaseDestinoNoDisponible
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClaseCancelada
	default:
		return ClaseInterna
	}
}
