package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrTenantNotFound = errors.New("tenant no configurado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrNotRun         = errors.New("fecha sin procesamiento registrado")
)

// La taxonomía de errores del pipeline distingue dos niveles:
//
//   - errores fatales para la corrida (configuración incompleta,
//     fuente o destino inaccesibles), que terminan la fecha en Failed;
//   - errores a nivel de registro (código no homologable, coerción de
//     tipo, invariante de entidad), que omiten el registro y el batch
//     continúa.
//
// Un registro malformado nunca debe abortar una carga diaria completa.

// ConfigurationError indica una configuración de tenant incompleta o
// inválida. Es fatal: la corrida no debe llegar a cargar datos.
type ConfigurationError struct {
	TenantID string
	Detalles []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuración inválida para tenant %q: %s",
		e.TenantID, strings.Join(e.Detalles, "; "))
}

// SourceUnavailableError indica que la fuente del tenant no respondió
// (conectividad, auth o timeout). Fatal para la fecha, no para el rango.
type SourceUnavailableError struct {
	TenantID string
	Causa    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("fuente del tenant %q no disponible: %v", e.TenantID, e.Causa)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Causa }

// DestinationUnavailableError indica que el datamart no respondió.
// Fatal para la fecha, no para el rango.
type DestinationUnavailableError struct {
	Causa error
}

func (e *DestinationUnavailableError) Error() string {
	return fmt.Sprintf("datamart no disponible: %v", e.Causa)
}

func (e *DestinationUnavailableError) Unwrap() error { return e.Causa }

// UnmappedFieldError indica que un campo canónico requerido no tiene
// entrada en la tabla de mapeo del tenant. Es un defecto de configuración,
// no de datos: el pipeline falla cerrado.
type UnmappedFieldError struct {
	TenantID string
	Campo    string
}

func (e *UnmappedFieldError) Error() string {
	return fmt.Sprintf("campo canónico %q sin mapeo para tenant %q", e.Campo, e.TenantID)
}

// UnhomologatedOutcomeError indica un código de tipificación del tenant
// ausente en la tabla de homologación. Lleva tenant y código crudo para
// que el registro de configuración pueda remediarse; el registro se omite.
type UnhomologatedOutcomeError struct {
	TenantID string
	Codigo   string
}

func (e *UnhomologatedOutcomeError) Error() string {
	return fmt.Sprintf("tipificación %q del tenant %q sin homologar", e.Codigo, e.TenantID)
}

// RecordValidationError indica un defecto de datos de un registro
// individual (coerción de tipo o invariante de entidad). El registro se
// omite con motivo y el batch continúa.
type RecordValidationError struct {
	Entidad string
	Campo   string
	Motivo  string
}

func (e *RecordValidationError) Error() string {
	if e.Campo != "" {
		return fmt.Sprintf("%s.%s: %s", e.Entidad, e.Campo, e.Motivo)
	}
	if e.Entidad != "" {
		return fmt.Sprintf("%s: %s", e.Entidad, e.Motivo)
	}
	return e.Motivo
}

// AggregateRefreshError indica que el recálculo del agregado diario falló.
// Se reporta pero la carga se considera exitosa: los hechos son la fuente
// de verdad y el agregado puede rederivarse en la próxima corrida.
type AggregateRefreshError struct {
	Fecha string
	Causa error
}

func (e *AggregateRefreshError) Error() string {
	return fmt.Sprintf("refresco de agregados para %s falló: %v", e.Fecha, e.Causa)
}

func (e *AggregateRefreshError) Unwrap() error { return e.Causa }

// EsErrorDeRegistro indica si un error es de nivel registro (se omite el
// registro) y no fatal para la corrida.
func EsErrorDeRegistro(err error) bool {
	var unhom *UnhomologatedOutcomeError
	var rec *RecordValidationError
	return errors.As(err, &unhom) || errors.As(err, &rec)
}
