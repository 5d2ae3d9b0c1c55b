package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cobranza-etl/internal/domain"
)

// Activity representa una gestión de cobranza: un intento de contacto
// contra un cliente. Es inmutable una vez persistida; el reproceso de un
// día la sobreescribe por su ID determinístico (tenant + fecha + secuencia),
// lo que hace idempotente la recarga.
type Activity struct {
	ID                     string // determinístico: tenant_fecha_secuencia
	Documento              string // documento del cliente gestionado (FK de negocio)
	Fecha                  time.Time
	Canal                  Canal
	Ejecutivo              string
	TipificacionOriginal   string       // código crudo del tenant
	TipificacionHomologada Tipificacion // resultado canónico
	EsContacto             bool
	EsCompromiso           bool
	MontoCompromiso        *decimal.Decimal // opcional, positivo si existe
	FechaCompromiso        *time.Time       // opcional
	Intentos               int
	DuracionSegundos       int
	Observaciones          string
	Servicio               string // desnormalizado para el datamart
	Cartera                string
}

// ActivityID construye el identificador determinístico de una gestión.
// El mismo tenant, fecha y secuencia siempre producen el mismo ID, de modo
// que reprocesar un día reemplaza las filas en lugar de duplicarlas.
func ActivityID(tenantID string, fecha time.Time, secuencia int) string {
	return fmt.Sprintf("%s_%s_%06d", tenantID, fecha.Format("2006-01-02"), secuencia)
}

// Validate verifica los invariantes de la gestión.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Documento) == "" {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "documento", Motivo: "el documento del cliente no puede estar vacío"}
	}
	if strings.TrimSpace(a.Ejecutivo) == "" {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "ejecutivo", Motivo: "el ejecutivo no puede estar vacío"}
	}
	if strings.TrimSpace(a.TipificacionOriginal) == "" {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "tipificacion_original", Motivo: "la tipificación original no puede estar vacía"}
	}
	if !a.TipificacionHomologada.EsValida() {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "tipificacion_homologada",
			Motivo: fmt.Sprintf("tipificación homologada inválida: %q", a.TipificacionHomologada)}
	}
	if a.EsCompromiso && !a.EsContacto {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "es_compromiso",
			Motivo: "no se puede registrar compromiso sin contacto"}
	}
	if a.MontoCompromiso != nil && !a.MontoCompromiso.IsPositive() {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "monto_compromiso",
			Motivo: "el monto comprometido debe ser positivo"}
	}
	if a.Intentos < 0 {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "intentos", Motivo: "los intentos no pueden ser negativos"}
	}
	if a.DuracionSegundos < 0 {
		return &domain.RecordValidationError{Entidad: "Activity", Campo: "duracion_segundos", Motivo: "la duración no puede ser negativa"}
	}
	return nil
}

// EsGestionExitosa indica contacto efectivo con compromiso de pago.
func (a *Activity) EsGestionExitosa() bool {
	return a.EsContacto && a.EsCompromiso
}

// RequiereSeguimiento indica contacto sin compromiso (follow-up).
func (a *Activity) RequiereSeguimiento() bool {
	return a.EsContacto && !a.EsCompromiso
}

// EsCanalAutomatizado indica si la gestión fue por un canal sin agente.
func (a *Activity) EsCanalAutomatizado() bool {
	return a.Canal.EsAutomatizado()
}

// EfectividadCanal clasifica la efectividad de la gestión.
func (a *Activity) EfectividadCanal() string {
	switch {
	case a.EsGestionExitosa():
		return "ALTA"
	case a.EsContacto:
		return "MEDIA"
	default:
		return "BAJA"
	}
}
