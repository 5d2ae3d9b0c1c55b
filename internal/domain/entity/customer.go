package entity

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cobranza-etl/internal/domain"
)

// Customer representa un cliente con deuda en gestión de cobranza.
// La identidad es el documento (llave de negocio), nunca un id sustituto:
// dos registros con el mismo documento son el mismo cliente.
type Customer struct {
	Documento   string          // documento de identidad, llave de negocio
	Nombre      string
	SaldoActual decimal.Decimal // deuda vigente, nunca negativa
	DiasMora    int             // días desde el último pago, nunca negativo
	Telefono    string          // opcional
	Email       string          // opcional
	Servicio    string          // línea de servicio del tenant
	Cartera     string          // segmento de cartera (etapa de cobranza)
	Zona        string
}

// Validate verifica los invariantes de la entidad.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Documento) == "" {
		return &domain.RecordValidationError{Entidad: "Customer", Campo: "documento", Motivo: "el documento no puede estar vacío"}
	}
	if strings.TrimSpace(c.Nombre) == "" {
		return &domain.RecordValidationError{Entidad: "Customer", Campo: "nombre", Motivo: "el nombre no puede estar vacío"}
	}
	if c.SaldoActual.IsNegative() {
		return &domain.RecordValidationError{Entidad: "Customer", Campo: "saldo_actual", Motivo: "el saldo no puede ser negativo"}
	}
	if c.DiasMora < 0 {
		return &domain.RecordValidationError{Entidad: "Customer", Campo: "dias_mora", Motivo: "los días de mora no pueden ser negativos"}
	}
	return nil
}

// EstaEnMora indica si el cliente supera el umbral de días de mora.
func (c *Customer) EstaEnMora(diasMinimos int) bool {
	return c.DiasMora >= diasMinimos
}

// TieneDeudaSignificativa indica si la deuda supera el umbral del tenant.
func (c *Customer) TieneDeudaSignificativa(montoMinimo decimal.Decimal) bool {
	return c.SaldoActual.GreaterThanOrEqual(montoMinimo)
}

// EsPrioritario indica si el caso requiere atención prioritaria:
// mora crítica o deuda crítica, cualquiera de las dos basta.
func (c *Customer) EsPrioritario(diasMoraCriticos int, montoCritico decimal.Decimal) bool {
	return c.EstaEnMora(diasMoraCriticos) || c.TieneDeudaSignificativa(montoCritico)
}

// PuedeSerContactado indica si existe al menos un medio de contacto.
func (c *Customer) PuedeSerContactado() bool {
	return strings.TrimSpace(c.Telefono) != "" || strings.TrimSpace(c.Email) != ""
}
