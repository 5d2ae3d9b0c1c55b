package entity

import (
	"fmt"
	"strings"
)

// Tipificacion es el resultado canónico de una gestión. La taxonomía de
// cada tenant traduce sus códigos propios a este vocabulario único:
//
//	alpha: "CONT_COMP"    -> COMPROMISO_PAGO
//	beta:  "PROMESA_PAGO" -> COMPROMISO_PAGO
type Tipificacion string

const (
	// Resultados exitosos.
	TipContactoEfectivo Tipificacion = "CONTACTO_EFECTIVO"
	TipCompromisoPago   Tipificacion = "COMPROMISO_PAGO"
	TipPagoInmediato    Tipificacion = "PAGO_INMEDIATO"
	TipAcuerdoPago      Tipificacion = "ACUERDO_PAGO"

	// Intentos sin alcanzar al cliente.
	TipNoContacto      Tipificacion = "NO_CONTACTO"
	TipNumeroErrado    Tipificacion = "NUMERO_ERRADO"
	TipTelefonoApagado Tipificacion = "TELEFONO_APAGADO"
	TipBuzonVoz        Tipificacion = "BUZON_VOZ"

	// Contacto sin compromiso.
	TipNoInteresado        Tipificacion = "NO_INTERESADO"
	TipSinCapacidadPago    Tipificacion = "SIN_CAPACIDAD_PAGO"
	TipSolicitaFacilidades Tipificacion = "SOLICITA_FACILIDADES"

	// Casos especiales.
	TipDisputaDeuda   Tipificacion = "DISPUTA_DEUDA"
	TipFallecido      Tipificacion = "FALLECIDO"
	TipCambioDatos    Tipificacion = "CAMBIO_DATOS"
	TipReclamoCliente Tipificacion = "RECLAMO_CLIENTE"
)

// Tipificaciones devuelve el conjunto canónico completo.
func Tipificaciones() []Tipificacion {
	return []Tipificacion{
		TipContactoEfectivo, TipCompromisoPago, TipPagoInmediato, TipAcuerdoPago,
		TipNoContacto, TipNumeroErrado, TipTelefonoApagado, TipBuzonVoz,
		TipNoInteresado, TipSinCapacidadPago, TipSolicitaFacilidades,
		TipDisputaDeuda, TipFallecido, TipCambioDatos, TipReclamoCliente,
	}
}

// ParseTipificacion interpreta el texto como una tipificación canónica.
func ParseTipificacion(s string) (Tipificacion, error) {
	candidata := Tipificacion(strings.ToUpper(strings.TrimSpace(s)))
	if !candidata.EsValida() {
		return "", fmt.Errorf("tipificación desconocida: %q", s)
	}
	return candidata, nil
}

// EsValida indica si el valor pertenece al conjunto canónico.
func (t Tipificacion) EsValida() bool {
	for _, v := range Tipificaciones() {
		if t == v {
			return true
		}
	}
	return false
}

// EsResultadoPositivo indica si el resultado avanza el proceso de cobro.
func (t Tipificacion) EsResultadoPositivo() bool {
	switch t {
	case TipContactoEfectivo, TipCompromisoPago, TipPagoInmediato,
		TipAcuerdoPago, TipSolicitaFacilidades:
		return true
	}
	return false
}

// IndicaContacto indica si el cliente fue efectivamente alcanzado.
func (t Tipificacion) IndicaContacto() bool {
	switch t {
	case TipNoContacto, TipNumeroErrado, TipTelefonoApagado, TipBuzonVoz:
		return false
	}
	return true
}

// RequiereSeguimiento indica si el resultado necesita acción posterior.
func (t Tipificacion) RequiereSeguimiento() bool {
	switch t {
	case TipCompromisoPago, TipAcuerdoPago, TipSolicitaFacilidades,
		TipCambioDatos, TipReclamoCliente:
		return true
	}
	return false
}

// EsCasoEspecial indica un resultado con tratamiento fuera del flujo normal.
func (t Tipificacion) EsCasoEspecial() bool {
	switch t {
	case TipDisputaDeuda, TipFallecido, TipReclamoCliente:
		return true
	}
	return false
}
