package entity

import (
	"fmt"
	"strings"
)

// Canal de contacto con el cliente. Vocabulario estandarizado entre
// tenants; cada fuente puede nombrarlos distinto pero la homologación
// siempre produce uno de estos valores.
type Canal string

const (
	CanalCall            Canal = "CALL"
	CanalVoicebot        Canal = "VOICEBOT"
	CanalEmail           Canal = "EMAIL"
	CanalSMS             Canal = "SMS"
	CanalWhatsapp        Canal = "WHATSAPP"
	CanalVisitaDomicilio Canal = "VISITA_DOMICILIO"
	CanalCarta           Canal = "CARTA"
	CanalCallCenter      Canal = "CALL_CENTER"
)

// Canales devuelve todos los canales válidos.
func Canales() []Canal {
	return []Canal{
		CanalCall, CanalVoicebot, CanalEmail, CanalSMS,
		CanalWhatsapp, CanalVisitaDomicilio, CanalCarta, CanalCallCenter,
	}
}

// ParseCanal interpreta el texto como un canal canónico, sin distinguir
// mayúsculas ni espacios alrededor.
func ParseCanal(s string) (Canal, error) {
	candidato := Canal(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range Canales() {
		if c == candidato {
			return c, nil
		}
	}
	return "", fmt.Errorf("canal desconocido: %q", s)
}

// EsDirecto indica si el canal permite conversación en tiempo real.
func (c Canal) EsDirecto() bool {
	return c == CanalCall || c == CanalWhatsapp || c == CanalVisitaDomicilio
}

// EsDigital indica si el canal es de comunicación digital.
func (c Canal) EsDigital() bool {
	return c == CanalEmail || c == CanalSMS || c == CanalWhatsapp || c == CanalVoicebot
}

// EsAutomatizado indica si el canal opera sin agente humano.
func (c Canal) EsAutomatizado() bool {
	return c == CanalVoicebot || c == CanalSMS
}

// RequiereAgenteHumano indica si el canal necesita un agente.
func (c Canal) RequiereAgenteHumano() bool {
	return c == CanalCall || c == CanalWhatsapp || c == CanalVisitaDomicilio || c == CanalCallCenter
}
