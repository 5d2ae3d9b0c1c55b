// Package homologation transforma registros crudos de la fuente de un
// tenant en entidades canónicas. Es una transformación pura y sin estado:
// la misma configuración y el mismo registro producen siempre el mismo
// resultado.
//
// Política de fallas en dos niveles:
//
//   - un campo canónico sin mapeo es un defecto de configuración y falla
//     cerrado (*domain.UnmappedFieldError, fatal para la corrida);
//   - un defecto de datos de un registro individual (código sin homologar,
//     coerción fallida, invariante violado) omite ese registro y el batch
//     continúa.
package homologation

import (
	"strings"
	"time"

	"github.com/jhoicas/cobranza-etl/internal/domain"
	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
)

// RawRecord es una fila cruda de la fuente: nombres de campo tal como los
// define el tenant. Los campos ausentes deben venir explícitos (valor nil),
// nunca omitidos en silencio.
type RawRecord map[string]any

// Engine homologa registros crudos de un tenant contra su configuración.
type Engine struct {
	cfg *tenant.Config
}

// New construye el engine para el snapshot de configuración dado.
func New(cfg *tenant.Config) *Engine {
	return &Engine{cfg: cfg}
}

// valorRequerido resuelve el mapeo del campo canónico y extrae el valor
// crudo. Mapeo ausente es fatal; valor ausente es un defecto del registro.
func (e *Engine) valorRequerido(raw RawRecord, canonico string) (any, error) {
	campo, ok := e.cfg.CampoFuente(canonico)
	if !ok {
		return nil, &domain.UnmappedFieldError{TenantID: e.cfg.TenantID, Campo: canonico}
	}
	v, presente := raw[campo]
	if !presente || v == nil {
		return nil, &domain.RecordValidationError{Campo: canonico,
			Motivo: "campo requerido sin valor en el registro"}
	}
	return v, nil
}

// valorOpcional devuelve el valor crudo de un campo canónico opcional, o
// nil si el campo no está mapeado o no viene en el registro.
func (e *Engine) valorOpcional(raw RawRecord, canonico string) any {
	campo, ok := e.cfg.CampoFuente(canonico)
	if !ok {
		return nil
	}
	return raw[campo]
}

// Cliente homologa un registro crudo en un Customer canónico.
func (e *Engine) Cliente(raw RawRecord) (*entity.Customer, error) {
	doc, err := e.texto(raw, tenant.CampoDocumento)
	if err != nil {
		return nil, err
	}
	nombre, err := e.texto(raw, tenant.CampoNombre)
	if err != nil {
		return nil, err
	}
	saldoRaw, err := e.valorRequerido(raw, tenant.CampoSaldo)
	if err != nil {
		return nil, err
	}
	saldo, err := comoDecimal(saldoRaw)
	if err != nil {
		return nil, &domain.RecordValidationError{Entidad: "Customer", Campo: tenant.CampoSaldo, Motivo: err.Error()}
	}
	moraRaw, err := e.valorRequerido(raw, tenant.CampoDiasMora)
	if err != nil {
		return nil, err
	}
	mora, err := comoEntero(moraRaw)
	if err != nil {
		return nil, &domain.RecordValidationError{Entidad: "Customer", Campo: tenant.CampoDiasMora, Motivo: err.Error()}
	}

	c := &entity.Customer{
		Documento:   doc,
		Nombre:      nombre,
		SaldoActual: saldo,
		DiasMora:    mora,
		Telefono:    e.textoOpcional(raw, tenant.CampoTelefono),
		Email:       e.textoOpcional(raw, tenant.CampoEmail),
		Servicio:    e.textoOpcional(raw, tenant.CampoServicio),
		Cartera:     e.textoOpcional(raw, tenant.CampoCartera),
		Zona:        e.textoOpcional(raw, tenant.CampoZona),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Gestion homologa un registro crudo en una Activity canónica. El ID se
// deriva de tenant, fecha de proceso y secuencia dentro del batch, de modo
// que reprocesar el mismo día sobreescribe en lugar de duplicar.
func (e *Engine) Gestion(raw RawRecord, fechaProceso time.Time, secuencia int) (*entity.Activity, error) {
	doc, err := e.texto(raw, tenant.CampoDocumento)
	if err != nil {
		return nil, err
	}
	fechaRaw, err := e.valorRequerido(raw, tenant.CampoFecha)
	if err != nil {
		return nil, err
	}
	fecha, err := comoFecha(fechaRaw)
	if err != nil {
		return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoFecha, Motivo: err.Error()}
	}
	canalTexto, err := e.texto(raw, tenant.CampoCanal)
	if err != nil {
		return nil, err
	}
	canal, err := entity.ParseCanal(canalTexto)
	if err != nil {
		return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoCanal, Motivo: err.Error()}
	}
	ejecutivo, err := e.texto(raw, tenant.CampoEjecutivo)
	if err != nil {
		return nil, err
	}
	codigo, err := e.texto(raw, tenant.CampoTipificacion)
	if err != nil {
		return nil, err
	}

	// Los códigos de la taxonomía están normalizados en mayúsculas.
	codigo = strings.ToUpper(strings.TrimSpace(codigo))
	destino, conocido := e.cfg.Taxonomia[codigo]
	if !conocido {
		return nil, &domain.UnhomologatedOutcomeError{TenantID: e.cfg.TenantID, Codigo: codigo}
	}
	if destino == tenant.Ignorar {
		return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoTipificacion,
			Motivo: "código marcado IGNORAR en la taxonomía del tenant"}
	}
	tip, err := entity.ParseTipificacion(destino)
	if err != nil {
		// La taxonomía apunta fuera del conjunto canónico: defecto de
		// configuración, no de datos.
		return nil, &domain.UnmappedFieldError{TenantID: e.cfg.TenantID, Campo: tenant.CampoTipificacion}
	}

	contactoRaw, err := e.valorRequerido(raw, tenant.CampoEsContacto)
	if err != nil {
		return nil, err
	}
	contacto, err := comoBool(contactoRaw)
	if err != nil {
		return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoEsContacto, Motivo: err.Error()}
	}
	compromisoRaw, err := e.valorRequerido(raw, tenant.CampoEsCompromiso)
	if err != nil {
		return nil, err
	}
	compromiso, err := comoBool(compromisoRaw)
	if err != nil {
		return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoEsCompromiso, Motivo: err.Error()}
	}

	a := &entity.Activity{
		ID:                     entity.ActivityID(e.cfg.TenantID, fechaProceso, secuencia),
		Documento:              doc,
		Fecha:                  fecha,
		Canal:                  canal,
		Ejecutivo:              ejecutivo,
		TipificacionOriginal:   codigo,
		TipificacionHomologada: tip,
		EsContacto:             contacto,
		EsCompromiso:           compromiso,
		Intentos:               1,
		Observaciones:          e.textoOpcional(raw, tenant.CampoObservaciones),
		Servicio:               e.textoOpcional(raw, tenant.CampoServicio),
		Cartera:                e.textoOpcional(raw, tenant.CampoCartera),
	}

	if v := e.valorOpcional(raw, tenant.CampoMontoCompromiso); v != nil {
		monto, err := comoDecimal(v)
		if err != nil {
			return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoMontoCompromiso, Motivo: err.Error()}
		}
		a.MontoCompromiso = &monto
	}
	if v := e.valorOpcional(raw, tenant.CampoFechaCompromiso); v != nil {
		fc, err := comoFecha(v)
		if err != nil {
			return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoFechaCompromiso, Motivo: err.Error()}
		}
		a.FechaCompromiso = &fc
	}
	if v := e.valorOpcional(raw, tenant.CampoIntentos); v != nil {
		n, err := comoEntero(v)
		if err != nil {
			return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoIntentos, Motivo: err.Error()}
		}
		a.Intentos = n
	}
	if v := e.valorOpcional(raw, tenant.CampoDuracion); v != nil {
		n, err := comoEntero(v)
		if err != nil {
			return nil, &domain.RecordValidationError{Entidad: "Activity", Campo: tenant.CampoDuracion, Motivo: err.Error()}
		}
		a.DuracionSegundos = n
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (e *Engine) texto(raw RawRecord, canonico string) (string, error) {
	v, err := e.valorRequerido(raw, canonico)
	if err != nil {
		return "", err
	}
	s, err := comoTexto(v)
	if err != nil {
		return "", &domain.RecordValidationError{Campo: canonico, Motivo: err.Error()}
	}
	return s, nil
}

func (e *Engine) textoOpcional(raw RawRecord, canonico string) string {
	v := e.valorOpcional(raw, canonico)
	if v == nil {
		return ""
	}
	s, err := comoTexto(v)
	if err != nil {
		return ""
	}
	return s
}
