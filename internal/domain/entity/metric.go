package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cobranza-etl/internal/domain"
)

// Unidad de medida de una métrica.
type Unidad string

const (
	UnidadPorcentaje Unidad = "%"
	UnidadCantidad   Unidad = "count"
	UnidadMoneda     Unidad = "currency"
	UnidadRatio      Unidad = "ratio"
	UnidadSegundos   Unidad = "seconds"
)

// Periodo de cálculo de una métrica.
type Periodo string

const (
	PeriodoDiario  Periodo = "daily"
	PeriodoSemanal Periodo = "weekly"
	PeriodoMensual Periodo = "monthly"
)

// Metric es un valor derivado e inmutable: nunca se persiste como fila
// mutable, se recalcula bajo demanda o se materializa en el agregado
// diario. Construir siempre con NewMetric.
type Metric struct {
	Nombre       string
	Valor        decimal.Decimal
	Unidad       Unidad
	Periodo      Periodo
	FechaCalculo time.Time
	Filtros      map[string]string // contexto aplicado al cálculo (tenant, canal, ...)
}

// NewMetric construye una métrica validando sus invariantes.
func NewMetric(nombre string, valor decimal.Decimal, unidad Unidad, periodo Periodo, filtros map[string]string) (Metric, error) {
	if strings.TrimSpace(nombre) == "" {
		return Metric{}, &domain.RecordValidationError{Entidad: "Metric", Campo: "nombre", Motivo: "el nombre no puede estar vacío"}
	}
	if unidad == UnidadPorcentaje {
		if valor.IsNegative() || valor.GreaterThan(decimal.NewFromInt(100)) {
			return Metric{}, &domain.RecordValidationError{Entidad: "Metric", Campo: "valor",
				Motivo: "un porcentaje debe estar entre 0 y 100"}
		}
	}
	copia := make(map[string]string, len(filtros))
	for k, v := range filtros {
		copia[k] = v
	}
	return Metric{
		Nombre:       nombre,
		Valor:        valor,
		Unidad:       unidad,
		Periodo:      periodo,
		FechaCalculo: time.Now(),
		Filtros:      copia,
	}, nil
}

// NivelRendimiento clasifica el valor contra umbrales warning/critical.
// Valores bajo critical son CRITICO, bajo warning WARNING, el resto BUENO.
func (m Metric) NivelRendimiento(warning, critical decimal.Decimal) string {
	switch {
	case m.Valor.LessThan(critical):
		return "CRITICO"
	case m.Valor.LessThan(warning):
		return "WARNING"
	default:
		return "BUENO"
	}
}
