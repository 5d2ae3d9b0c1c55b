// Package pdf implementa el informe diario de gestión de cobranza en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tenant + Fecha del informe                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Gestiones / Contactos / PDP / Clientes             │
//	│  MÉTRICAS: tasa contactabilidad y tasa PDP con su nivel      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ejecutivo | Canal | Cartera | Gest | Cont | PDP | %  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cobranza-etl/internal/application/report"
	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 40, Blue: 40}
)

// Umbrales de semáforo para las tasas del resumen.
var (
	nivelWarning  = decimal.NewFromInt(20)
	nivelCritical = decimal.NewFromInt(10)
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.Renderer = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa report.Renderer usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// RenderDaily genera el PDF del informe diario y devuelve sus bytes.
func (g *MarotoReportGenerator) RenderDaily(informe *report.InformeDiario) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Informe Diario de Gestión", true).
		WithAuthor(informe.Nombre, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(informe))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(resumenRow(informe))
	m.AddRows(metricasRows(informe)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(informe.Filas) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del tenant (izq) y fecha del informe (der).
func headerRow(informe *report.InformeDiario) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(informe.Nombre, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tenant: "+informe.TenantID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INFORME DIARIO DE GESTIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(informe.Fecha.Format("02/01/2006"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
		),
	)
}

// resumenRow: totales del día en cuatro bloques.
func resumenRow(informe *report.InformeDiario) core.Row {
	bloque := func(valor int, etiqueta string) core.Col {
		return col.New(3).Add(
			text.New(fmt.Sprintf("%d", valor), props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Center, Top: 2,
				Color: colorPrimary,
			}),
			text.New(etiqueta, props.Text{
				Size: 7, Align: align.Center, Top: 10, Color: colorGray,
			}),
		)
	}
	return row.New(16).Add(
		bloque(informe.TotalGestiones, "GESTIONES"),
		bloque(informe.ContactosEfectivos, "CONTACTOS EFECTIVOS"),
		bloque(informe.GestionesPDP, "PROMESAS DE PAGO"),
		bloque(informe.ClientesGestionados, "CLIENTES GESTIONADOS"),
	)
}

// metricasRows: una fila por métrica derivada con su nivel de rendimiento.
func metricasRows(informe *report.InformeDiario) []core.Row {
	rows := make([]core.Row, 0, len(informe.Metricas))
	for _, m := range informe.Metricas {
		if m.Unidad != entity.UnidadPorcentaje {
			continue
		}
		nivel := m.NivelRendimiento(nivelWarning, nivelCritical)
		nivelColor := colorGray
		if nivel != "BUENO" {
			nivelColor = colorAlert
		}
		rows = append(rows, row.New(7).Add(
			col.New(5).Add(text.New(m.Nombre, props.Text{
				Size: 9, Top: 1, Color: colorGray,
			})),
			col.New(3).Add(text.New(m.Valor.StringFixed(2)+" %", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 1, Align: align.Right,
			})),
			col.New(4).Add(text.New(nivel, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 1, Align: align.Right,
				Color: nivelColor,
			})),
		))
	}
	return rows
}

// tableHeaderRow: cabecera del detalle por ejecutivo y canal.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ejecutivo", 3, align.Left),
		h("Canal", 2, align.Left),
		h("Cartera", 2, align.Left),
		h("Gest.", 1, align.Right),
		h("Cont.", 1, align.Right),
		h("PDP", 1, align.Right),
		h("% Cont.", 1, align.Right),
		h("% PDP", 1, align.Right),
	)
}

// tableDetailRows: una fila por combinación ejecutivo/canal/cartera.
func tableDetailRows(filas []report.FilaDiaria) []core.Row {
	celda := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	result := make([]core.Row, 0, len(filas))
	for _, f := range filas {
		result = append(result, row.New(7).Add(
			celda(f.Ejecutivo, 3, align.Left),
			celda(f.Canal, 2, align.Left),
			celda(f.Cartera, 2, align.Left),
			celda(fmt.Sprintf("%d", f.TotalGestiones), 1, align.Right),
			celda(fmt.Sprintf("%d", f.ContactosEfectivos), 1, align.Right),
			celda(fmt.Sprintf("%d", f.GestionesPDP), 1, align.Right),
			celda(f.TasaContactabilidad.StringFixed(1), 1, align.Right),
			celda(f.TasaPDP.StringFixed(1), 1, align.Right),
		))
	}
	return result
}
