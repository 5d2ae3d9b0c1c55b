package report_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cobranza-etl/internal/application/report"
	"github.com/jhoicas/cobranza-etl/internal/domain"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
	"github.com/jhoicas/cobranza-etl/pkg/logger"
)

var fecha = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

type fakeRegistry struct{}

func (fakeRegistry) GetConfig(tenantID string) (*tenant.Config, error) {
	if tenantID != "alpha" {
		return nil, domain.ErrTenantNotFound
	}
	return &tenant.Config{TenantID: "alpha", Nombre: "Alpha Telecom", Schema: "alpha"}, nil
}

func (fakeRegistry) ListTenants() ([]string, error) { return []string{"alpha"}, nil }

type fakeReader struct {
	filas []report.FilaDiaria
	err   error
}

func (r *fakeReader) DailyMetrics(ctx context.Context, schema string, f time.Time) ([]report.FilaDiaria, error) {
	return r.filas, r.err
}

type fakeRenderer struct {
	recibido *report.InformeDiario
}

func (r *fakeRenderer) RenderDaily(informe *report.InformeDiario) ([]byte, error) {
	r.recibido = informe
	return []byte("%PDF-1.7"), nil
}

func filasDePrueba() []report.FilaDiaria {
	return []report.FilaDiaria{
		{
			Fecha: fecha, Ejecutivo: "jperez", Canal: "CALL",
			TotalGestiones: 6, ContactosEfectivos: 3, GestionesPDP: 2, ClientesGestionados: 5,
		},
		{
			Fecha: fecha, Ejecutivo: "mgarcia", Canal: "WHATSAPP",
			TotalGestiones: 4, ContactosEfectivos: 1, GestionesPDP: 0, ClientesGestionados: 4,
		},
	}
}

func metrica(t *testing.T, informe *report.InformeDiario, nombre string) decimal.Decimal {
	t.Helper()
	for _, m := range informe.Metricas {
		if m.Nombre == nombre {
			return m.Valor
		}
	}
	t.Fatalf("métrica %q ausente del informe", nombre)
	return decimal.Zero
}

func TestBuildDaily_TotalesYMetricasDerivadas(t *testing.T) {
	reader := &fakeReader{filas: filasDePrueba()}
	svc := report.NewService(fakeRegistry{}, reader, &fakeRenderer{}, logger.Nop())

	informe, err := svc.BuildDaily(context.Background(), "alpha", fecha)
	require.NoError(t, err)

	assert.Equal(t, "Alpha Telecom", informe.Nombre)
	assert.Equal(t, 10, informe.TotalGestiones)
	assert.Equal(t, 4, informe.ContactosEfectivos)
	assert.Equal(t, 2, informe.GestionesPDP)
	assert.Equal(t, 9, informe.ClientesGestionados)
	assert.Len(t, informe.Filas, 2)

	// 4 contactos de 10 gestiones y 2 PDP de 4 contactos.
	assert.True(t, metrica(t, informe, "tasa_contactabilidad").Equal(decimal.RequireFromString("40")),
		"tasa_contactabilidad: %s", metrica(t, informe, "tasa_contactabilidad"))
	assert.True(t, metrica(t, informe, "tasa_pdp").Equal(decimal.RequireFromString("50")),
		"tasa_pdp: %s", metrica(t, informe, "tasa_pdp"))
	assert.True(t, metrica(t, informe, "total_gestiones").Equal(decimal.NewFromInt(10)))
}

func TestBuildDaily_DiaSinGestiones(t *testing.T) {
	svc := report.NewService(fakeRegistry{}, &fakeReader{}, &fakeRenderer{}, logger.Nop())

	informe, err := svc.BuildDaily(context.Background(), "alpha", fecha)
	require.NoError(t, err)

	// Sin divisiones por cero: las tasas de un día vacío son cero.
	assert.Zero(t, informe.TotalGestiones)
	assert.True(t, metrica(t, informe, "tasa_contactabilidad").IsZero())
	assert.True(t, metrica(t, informe, "tasa_pdp").IsZero())
}

func TestBuildDaily_MetricaInvalidaSeExcluyeSinAbortar(t *testing.T) {
	// Un rollup corrupto puede reportar más PDP que contactos; la tasa
	// resultante supera 100 y no es una métrica válida. El informe se
	// construye igual con las métricas restantes.
	reader := &fakeReader{filas: []report.FilaDiaria{
		{
			Fecha: fecha, Ejecutivo: "jperez", Canal: "CALL",
			TotalGestiones: 10, ContactosEfectivos: 2, GestionesPDP: 8,
		},
	}}
	svc := report.NewService(fakeRegistry{}, reader, &fakeRenderer{}, logger.Nop())

	informe, err := svc.BuildDaily(context.Background(), "alpha", fecha)
	require.NoError(t, err)

	nombres := make([]string, 0, len(informe.Metricas))
	for _, m := range informe.Metricas {
		nombres = append(nombres, m.Nombre)
	}
	assert.NotContains(t, nombres, "tasa_pdp", "una tasa fuera de rango no entra al informe")
	assert.Contains(t, nombres, "tasa_contactabilidad")
	assert.Contains(t, nombres, "total_gestiones")
}

func TestBuildDaily_TenantDesconocido(t *testing.T) {
	svc := report.NewService(fakeRegistry{}, &fakeReader{}, &fakeRenderer{}, logger.Nop())

	_, err := svc.BuildDaily(context.Background(), "fantasma", fecha)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestBuildDaily_ErrorDelDatamart(t *testing.T) {
	reader := &fakeReader{err: fmt.Errorf("connection reset")}
	svc := report.NewService(fakeRegistry{}, reader, &fakeRenderer{}, logger.Nop())

	_, err := svc.BuildDaily(context.Background(), "alpha", fecha)
	assert.ErrorContains(t, err, "connection reset")
}

func TestRenderDaily_PasaElInformeAlRenderer(t *testing.T) {
	renderer := &fakeRenderer{}
	svc := report.NewService(fakeRegistry{}, &fakeReader{filas: filasDePrueba()}, renderer, logger.Nop())

	pdf, err := svc.RenderDaily(context.Background(), "alpha", fecha)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	require.NotNil(t, renderer.recibido)
	assert.Equal(t, 10, renderer.recibido.TotalGestiones)
}
