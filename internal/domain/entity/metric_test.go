package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
)

func TestNewMetric(t *testing.T) {
	t.Run("porcentaje válido", func(t *testing.T) {
		m, err := entity.NewMetric("tasa_contactabilidad", decimal.RequireFromString("42.5"),
			entity.UnidadPorcentaje, entity.PeriodoDiario, map[string]string{"tenant": "alpha"})
		require.NoError(t, err)
		assert.Equal(t, "tasa_contactabilidad", m.Nombre)
		assert.Equal(t, "alpha", m.Filtros["tenant"])
		assert.False(t, m.FechaCalculo.IsZero())
	})

	t.Run("porcentaje fuera de rango", func(t *testing.T) {
		_, err := entity.NewMetric("tasa", decimal.NewFromInt(101),
			entity.UnidadPorcentaje, entity.PeriodoDiario, nil)
		assert.Error(t, err, "un porcentaje mayor a 100 es inválido")

		_, err = entity.NewMetric("tasa", decimal.NewFromInt(-1),
			entity.UnidadPorcentaje, entity.PeriodoDiario, nil)
		assert.Error(t, err, "un porcentaje negativo es inválido")
	})

	t.Run("nombre vacío", func(t *testing.T) {
		_, err := entity.NewMetric("  ", decimal.NewFromInt(10),
			entity.UnidadCantidad, entity.PeriodoDiario, nil)
		assert.Error(t, err)
	})

	t.Run("los filtros se copian", func(t *testing.T) {
		filtros := map[string]string{"tenant": "alpha"}
		m, err := entity.NewMetric("total", decimal.NewFromInt(10),
			entity.UnidadCantidad, entity.PeriodoDiario, filtros)
		require.NoError(t, err)

		filtros["tenant"] = "beta"
		assert.Equal(t, "alpha", m.Filtros["tenant"], "mutar el mapa original no afecta la métrica")
	})
}

func TestMetric_NivelRendimiento(t *testing.T) {
	warning := decimal.NewFromInt(20)
	critical := decimal.NewFromInt(10)

	nivel := func(valor string) string {
		m, err := entity.NewMetric("tasa", decimal.RequireFromString(valor),
			entity.UnidadPorcentaje, entity.PeriodoDiario, nil)
		require.NoError(t, err)
		return m.NivelRendimiento(warning, critical)
	}

	assert.Equal(t, "CRITICO", nivel("5"))
	assert.Equal(t, "WARNING", nivel("15"))
	assert.Equal(t, "BUENO", nivel("25"))
	assert.Equal(t, "BUENO", nivel("20"), "el umbral warning es inclusivo hacia BUENO")
	assert.Equal(t, "WARNING", nivel("10"), "el umbral critical es inclusivo hacia WARNING")
}
