package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
)

func clienteValido() *entity.Customer {
	return &entity.Customer{
		Documento:   "12345678",
		Nombre:      "Juan Pérez",
		SaldoActual: decimal.NewFromInt(1500),
		DiasMora:    45,
		Telefono:    "987654321",
	}
}

func TestCustomer_Validate(t *testing.T) {
	require.NoError(t, clienteValido().Validate())

	c := clienteValido()
	c.Documento = ""
	assert.Error(t, c.Validate(), "documento vacío debe rechazarse")

	c = clienteValido()
	c.Nombre = "   "
	assert.Error(t, c.Validate(), "nombre en blanco debe rechazarse")

	c = clienteValido()
	c.SaldoActual = decimal.NewFromInt(-1)
	assert.Error(t, c.Validate(), "saldo negativo debe rechazarse")

	c = clienteValido()
	c.DiasMora = -5
	assert.Error(t, c.Validate(), "días de mora negativos deben rechazarse")

	c = clienteValido()
	c.SaldoActual = decimal.Zero
	c.DiasMora = 0
	assert.NoError(t, c.Validate(), "saldo cero y mora cero son estados válidos")
}

func TestCustomer_ReglasDeNegocio(t *testing.T) {
	c := clienteValido()

	assert.True(t, c.EstaEnMora(30))
	assert.False(t, c.EstaEnMora(90))

	assert.True(t, c.TieneDeudaSignificativa(decimal.NewFromInt(1000)))
	assert.True(t, c.TieneDeudaSignificativa(decimal.NewFromInt(1500)), "el umbral es inclusivo")
	assert.False(t, c.TieneDeudaSignificativa(decimal.NewFromInt(2000)))

	// Prioritario por cualquiera de los dos criterios.
	assert.True(t, c.EsPrioritario(30, decimal.NewFromInt(100000)), "mora crítica basta")
	assert.True(t, c.EsPrioritario(365, decimal.NewFromInt(1000)), "deuda crítica basta")
	assert.False(t, c.EsPrioritario(365, decimal.NewFromInt(100000)))

	assert.True(t, c.PuedeSerContactado())
	c.Telefono = ""
	assert.False(t, c.PuedeSerContactado(), "sin teléfono ni email no hay medio de contacto")
	c.Email = "juan@example.com"
	assert.True(t, c.PuedeSerContactado())
}
