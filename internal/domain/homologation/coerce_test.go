package homologation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComoBool(t *testing.T) {
	verdaderos := []any{true, 1, int64(1), "true", "SI", "sí", "s", "y", "1"}
	for _, v := range verdaderos {
		b, err := comoBool(v)
		require.NoError(t, err, "debe aceptar %v", v)
		assert.True(t, b, "%v debe interpretarse como verdadero", v)
	}

	falsos := []any{false, 0, "false", "NO", "n", "0", ""}
	for _, v := range falsos {
		b, err := comoBool(v)
		require.NoError(t, err, "debe aceptar %v", v)
		assert.False(t, b, "%v debe interpretarse como falso", v)
	}

	_, err := comoBool("quizás")
	assert.Error(t, err)
}

func TestComoDecimal(t *testing.T) {
	d, err := comoDecimal("1500.75")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(1500.75)))

	d, err = comoDecimal(int64(42))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(42)))

	d, err = comoDecimal(decimal.NewFromInt(7))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(7)), "un decimal pasa sin conversión")

	_, err = comoDecimal(nil)
	assert.Error(t, err, "nil es valor ausente, no cero")
}

func TestComoFecha(t *testing.T) {
	esperada := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	f, err := comoFecha("2026-08-29")
	require.NoError(t, err)
	assert.True(t, f.Equal(esperada))

	f, err = comoFecha("2026-08-29 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, 10, f.Hour())

	f, err = comoFecha("2026-08-29T10:30:00Z")
	require.NoError(t, err, "RFC3339 debe aceptarse")
	assert.Equal(t, 30, f.Minute())

	f, err = comoFecha(esperada)
	require.NoError(t, err)
	assert.True(t, f.Equal(esperada), "time.Time pasa sin conversión")

	_, err = comoFecha("29/08/2026")
	assert.Error(t, err, "formatos ambiguos de día/mes no se adivinan")
}

func TestComoEntero(t *testing.T) {
	n, err := comoEntero(" 45 ")
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	n, err = comoEntero(float64(45))
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	_, err = comoEntero("cuarenta")
	assert.Error(t, err)
}
