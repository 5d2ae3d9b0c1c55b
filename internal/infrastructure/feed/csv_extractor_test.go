package feed_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cobranza-etl/internal/domain"
	"github.com/jhoicas/cobranza-etl/internal/infrastructure/feed"
)

var fecha = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

func escribirFeed(t *testing.T, dir, tenantID, nombre, contenido string) {
	t.Helper()
	carpeta := filepath.Join(dir, tenantID)
	require.NoError(t, os.MkdirAll(carpeta, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(carpeta, nombre), []byte(contenido), 0o644))
}

func TestExtractClientes_LeeElFeedDelDia(t *testing.T) {
	dir := t.TempDir()
	escribirFeed(t, dir, "alpha", "2026-08-29_clientes.csv",
		"dni, nombre_cliente ,deuda,dias_atraso\n"+
			"111,Juan Perez,1500.00,45\n"+
			"222,Maria Lopez,, 10\n")

	ext := feed.NewCSVExtractor(dir)
	registros, err := ext.ExtractClientes(context.Background(), "alpha", fecha)
	require.NoError(t, err)
	require.Len(t, registros, 2)

	// El encabezado se recorta; las columnas llevan el nombre del tenant.
	assert.Equal(t, "Juan Perez", registros[0]["nombre_cliente"])
	assert.Equal(t, "1500.00", registros[0]["deuda"])

	// Celda vacía explícitamente nil, no cadena vacía.
	assert.Nil(t, registros[1]["deuda"])
	assert.Equal(t, "10", registros[1]["dias_atraso"])
}

func TestExtractGestiones_FeedNoEntregado(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alpha"), 0o755))

	ext := feed.NewCSVExtractor(dir)
	_, err := ext.ExtractGestiones(context.Background(), "alpha", fecha)

	var srcErr *domain.SourceUnavailableError
	require.ErrorAs(t, err, &srcErr, "un feed faltante es fuente no disponible")
	assert.Equal(t, "alpha", srcErr.TenantID)
	assert.Contains(t, err.Error(), "2026-08-29_gestiones.csv")
}

func TestExtractClientes_FeedVacio(t *testing.T) {
	dir := t.TempDir()
	escribirFeed(t, dir, "alpha", "2026-08-29_clientes.csv", "dni,nombre_cliente\n")

	ext := feed.NewCSVExtractor(dir)
	registros, err := ext.ExtractClientes(context.Background(), "alpha", fecha)
	require.NoError(t, err)
	assert.Empty(t, registros, "solo encabezado significa día sin registros")
}

func TestExtractClientes_Cancelacion(t *testing.T) {
	dir := t.TempDir()
	escribirFeed(t, dir, "alpha", "2026-08-29_clientes.csv",
		"dni\n111\n222\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ext := feed.NewCSVExtractor(dir)
	_, err := ext.ExtractClientes(ctx, "alpha", fecha)
	assert.True(t, errors.Is(err, context.Canceled), "la lectura honra la cancelación por fila")
}

func TestTestConnection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alpha"), 0o755))

	ext := feed.NewCSVExtractor(dir)
	assert.NoError(t, ext.TestConnection(context.Background(), "alpha"))
	assert.Error(t, ext.TestConnection(context.Background(), "beta"),
		"sin directorio del tenant la fuente no está disponible")
}
