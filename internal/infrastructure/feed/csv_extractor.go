// Package feed implementa el vendor de fuentes de archivos planos: tenants
// que entregan sus datos diarios como CSV en un directorio convenido.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/domain"
	"github.com/jhoicas/cobranza-etl/internal/domain/homologation"
)

var _ etl.Extractor = (*CSVExtractor)(nil)

// CSVExtractor lee feeds diarios con el layout
// `<dir>/<tenant>/<YYYY-MM-DD>_clientes.csv` y `<YYYY-MM-DD>_gestiones.csv`.
// La primera fila es el encabezado con los nombres de campo propios del
// tenant; las celdas vacías se entregan como nil explícito.
type CSVExtractor struct {
	dir string
}

// NewCSVExtractor construye el vendor de archivos planos sobre el
// directorio raíz de feeds.
func NewCSVExtractor(dir string) *CSVExtractor {
	return &CSVExtractor{dir: dir}
}

// TestConnection verifica que el directorio del tenant existe y es legible.
func (e *CSVExtractor) TestConnection(ctx context.Context, tenantID string) error {
	info, err := os.Stat(filepath.Join(e.dir, tenantID))
	if err != nil {
		return fmt.Errorf("directorio de feeds de %s: %w", tenantID, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("la ruta de feeds de %s no es un directorio", tenantID)
	}
	return nil
}

// ExtractClientes lee el feed de clientes del día.
func (e *CSVExtractor) ExtractClientes(ctx context.Context, tenantID string, fecha time.Time) ([]homologation.RawRecord, error) {
	return e.leerFeed(ctx, tenantID, fecha, "clientes")
}

// ExtractGestiones lee el feed de gestiones del día.
func (e *CSVExtractor) ExtractGestiones(ctx context.Context, tenantID string, fecha time.Time) ([]homologation.RawRecord, error) {
	return e.leerFeed(ctx, tenantID, fecha, "gestiones")
}

func (e *CSVExtractor) ruta(tenantID string, fecha time.Time, entidad string) string {
	nombre := fmt.Sprintf("%s_%s.csv", fecha.Format("2006-01-02"), entidad)
	return filepath.Join(e.dir, tenantID, nombre)
}

func (e *CSVExtractor) leerFeed(ctx context.Context, tenantID string, fecha time.Time, entidad string) ([]homologation.RawRecord, error) {
	path := e.ruta(tenantID, fecha, entidad)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Feed no entregado para la fecha: la fuente no está
			// disponible, no es un día sin datos.
			return nil, &domain.SourceUnavailableError{TenantID: tenantID,
				Causa: fmt.Errorf("feed %s no entregado: %s", entidad, filepath.Base(path))}
		}
		return nil, fmt.Errorf("abrir feed %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	encabezado, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado de %s: %w", path, err)
	}
	for i := range encabezado {
		encabezado[i] = strings.TrimSpace(encabezado[i])
	}

	var registros []homologation.RawRecord
	for linea := 2; ; linea++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fila, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("leer fila %d de %s: %w", linea, path, err)
		}
		registro := make(homologation.RawRecord, len(encabezado))
		for i, col := range encabezado {
			if i >= len(fila) || strings.TrimSpace(fila[i]) == "" {
				registro[col] = nil
				continue
			}
			registro[col] = fila[i]
		}
		registros = append(registros, registro)
	}
	return registros, nil
}
