package etl

import (
	"sync"
	"time"

	"github.com/jhoicas/cobranza-etl/internal/domain"
)

// statusStore conserva en memoria el último RunSummary por tenant y fecha.
// Las corridas de tenants independientes pueden ejecutar concurrentemente,
// así que el acceso va protegido.
type statusStore struct {
	mu       sync.RWMutex
	porFecha map[string]*RunSummary
}

func newStatusStore() *statusStore {
	return &statusStore{porFecha: make(map[string]*RunSummary)}
}

func claveEstado(tenantID string, fecha time.Time) string {
	return tenantID + "|" + fecha.Format("2006-01-02")
}

func (s *statusStore) guardar(summary *RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.porFecha[claveEstado(summary.TenantID, summary.Fecha)] = summary
}

func (s *statusStore) buscar(tenantID string, fecha time.Time) (*RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.porFecha[claveEstado(tenantID, fecha)]
	if !ok {
		return nil, domain.ErrNotRun
	}
	return summary, nil
}
