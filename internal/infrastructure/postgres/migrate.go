package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cobranza-etl/pkg/logger"
)

// Migrator lleva el datamart de cada tenant a la versión de schema
// vigente. Las mismas migraciones SQL corren una vez por schema destino,
// con search_path apuntando al schema del tenant y una tabla de versiones
// propia dentro de él.
type Migrator struct {
	pool          *pgxpool.Pool
	databaseURL   string
	migrationsDir string
	log           *logger.Logger
}

// NewMigrator construye el migrador del datamart.
func NewMigrator(pool *pgxpool.Pool, databaseURL, migrationsDir string, log *logger.Logger) *Migrator {
	return &Migrator{pool: pool, databaseURL: databaseURL, migrationsDir: migrationsDir, log: log}
}

// EnsureSchema crea el schema del tenant si no existe y aplica las
// migraciones pendientes dentro de él. Idempotente: sin migraciones
// nuevas no hace nada.
func (m *Migrator) EnsureSchema(ctx context.Context, schema string) error {
	createSQL := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())
	if _, err := m.pool.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("crear schema %s: %w", schema, err)
	}

	dsn, err := m.urlParaSchema(schema)
	if err != nil {
		return err
	}

	mg, err := migrate.New("file://"+m.migrationsDir, dsn)
	if err != nil {
		return fmt.Errorf("abrir migraciones: %w", err)
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Debug().Str("schema", schema).Msg("schema ya está en la versión vigente")
			return nil
		}
		return fmt.Errorf("migrar schema %s: %w", schema, err)
	}

	m.log.Info().Str("schema", schema).Msg("migraciones de datamart aplicadas")
	return nil
}

// urlParaSchema reescribe el DATABASE_URL para que el driver de
// migraciones opere dentro del schema del tenant.
func (m *Migrator) urlParaSchema(schema string) (string, error) {
	u, err := url.Parse(m.databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	u.Scheme = "pgx5"

	q := u.Query()
	q.Set("search_path", schema)
	q.Set("x-migrations-table", "schema_migrations")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
