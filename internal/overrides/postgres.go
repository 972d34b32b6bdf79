package overrides

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// pool is the subset of pgxpool.Pool used by PostgresStore.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore backs the override API served by this binary. Each override
// is one jsonb document; writes merge with the jsonb || operator, which
// replaces top-level keys present in the patch and keeps the rest.
type PostgresStore struct {
	pool pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres connects to the database at url.
func NewPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: p}, nil
}

func newPostgresFromPool(p pool) *PostgresStore {
	return &PostgresStore{pool: p}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS lead_overrides (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate creates the overrides table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id string) (model.Override, bool, error) {
	all, err := s.query(ctx, `SELECT id, data FROM lead_overrides WHERE id = $1`, id)
	if err != nil {
		return model.Override{}, false, err
	}
	o, ok := all[id]
	return o, ok, nil
}

// GetAll implements Store.
func (s *PostgresStore) GetAll(ctx context.Context) (map[string]model.Override, error) {
	return s.query(ctx, `SELECT id, data FROM lead_overrides ORDER BY id`)
}

// Put implements Store.
func (s *PostgresStore) Put(ctx context.Context, id string, patch model.Override) error {
	if err := checkWrite(id, patch); err != nil {
		return err
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal override")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO lead_overrides (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET data = lead_overrides.data || EXCLUDED.data, updated_at = now()`,
		id, string(data),
	)
	return eris.Wrapf(err, "postgres: put override %s", id)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) (map[string]model.Override, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query overrides")
	}
	defer rows.Close()

	all := make(map[string]model.Override)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan override")
		}
		var o model.Override
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, eris.Wrapf(err, "postgres: decode override %s", id)
		}
		all[id] = o
	}
	return all, eris.Wrap(rows.Err(), "postgres: iterate overrides")
}
