package overrides

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leads-cli/internal/model"
)

// Namespace is the fixed key the local override blob is stored under.
const Namespace = "leads.overrides"

// LocalStore keeps the whole override mapping as one JSON blob in a SQLite
// key/value table. The blob is read and written wholesale; a mutex serialises
// read-merge-write so concurrent writes to one id merge in sequence.
type LocalStore struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Store = (*LocalStore)(nil)

// NewLocal opens a SQLite database at dsn and configures WAL mode.
func NewLocal(dsn string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "local: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "local: exec %s", pragma)
		}
	}
	return &LocalStore{db: db}, nil
}

const localMigration = `
CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Migrate creates the key/value table.
func (s *LocalStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, localMigration)
	return eris.Wrap(err, "local: migrate")
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *LocalStore) Get(ctx context.Context, id string) (model.Override, bool, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return model.Override{}, false, err
	}
	o, ok := all[id]
	return o, ok, nil
}

// GetAll implements Store.
func (s *LocalStore) GetAll(ctx context.Context) (map[string]model.Override, error) {
	return s.load(ctx, s.db)
}

// Put implements Store.
func (s *LocalStore) Put(ctx context.Context, id string, patch model.Override) error {
	if err := checkWrite(id, patch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "local: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	all, err := s.load(ctx, tx)
	if err != nil {
		return err
	}
	all[id] = all[id].Merge(patch)

	blob, err := json.Marshal(all)
	if err != nil {
		return eris.Wrap(err, "local: marshal overrides")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv (namespace, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Namespace, string(blob), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "local: write override %s", id)
	}
	return eris.Wrap(tx.Commit(), "local: commit")
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *LocalStore) load(ctx context.Context, q queryRower) (map[string]model.Override, error) {
	var blob string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE namespace = ?`, Namespace).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return make(map[string]model.Override), nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "local: read overrides")
	}
	all := make(map[string]model.Override)
	if err := json.Unmarshal([]byte(blob), &all); err != nil {
		return nil, eris.Wrap(err, "local: decode overrides")
	}
	return all, nil
}
