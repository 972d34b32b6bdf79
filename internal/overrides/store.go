// Package overrides persists user-entered lead fields keyed by institution id.
//
// Several backends implement Store; FallbackStore composes a remote primary
// with a local secondary so callers never branch on backend availability.
package overrides

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// ErrEmptyID is returned when a write has no institution id.
var ErrEmptyID = eris.New("overrides: empty institution id")

// Store reads and writes overrides. Put applies patch as a shallow merge over
// any existing override for id: present fields replace, absent fields keep
// their stored value. An override is created by its first Put.
type Store interface {
	Get(ctx context.Context, id string) (model.Override, bool, error)
	GetAll(ctx context.Context) (map[string]model.Override, error)
	Put(ctx context.Context, id string, patch model.Override) error
}

// checkWrite validates a write before it reaches any backend.
func checkWrite(id string, patch model.Override) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	return patch.Validate()
}
