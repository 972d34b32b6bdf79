package overrides

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/metrics"
	"github.com/sells-group/leads-cli/internal/model"
)

// FallbackStore tries primary first and falls back to secondary on any
// error. The two stores are not synchronised: a write that lands only on
// secondary is never replayed to primary.
type FallbackStore struct {
	primary   Store
	secondary Store
}

var _ Store = (*FallbackStore)(nil)

// NewFallbackStore composes primary and secondary.
func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

// Get implements Store.
func (s *FallbackStore) Get(ctx context.Context, id string) (model.Override, bool, error) {
	o, ok, err := s.primary.Get(ctx, id)
	if err == nil {
		return o, ok, nil
	}
	s.logFallback("read", err)
	o, ok, err2 := s.secondary.Get(ctx, id)
	if err2 != nil {
		return model.Override{}, false, eris.Wrapf(err2, "overrides: both stores failed reading %s (primary: %v)", id, err)
	}
	return o, ok, nil
}

// GetAll implements Store.
func (s *FallbackStore) GetAll(ctx context.Context) (map[string]model.Override, error) {
	all, err := s.primary.GetAll(ctx)
	if err == nil {
		return all, nil
	}
	s.logFallback("read", err)
	all, err2 := s.secondary.GetAll(ctx)
	if err2 != nil {
		return nil, eris.Wrapf(err2, "overrides: both stores failed reading (primary: %v)", err)
	}
	return all, nil
}

// Put implements Store. Invalid writes are rejected before either store is
// touched.
func (s *FallbackStore) Put(ctx context.Context, id string, patch model.Override) error {
	if err := checkWrite(id, patch); err != nil {
		return err
	}
	err := s.primary.Put(ctx, id, patch)
	if err == nil {
		return nil
	}
	s.logFallback("write", err)
	if err2 := s.secondary.Put(ctx, id, patch); err2 != nil {
		return eris.Wrapf(err2, "overrides: both stores failed writing %s (primary: %v)", id, err)
	}
	return nil
}

func (s *FallbackStore) logFallback(op string, err error) {
	metrics.RecordOverrideFallback(op)
	zap.L().Warn("overrides: primary store failed, using local fallback",
		zap.String("op", op),
		zap.Error(err),
	)
}
