package overrides

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/metrics"
	"github.com/sells-group/leads-cli/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, id string) (model.Override, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Override), args.Bool(1), args.Error(2)
}

func (m *mockStore) GetAll(ctx context.Context) (map[string]model.Override, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(map[string]model.Override), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Put(ctx context.Context, id string, patch model.Override) error {
	return m.Called(ctx, id, patch).Error(0)
}

func init() {
	metrics.Init(prometheus.NewRegistry())
}

func TestFallbackStore_PrimaryHealthy(t *testing.T) {
	ctx := context.Background()
	primary, secondary := new(mockStore), new(mockStore)
	primary.On("GetAll", ctx).Return(map[string]model.Override{"a": {Notes: model.Ptr("p")}}, nil)

	s := NewFallbackStore(primary, secondary)
	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p", *all["a"].Notes)
	secondary.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestFallbackStore_ReadFallsBack(t *testing.T) {
	ctx := context.Background()
	primary := new(mockStore)
	primary.On("GetAll", ctx).Return(nil, eris.New("connection refused"))
	primary.On("Get", ctx, "a").Return(model.Override{}, false, eris.New("connection refused"))

	local := NewMemoryStore()
	require.NoError(t, local.Put(ctx, "a", model.Override{Notes: model.Ptr("local")}))

	s := NewFallbackStore(primary, local)
	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", *all["a"].Notes)

	got, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "local", *got.Notes)
}

func TestFallbackStore_WriteFallsBack(t *testing.T) {
	ctx := context.Background()
	patch := model.Override{Status: model.Ptr(model.StatusWon)}
	primary := new(mockStore)
	primary.On("Put", ctx, "fdic_1", patch).Return(eris.New("503"))

	local := NewMemoryStore()
	s := NewFallbackStore(primary, local)
	require.NoError(t, s.Put(ctx, "fdic_1", patch))

	got, ok, err := local.Get(ctx, "fdic_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.StatusWon, *got.Status)
	primary.AssertExpectations(t)
}

func TestFallbackStore_BothFail(t *testing.T) {
	ctx := context.Background()
	primary, secondary := new(mockStore), new(mockStore)
	primary.On("GetAll", ctx).Return(nil, eris.New("remote down"))
	secondary.On("GetAll", ctx).Return(nil, eris.New("disk full"))

	_, err := NewFallbackStore(primary, secondary).GetAll(ctx)
	assert.Error(t, err)
}

func TestFallbackStore_InvalidWriteTouchesNothing(t *testing.T) {
	primary, secondary := new(mockStore), new(mockStore)
	s := NewFallbackStore(primary, secondary)

	err := s.Put(context.Background(), "", model.Override{Notes: model.Ptr("x")})
	assert.ErrorIs(t, err, ErrEmptyID)
	primary.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	secondary.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}
