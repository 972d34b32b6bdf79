package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(t *testing.T, threshold int) (*Registry, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)}
	return NewRegistry(BreakerConfig{Threshold: threshold, Cooldown: time.Minute}, WithClock(c.now)), c
}

func fail(t *testing.T, b *Breaker, n int) {
	t.Helper()
	for range n {
		require.NoError(t, b.Allow())
		b.Done(false)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	reg, _ := newTestRegistry(t, 3)
	b := reg.For("fdic", "fdic-api")

	fail(t, b, 2)
	assert.Equal(t, Closed, b.State())

	require.NoError(t, b.Allow())
	b.Done(true)
	fail(t, b, 2)
	assert.Equal(t, Closed, b.State(), "a success resets the streak")

	fail(t, b, 1)
	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_SingleTrialAfterCooldown(t *testing.T) {
	reg, c := newTestRegistry(t, 1)
	b := reg.For("ncua", "ncua-proxy")
	fail(t, b, 1)

	c.advance(59 * time.Second)
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	c.advance(time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, HalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one trial at a time")

	b.Done(true)
	assert.Equal(t, Closed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	reg, c := newTestRegistry(t, 3)
	b := reg.For("ncua", "ncua-0-current")
	fail(t, b, 3)

	c.advance(time.Minute)
	require.NoError(t, b.Allow())
	b.Done(false)
	assert.Equal(t, Open, b.State())

	c.advance(30 * time.Second)
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "cooldown restarts at the failed trial")
}

func TestBreaker_ReleasedTrialStaysOpen(t *testing.T) {
	reg, c := newTestRegistry(t, 1)
	b := reg.For("fdic", "fdic-mirror")
	fail(t, b, 1)

	c.advance(time.Minute)
	require.NoError(t, b.Allow())
	b.Release()
	assert.Equal(t, Open, b.State())

	require.NoError(t, b.Allow(), "cooldown already served")
}

func TestRegistry_KeysBySourceAndTier(t *testing.T) {
	reg, _ := newTestRegistry(t, 1)
	assert.Same(t, reg.For("fdic", "fdic-proxy"), reg.For("fdic", "fdic-proxy"))
	assert.NotSame(t, reg.For("fdic", "fdic-proxy"), reg.For("ncua", "fdic-proxy"))

	fail(t, reg.For("ncua", "ncua-proxy"), 1)

	assert.Equal(t, []BreakerStatus{
		{Source: "fdic", Tier: "fdic-proxy", State: "closed"},
		{Source: "ncua", Tier: "fdic-proxy", State: "closed"},
		{Source: "ncua", Tier: "ncua-proxy", State: "open", Failures: 1},
	}, reg.Snapshot())
}

func TestRegistry_OnTransition(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := &clock{t: time.Now()}
	reg := NewRegistry(BreakerConfig{Threshold: 1, Cooldown: time.Second},
		WithClock(c.now),
		OnTransition(func(src, tier string, from, to BreakerState) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, src+"/"+tier+":"+from.String()+">"+to.String())
		}),
	)
	b := reg.For("fdic", "fdic-api")
	fail(t, b, 1)
	c.advance(time.Second)
	require.NoError(t, b.Allow())
	b.Done(true)

	assert.Equal(t, []string{
		"fdic/fdic-api:closed>open",
		"fdic/fdic-api:open>half_open",
		"fdic/fdic-api:half_open>closed",
	}, seen)
}

func TestBreakerConfigFrom(t *testing.T) {
	assert.Equal(t, BreakerConfig{Threshold: 5, Cooldown: 30 * time.Second}, BreakerConfigFrom(5, 30))
	assert.Equal(t, BreakerConfig{Threshold: DefaultThreshold, Cooldown: DefaultCooldown}, BreakerConfigFrom(0, -1))
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half_open", HalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(7).String())
}
