// Package resilience guards retrieval tiers with circuit breakers and labels
// tier failures as transient or permanent.
package resilience

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BreakerState is the position of one tier's breaker.
type BreakerState int

const (
	// Closed lets every attempt through.
	Closed BreakerState = iota
	// Open skips the tier until its cooldown has passed.
	Open
	// HalfOpen has one trial attempt in flight; everything else is skipped.
	HalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Allow when a tier is being skipped.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// Breaker defaults. A public endpoint that fails three runs in a row is left
// alone for a minute.
const (
	DefaultThreshold = 3
	DefaultCooldown  = time.Minute
)

// BreakerConfig tunes every breaker in a Registry.
type BreakerConfig struct {
	// Threshold is the number of consecutive failed attempts that opens a tier.
	Threshold int
	// Cooldown is how long an open tier is skipped before a trial attempt.
	Cooldown time.Duration
}

// BreakerConfigFrom builds a config from the breaker settings, where
// non-positive values keep the defaults.
func BreakerConfigFrom(threshold, cooldownSecs int) BreakerConfig {
	return BreakerConfig{
		Threshold: threshold,
		Cooldown:  time.Duration(cooldownSecs) * time.Second,
	}.withDefaults()
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	return c
}

// Breaker counts consecutive failures of one tier. Callers ask Allow before
// calling the tier and then report with Done, or Release when the attempt
// was abandoned by the caller rather than failed by the tier.
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	now      func() time.Time
	onChange func(from, to BreakerState)

	state    BreakerState
	failures int
	openedAt time.Time
}

// Allow returns ErrCircuitOpen while the tier is being skipped. After the
// cooldown exactly one caller is let through as a trial.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Closed:
		return nil
	case Open:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return ErrCircuitOpen
		}
		b.set(HalfOpen)
		return nil
	default:
		return ErrCircuitOpen
	}
}

// Done records an allowed attempt. ok is false when the tier errored or
// returned no records.
func (b *Breaker) Done(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ok {
		b.failures = 0
		b.set(Closed)
		return
	}
	b.failures++
	if b.state == HalfOpen || b.failures >= b.cfg.Threshold {
		b.openedAt = b.now()
		b.set(Open)
	}
}

// Release ends an allowed attempt without counting it. A released trial
// returns the breaker to open with its original cooldown.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == HalfOpen {
		b.set(Open)
	}
}

// State returns the breaker's current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) set(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onChange != nil {
		b.onChange(from, to)
	}
}

// TransitionFunc observes a breaker changing state.
type TransitionFunc func(source, tier string, from, to BreakerState)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// OnTransition installs a hook called on every state change, after it is
// logged. It runs with the breaker locked and must not call back into it.
func OnTransition(fn TransitionFunc) RegistryOption {
	return func(r *Registry) { r.onChange = fn }
}

type tierKey struct{ source, tier string }

// Registry holds one breaker per source tier. It outlives individual runs so
// a tier that keeps failing is skipped by the runs that follow.
type Registry struct {
	cfg      BreakerConfig
	now      func() time.Time
	onChange TransitionFunc

	mu       sync.Mutex
	breakers map[tierKey]*Breaker
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg BreakerConfig, opts ...RegistryOption) *Registry {
	r := &Registry{
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		breakers: make(map[tierKey]*Breaker),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// For returns the breaker of a source's tier, creating it closed.
func (r *Registry) For(source, tier string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tierKey{source, tier}
	if b, ok := r.breakers[key]; ok {
		return b
	}
	b := &Breaker{
		cfg: r.cfg,
		now: r.now,
		onChange: func(from, to BreakerState) {
			zap.L().Info("resilience: tier breaker changed state",
				zap.String("source", source),
				zap.String("tier", tier),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			if r.onChange != nil {
				r.onChange(source, tier, from, to)
			}
		},
	}
	r.breakers[key] = b
	return b
}

// BreakerStatus is a point-in-time view of one tier's breaker.
type BreakerStatus struct {
	Source   string `json:"source"`
	Tier     string `json:"tier"`
	State    string `json:"state"`
	Failures int    `json:"consecutive_failures"`
}

// Snapshot lists every known breaker ordered by source, then tier.
func (r *Registry) Snapshot() []BreakerStatus {
	r.mu.Lock()
	out := make([]BreakerStatus, 0, len(r.breakers))
	for key, b := range r.breakers {
		b.mu.Lock()
		out = append(out, BreakerStatus{
			Source:   key.source,
			Tier:     key.tier,
			State:    b.state.String(),
			Failures: b.failures,
		})
		b.mu.Unlock()
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b BreakerStatus) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Tier, b.Tier)
	})
	return out
}
