// Package fallback runs the ordered retrieval tiers of one logical source
// and accepts the first tier that yields records.
package fallback

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/internal/source"
)

// State is the orchestrator's position in the tier chain.
type State int

const (
	// StateTryTier means the current tier is about to be attempted.
	StateTryTier State = iota
	// StateSuccess means a tier returned at least one record.
	StateSuccess
	// StateExhausted means every tier failed and the last tier's result,
	// possibly empty, was returned.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateTryTier:
		return "try_tier"
	case StateSuccess:
		return "success"
	case StateExhausted:
		return "exhausted_fallback"
	default:
		return "unknown"
	}
}

// Attempt outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Attempt records one tier invocation.
type Attempt struct {
	Tier     string
	Records  int
	Err      error
	Duration time.Duration
}

// Outcome labels the attempt for logs and metrics.
func (a Attempt) Outcome() string {
	switch {
	case a.Err == nil && a.Records == 0:
		return OutcomeEmpty
	case a.Err == nil:
		return OutcomeSuccess
	case eris.Is(a.Err, resilience.ErrCircuitOpen):
		return OutcomeSkipped
	default:
		return OutcomeError
	}
}

// Outcome is the result of one orchestrator run.
type Outcome struct {
	Source   string
	State    State
	Tier     string
	Records  []model.RawRecord
	Attempts []Attempt
}

// Degraded reports whether the records came from anything but the first tier.
func (o Outcome) Degraded() bool {
	return len(o.Attempts) > 1 || o.State != StateSuccess
}

// Observer is notified after every attempt.
type Observer func(source string, a Attempt)

// Orchestrator tries tiers in order. Each tier is attempted at most once per
// Run; a failed tier is never retried within a run.
type Orchestrator struct {
	name     string
	tiers    []source.Adapter
	breakers *resilience.Registry
	observer Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBreakers guards every tier except the last with a circuit breaker
// keyed by source and tier name. An open breaker counts as a failed attempt
// without calling the tier; an empty tier counts against its breaker.
func WithBreakers(reg *resilience.Registry) Option {
	return func(o *Orchestrator) {
		o.breakers = reg
	}
}

// WithObserver installs a per-attempt callback.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// New creates an orchestrator for the named source over tiers. The last tier
// should be one that cannot fail, such as the embedded sample.
func New(name string, tiers []source.Adapter, opts ...Option) *Orchestrator {
	o := &Orchestrator{name: name, tiers: tiers}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the logical source name.
func (o *Orchestrator) Name() string { return o.name }

// Run walks the tier chain. Tier failures advance the chain and are never
// returned as errors; if every tier fails the final tier's result is used.
func (o *Orchestrator) Run(ctx context.Context, crit model.Criteria) Outcome {
	out := Outcome{Source: o.name, State: StateExhausted}
	if len(o.tiers) == 0 {
		zap.L().Warn("fallback: source has no tiers", zap.String("source", o.name))
		return out
	}

	state, i := StateTryTier, 0
	for state == StateTryTier {
		tier := o.tiers[i]
		last := i == len(o.tiers)-1

		records, att := o.attempt(ctx, tier, crit, last)
		out.Attempts = append(out.Attempts, att)
		if o.observer != nil {
			o.observer(o.name, att)
		}

		switch {
		case att.Err == nil && len(records) > 0:
			state = StateSuccess
			out.Tier, out.Records = tier.Name(), records
		case last:
			state = StateExhausted
			out.Tier, out.Records = tier.Name(), records
		default:
			zap.L().Warn("fallback: tier failed, advancing",
				zap.String("source", o.name),
				zap.String("tier", tier.Name()),
				zap.String("outcome", att.Outcome()),
				zap.String("class", resilience.Classify(att.Err)),
				zap.Error(att.Err),
			)
			i++
		}
	}
	out.State = state

	zap.L().Info("fallback: source resolved",
		zap.String("source", o.name),
		zap.String("tier", out.Tier),
		zap.Stringer("state", out.State),
		zap.Int("records", len(out.Records)),
		zap.Int("attempts", len(out.Attempts)),
	)
	return out
}

func (o *Orchestrator) attempt(ctx context.Context, tier source.Adapter, crit model.Criteria, last bool) ([]model.RawRecord, Attempt) {
	start := time.Now()
	att := Attempt{Tier: tier.Name()}

	var cb *resilience.Breaker
	if o.breakers != nil && !last {
		cb = o.breakers.For(o.name, tier.Name())
		if err := cb.Allow(); err != nil {
			att.Err = eris.Wrapf(err, "fallback: %s/%s", o.name, tier.Name())
			att.Duration = time.Since(start)
			return nil, att
		}
	}

	records, err := tier.Search(ctx, crit)
	if err != nil {
		records = nil
	}
	if cb != nil {
		// A run cancelled by its caller says nothing about the tier.
		if ctx.Err() != nil {
			cb.Release()
		} else {
			cb.Done(err == nil && len(records) > 0)
		}
	}

	att.Records, att.Err, att.Duration = len(records), err, time.Since(start)
	return records, att
}
