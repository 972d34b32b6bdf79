// Package resolve runs every logical source and the override read in
// parallel, then merges them into one scored, overridden lead list.
package resolve

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leads-cli/internal/fallback"
	"github.com/sells-group/leads-cli/internal/metrics"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
	"github.com/sells-group/leads-cli/internal/overrides"
	"github.com/sells-group/leads-cli/internal/scorer"
)

// ErrLoadFailed is the only error a run surfaces to users. Degraded source
// data is reported in SourceReport, never as an error.
var ErrLoadFailed = eris.New("failed to load institutions")

// ErrNoStore is returned by UpdateOverride on a resolver built without an
// override store. The in-memory update is still applied.
var ErrNoStore = eris.New("no override store configured")

// Runner walks one logical source's tier chain.
type Runner interface {
	Name() string
	Run(ctx context.Context, crit model.Criteria) fallback.Outcome
}

var _ Runner = (*fallback.Orchestrator)(nil)

// Source binds a tier chain to the system whose schema interprets its records.
type Source struct {
	System model.SourceSystem
	Runner Runner
}

// SourceReport summarises how one source was resolved.
type SourceReport struct {
	Source     string             `json:"source"`
	System     model.SourceSystem `json:"system"`
	Tier       string             `json:"tier"`
	State      string             `json:"state"`
	Attempts   []AttemptReport    `json:"attempts"`
	Records    int                `json:"records"`
	Dropped    int                `json:"dropped"`
	Duplicates int                `json:"duplicates"`
	Excluded   int                `json:"excluded"`
	Degraded   bool               `json:"degraded"`
}

// AttemptReport is the serialisable form of a fallback.Attempt.
type AttemptReport struct {
	Tier       string `json:"tier"`
	Outcome    string `json:"outcome"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Result is one completed run.
type Result struct {
	RunID     string         `json:"run_id"`
	Criteria  model.Criteria `json:"criteria"`
	Leads     []model.Lead   `json:"leads"`
	Sources   []SourceReport `json:"sources"`
	Overrides int            `json:"overrides_applied"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
}

// Lead returns the lead with the given id.
func (r *Result) Lead(id string) (model.Lead, bool) {
	for _, l := range r.Leads {
		if l.ID == id {
			return l, true
		}
	}
	return model.Lead{}, false
}

// Degraded reports whether any source came from a fallback tier.
func (r *Result) Degraded() bool {
	return slices.ContainsFunc(r.Sources, func(s SourceReport) bool { return s.Degraded })
}

// Resolver coordinates one or more sources with the override store.
type Resolver struct {
	sources    []Source
	normalizer *normalize.Normalizer
	store      overrides.Store
	session    *Session
}

// New creates a resolver. norm must hold a schema for every source system.
func New(norm *normalize.Normalizer, store overrides.Store, sources ...Source) *Resolver {
	return &Resolver{
		sources:    sources,
		normalizer: norm,
		store:      store,
		session:    NewSession(),
	}
}

// Session returns the resolver's published-result holder.
func (r *Resolver) Session() *Session { return r.session }

// ObserveAttempt is a fallback.Observer that records tier attempts as metrics.
func ObserveAttempt(source string, a fallback.Attempt) {
	metrics.RecordTierAttempt(source, a.Tier, a.Outcome())
}

// Resolve runs all sources and the override read concurrently and merges
// them. Leads are ordered by assets descending, then id ascending, so the
// order never depends on which fetch finished first.
func (r *Resolver) Resolve(ctx context.Context, crit model.Criteria) (*Result, error) {
	start := time.Now()
	crit = crit.Normalized()

	outcomes := make([]*fallback.Outcome, len(r.sources))
	var ovr map[string]model.Override

	var g errgroup.Group
	for i, src := range r.sources {
		g.Go(func() (err error) {
			defer recoverInto(&err, src.Runner.Name())
			out := src.Runner.Run(ctx, crit)
			outcomes[i] = &out
			return nil
		})
	}
	g.Go(func() (err error) {
		defer recoverInto(&err, "overrides")
		ovr = r.readOverrides(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Criteria:  crit,
		StartedAt: start,
	}
	seen := make(map[string]int)
	for i, src := range r.sources {
		out := outcomes[i]
		if out == nil {
			return nil, eris.Wrapf(ErrLoadFailed, "resolve: source %s produced no outcome", src.Runner.Name())
		}
		batch := r.normalizer.NormalizeAll(out.Records, src.System, out.Tier)
		metrics.RecordDropped(out.Source, batch.Dropped)

		rep := report(src.System, *out, batch)
		for _, inst := range batch.Institutions {
			// Upstream asset filters work in rounded thousands.
			if !crit.Matches(inst) {
				rep.Excluded++
				continue
			}
			lead := model.NewLead(inst, scorer.Evaluate(inst))
			if o, ok := ovr[inst.ID]; ok {
				lead = lead.ApplyOverride(o)
				res.Overrides++
			}
			if j, dup := seen[lead.ID]; dup {
				res.Leads[j] = lead
				continue
			}
			seen[lead.ID] = len(res.Leads)
			res.Leads = append(res.Leads, lead)
		}
		res.Sources = append(res.Sources, rep)
	}

	slices.SortStableFunc(res.Leads, func(a, b model.Lead) int {
		if c := cmp.Compare(b.AssetsUSD, a.AssetsUSD); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	res.Duration = time.Since(start)
	metrics.ObserveResolve(res.Duration)
	zap.L().Info("resolve: run complete",
		zap.String("run_id", res.RunID),
		zap.Int("leads", len(res.Leads)),
		zap.Int("overrides", res.Overrides),
		zap.Bool("degraded", res.Degraded()),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// Load resolves and publishes the result unless a newer run has already
// published. It returns whatever result is current afterwards.
func (r *Resolver) Load(ctx context.Context, crit model.Criteria) (*Result, error) {
	ticket := r.session.Begin()
	res, err := r.Resolve(ctx, crit)
	if err != nil {
		return nil, err
	}
	if !r.session.Publish(ticket, res) {
		zap.L().Debug("resolve: discarding stale run", zap.String("run_id", res.RunID))
	}
	return r.session.Current(), nil
}

// UpdateOverride writes patch for id and applies it to the current result at
// once. The in-memory update is kept even when the store write fails.
func (r *Resolver) UpdateOverride(ctx context.Context, id string, patch model.Override) error {
	if id == "" {
		return overrides.ErrEmptyID
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	r.session.ApplyOverride(id, patch)
	if r.store == nil {
		return eris.Wrapf(ErrNoStore, "resolve: write override %s", id)
	}
	err := r.store.Put(ctx, id, patch)
	r.session.retain(id, patch)
	if err != nil {
		zap.L().Error("resolve: override write failed", zap.String("id", id), zap.Error(err))
		return eris.Wrapf(err, "resolve: write override %s", id)
	}
	return nil
}

func (r *Resolver) readOverrides(ctx context.Context) map[string]model.Override {
	if r.store == nil {
		return nil
	}
	all, err := r.store.GetAll(ctx)
	if err != nil {
		zap.L().Warn("resolve: override read failed, continuing without overrides", zap.Error(err))
		return nil
	}
	return all
}

func recoverInto(err *error, name string) {
	if p := recover(); p != nil {
		zap.L().Error("resolve: panic during load", zap.String("task", name), zap.Any("panic", p))
		*err = eris.Wrapf(ErrLoadFailed, "resolve: %s panicked: %v", name, p)
	}
}

func report(system model.SourceSystem, out fallback.Outcome, b normalize.Batch) SourceReport {
	rep := SourceReport{
		Source:     out.Source,
		System:     system,
		Tier:       out.Tier,
		State:      out.State.String(),
		Records:    len(out.Records),
		Dropped:    b.Dropped,
		Duplicates: b.Duplicates,
		Degraded:   out.Degraded(),
	}
	for _, a := range out.Attempts {
		ar := AttemptReport{
			Tier:       a.Tier,
			Outcome:    a.Outcome(),
			Records:    a.Records,
			DurationMs: a.Duration.Milliseconds(),
		}
		if a.Err != nil {
			ar.Error = a.Err.Error()
		}
		rep.Attempts = append(rep.Attempts, ar)
	}
	return rep
}
