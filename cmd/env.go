package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/fallback"
	"github.com/sells-group/leads-cli/internal/fetcher"
	"github.com/sells-group/leads-cli/internal/metrics"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
	"github.com/sells-group/leads-cli/internal/overrides"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/internal/resolve"
	"github.com/sells-group/leads-cli/internal/source"
	"github.com/sells-group/leads-cli/internal/source/fdic"
	"github.com/sells-group/leads-cli/internal/source/ncua"
	"github.com/sells-group/leads-cli/internal/source/proxy"
	"github.com/sells-group/leads-cli/internal/source/sample"
)

// leadsEnv holds the resolver, the override store and the tier breakers
// used by every command.
type leadsEnv struct {
	Resolver *resolve.Resolver
	Store    overrides.Store
	Breakers *resilience.Registry
	closers  []func()
}

// Close releases the override store.
func (e *leadsEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// storeOpener opens the override store a command writes through.
type storeOpener func(ctx context.Context, c *config.Config) (overrides.Store, func(), error)

// initLeads validates config for mode, opens the override store and builds
// the resolver over both sources. Callers should defer env.Close().
func initLeads(ctx context.Context, mode string, open storeOpener) (*leadsEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	store, closeStore, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	env := &leadsEnv{Store: store}
	if closeStore != nil {
		env.closers = append(env.closers, closeStore)
	}

	env.Breakers = resilience.NewRegistry(
		resilience.BreakerConfigFrom(cfg.Breaker.FailureThreshold, cfg.Breaker.ResetTimeoutSecs),
		resilience.OnTransition(observeBreaker),
	)
	sources, err := buildSources(cfg, env.Breakers)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.Resolver = resolve.New(normalize.New(fdic.Schema, ncua.Schema), store, sources...)
	return env, nil
}

// buildSources assembles the tier chain of each source:
// FDIC api -> mirror -> proxy -> sample and NCUA proxy -> datasets -> sample.
func buildSources(c *config.Config, breakers *resilience.Registry) ([]resolve.Source, error) {
	orchOpts := []fallback.Option{
		fallback.WithBreakers(breakers),
		fallback.WithObserver(resolve.ObserveAttempt),
	}

	fdicFetcher := newFetcher(c, c.Sources.FDIC.TimeoutSecs, c.Sources.FDIC.BaseURL, c.Sources.FDIC.MirrorURL)
	ncuaFetcher := newFetcher(c, c.Sources.NCUA.TimeoutSecs)

	var fdicTiers []source.Adapter
	if c.Sources.FDIC.BaseURL != "" {
		fdicTiers = append(fdicTiers, fdic.NewClient("fdic-api", c.Sources.FDIC.BaseURL, fdicFetcher))
	}
	if c.Sources.FDIC.MirrorURL != "" {
		fdicTiers = append(fdicTiers, fdic.NewClient("fdic-mirror", c.Sources.FDIC.MirrorURL, fdicFetcher))
	}
	if c.Sources.Proxy.URL != "" {
		fdicTiers = append(fdicTiers, proxy.NewClient("fdic-proxy", c.Sources.Proxy.URL, model.SourceFDIC, fdicFetcher))
	}
	fdicSample, err := sample.NewEmbedded("fdic-sample", fdic.Schema)
	if err != nil {
		return nil, err
	}
	fdicTiers = append(fdicTiers, fdicSample)

	var ncuaTiers []source.Adapter
	if c.Sources.Proxy.URL != "" {
		ncuaTiers = append(ncuaTiers, proxy.NewClient("ncua-proxy", c.Sources.Proxy.URL, model.SourceNCUA, ncuaFetcher))
	}
	for i, ds := range c.Sources.NCUA.Datasets {
		if ds.URL == "" {
			continue
		}
		d := ncua.DialectByName(ds.Dialect)
		ncuaTiers = append(ncuaTiers, ncua.NewClient(fmt.Sprintf("ncua-%d-%s", i, d.Name), ds.URL, d, ncuaFetcher))
	}
	ncuaSample, err := sample.NewEmbedded("ncua-sample", ncua.Schema)
	if err != nil {
		return nil, err
	}
	ncuaTiers = append(ncuaTiers, ncuaSample)

	for _, d := range []source.Definition{
		{System: model.SourceFDIC, Tiers: fdicTiers},
		{System: model.SourceNCUA, Tiers: ncuaTiers},
	} {
		zap.L().Debug("source tiers", zap.String("source", string(d.System)), zap.Strings("tiers", d.Names()))
	}

	return []resolve.Source{
		{System: model.SourceFDIC, Runner: fallback.New(string(model.SourceFDIC), fdicTiers, orchOpts...)},
		{System: model.SourceNCUA, Runner: fallback.New(string(model.SourceNCUA), ncuaTiers, orchOpts...)},
	}, nil
}

func observeBreaker(src, tier string, _, to resilience.BreakerState) {
	metrics.SetBreakerOpen(src, tier, to != resilience.Closed)
}

// newFetcher builds a fetcher whose limiters for each of hosts start at the
// configured FDIC rate limit. The adaptive limiter is replaced too, so the
// setting applies to hosts that have one by default.
func newFetcher(c *config.Config, timeoutSecs int, hosts ...string) *fetcher.HTTPFetcher {
	limiters := fetcher.DefaultRateLimiters()
	adaptive := make(map[string]*fetcher.AdaptiveLimiter)
	if r := c.Sources.FDIC.RateLimit; r > 0 {
		burst := max(1, int(r))
		for _, raw := range hosts {
			if u, err := url.Parse(raw); err == nil && u.Host != "" {
				limiters[u.Host] = rate.NewLimiter(rate.Limit(r), burst)
				adaptive[u.Host] = fetcher.NewAdaptiveLimiter(rate.Limit(r), burst)
			}
		}
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:        c.Sources.UserAgent,
		Timeout:          config.Timeout(timeoutSecs, fetcher.DefaultTimeout),
		RateLimiters:     limiters,
		AdaptiveLimiters: adaptive,
	})
}

// openClientStore opens the store used by CLI commands: the remote override
// API backed by the local SQLite file, or just the local file.
func openClientStore(ctx context.Context, c *config.Config) (overrides.Store, func(), error) {
	var (
		local   overrides.Store
		closeFn func()
	)
	if c.Overrides.LocalPath != "" {
		ls, err := overrides.NewLocal(c.Overrides.LocalPath)
		if err != nil {
			return nil, nil, err
		}
		if err := ls.Migrate(ctx); err != nil {
			_ = ls.Close()
			return nil, nil, eris.Wrap(err, "migrate local overrides")
		}
		local, closeFn = ls, func() { _ = ls.Close() }
	} else {
		zap.L().Warn("overrides.local_path not set, overrides will not survive this process")
		local = overrides.NewMemoryStore()
	}

	if c.Overrides.RemoteURL == "" {
		return local, closeFn, nil
	}
	remote := overrides.NewHTTPStore(c.Overrides.RemoteURL,
		overrides.WithHTTPClient(&http.Client{Timeout: config.Timeout(c.Overrides.TimeoutSecs, overrides.DefaultHTTPTimeout)}))
	return overrides.NewFallbackStore(remote, local), closeFn, nil
}

// openServerStore opens the Postgres store that backs the override API.
func openServerStore(ctx context.Context, c *config.Config) (overrides.Store, func(), error) {
	ps, err := overrides.NewPostgres(ctx, c.Overrides.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := ps.Migrate(ctx); err != nil {
		ps.Close()
		return nil, nil, eris.Wrap(err, "migrate override database")
	}
	return ps, ps.Close, nil
}

// criteriaFromFlags builds search criteria, defaulting the limit from config.
func criteriaFromFlags(state, name string, minAssets, maxAssets int64, limit int) model.Criteria {
	if limit <= 0 {
		limit = cfg.Resolve.DefaultLimit
	}
	return model.Criteria{
		State:        state,
		MinAssetsUSD: minAssets,
		MaxAssetsUSD: maxAssets,
		Name:         name,
		Limit:        limit,
	}.Normalized()
}
