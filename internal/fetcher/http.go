package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-cli/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	RateLimiters map[string]*rate.Limiter
	// AdaptiveLimiters replace the default adaptive limiter per host. A host
	// with an adaptive limiter ignores its fixed one.
	AdaptiveLimiters map[string]*AdaptiveLimiter
	// Client overrides the underlying http.Client (tests).
	Client *http.Client
}

// AdaptiveLimiter paces requests to a host that throttles with 429. Each
// throttle halves the rate (floor: a quarter of the base rate) and honors the
// server's Retry-After by pausing the host. Each success raises the rate by a
// fifth, capped at twice the base rate.
type AdaptiveLimiter struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	floor    rate.Limit
	ceil     rate.Limit
	resumeAt time.Time
}

// NewAdaptiveLimiter starts at base requests per second.
func NewAdaptiveLimiter(base rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		lim:   rate.NewLimiter(base, burst),
		floor: base / 4,
		ceil:  base * 2,
	}
}

// Wait blocks until the host's pause (if any) has elapsed and the limiter
// admits one request.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	a.mu.Lock()
	pause := time.Until(a.resumeAt)
	a.mu.Unlock()
	if pause > 0 {
		t := time.NewTimer(pause)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return a.lim.Wait(ctx)
}

// Recovered records a successful response.
func (a *AdaptiveLimiter) Recovered() {
	a.scale(1.2)
}

// Throttled records a 429. A positive retryAfter pauses the host until then.
func (a *AdaptiveLimiter) Throttled(retryAfter time.Duration) {
	next := a.scale(0.5)
	if retryAfter > 0 {
		a.mu.Lock()
		if until := time.Now().Add(retryAfter); until.After(a.resumeAt) {
			a.resumeAt = until
		}
		a.mu.Unlock()
	}
	zap.L().Warn("fetcher: host throttled, slowing down",
		zap.Float64("rate", float64(next)),
		zap.Duration("retry_after", retryAfter),
	)
}

func (a *AdaptiveLimiter) scale(factor float64) rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.lim.Limit() * rate.Limit(factor)
	next = min(max(next, a.floor), a.ceil)
	a.lim.SetLimit(next)
	return next
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	return a.lim.Limit()
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(h); err == nil {
		return time.Until(at)
	}
	return 0
}

// DefaultTimeout applies when HTTPOptions.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// HTTPFetcher implements Fetcher using net/http with per-host rate limiting.
// It never retries: the caller's fallback chain decides what happens next.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	adaptive map[string]*AdaptiveLimiter
}

// DefaultRateLimiters returns the default per-host rate limiters for the
// public regulatory endpoints.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"api.fdic.gov":        rate.NewLimiter(5, 5),
		"banks.data.fdic.gov": rate.NewLimiter(5, 5),
	}
}

// DefaultAdaptiveLimiters returns adaptive rate limiters for known hosts.
func DefaultAdaptiveLimiters() map[string]*AdaptiveLimiter {
	return map[string]*AdaptiveLimiter{
		"api.fdic.gov": NewAdaptiveLimiter(5, 5),
	}
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "leads-cli/1.0"
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	adaptive := DefaultAdaptiveLimiters()
	for k, v := range opts.AdaptiveLimiters {
		adaptive[k] = v
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &HTTPFetcher{
		client:   client,
		opts:     opts,
		limiters: limiters,
		adaptive: adaptive,
	}
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lim, ok := f.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(20, 20)
	f.limiters[host] = lim
	return lim
}

// HostLimit returns the rate requests to host currently wait on: the adaptive
// limiter's rate when the host has one, the fixed limiter's otherwise.
func (f *HTTPFetcher) HostLimit(host string) rate.Limit {
	if a, ok := f.adaptive[host]; ok {
		return a.Limit()
	}
	return f.limiterFor(host).Limit()
}

func (f *HTTPFetcher) wait(ctx context.Context, rawURL string) (*AdaptiveLimiter, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}
	if a, ok := f.adaptive[u.Host]; ok {
		return a, eris.Wrap(a.Wait(ctx), "fetcher: rate limiter wait")
	}
	return nil, eris.Wrap(f.limiterFor(u.Host).Wait(ctx), "fetcher: rate limiter wait")
}

// Download fetches the URL once and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	adaptive, err := f.wait(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
	}

	if resp.StatusCode == http.StatusTooManyRequests && adaptive != nil {
		adaptive.Throttled(retryAfter(resp.Header.Get("Retry-After")))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &resilience.StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if adaptive != nil {
		adaptive.Recovered()
	}
	return resp.Body, nil
}
