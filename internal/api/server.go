// Package api serves resolved leads and the override store over HTTP. The
// /overrides routes are the remote override API that HTTPStore clients talk to.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/overrides"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/internal/resolve"
)

// maxBodyBytes caps request bodies on write routes.
const maxBodyBytes = 1 << 20

// Server holds the dependencies shared by all handlers.
type Server struct {
	resolver    *resolve.Resolver
	store       overrides.Store
	criteria    model.Criteria
	corsOrigins []string
	metrics     http.Handler
	breakers    *resilience.Registry
}

// Option configures a Server.
type Option func(*Server)

// WithCriteria sets the criteria used when /leads triggers a resolution run.
func WithCriteria(c model.Criteria) Option {
	return func(s *Server) { s.criteria = c }
}

// WithCORSOrigins sets the allowed CORS origins. Defaults to "*".
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithBreakers exposes the tier breaker states on GET /health/tiers.
func WithBreakers(reg *resilience.Registry) Option {
	return func(s *Server) { s.breakers = reg }
}

// New creates a Server. store backs the /overrides routes and should be the
// same store the resolver reads from.
func New(resolver *resolve.Resolver, store overrides.Store, opts ...Option) *Server {
	s := &Server{
		resolver:    resolver,
		store:       store,
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.breakers != nil {
		r.Get("/health/tiers", s.tierHealth)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/overrides", func(r chi.Router) {
		r.Get("/", s.listOverrides)
		r.Put("/{id}", s.putOverride)
	})

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", s.listLeads)
		r.Get("/{id}", s.getLead)
		r.Put("/{id}/override", s.updateLeadOverride)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
