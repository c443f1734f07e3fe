// internal/api/server.go
//
// Package api exposes the matching engine over HTTP. Handlers are thin:
// decode and validate the request, resolve the order and candidate pool
// through the stores, delegate to the engine, encode the result.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forgelink/internal/common/config"
	"forgelink/internal/common/logger"
	"forgelink/internal/common/observability"
	"forgelink/internal/common/validation"
	"forgelink/internal/matching/engine"
	"forgelink/internal/stores"
)

const readyCheckTimeout = 2 * time.Second

// ReadyCheck probes one backing dependency for the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server wires HTTP routes to the matching engine and its stores.
type Server struct {
	engine        *engine.Engine
	orders        stores.OrderStore
	manufacturers stores.ManufacturerStore
	search        *stores.SearchStore
	resultCache   *engine.ResultCache
	validator     *validation.Validator
	obs           *observability.Observability
	logger        logger.Logger

	serviceName string
	version     string
	readyChecks []ReadyCheck
}

// ServerOption customizes server construction.
type ServerOption func(*Server)

// WithSearchStore enables search-backed candidate pool narrowing.
func WithSearchStore(s *stores.SearchStore) ServerOption {
	return func(srv *Server) { srv.search = s }
}

// WithResultCache exposes the result cache invalidation endpoint. Called by
// profile-ingestion tooling whenever manufacturer data changes.
func WithResultCache(cache *engine.ResultCache) ServerOption {
	return func(srv *Server) { srv.resultCache = cache }
}

// WithObservability attaches OpenTelemetry request instrumentation.
func WithObservability(obs *observability.Observability) ServerOption {
	return func(srv *Server) { srv.obs = obs }
}

// WithReadyCheck registers a dependency probe for the readiness endpoint.
func WithReadyCheck(name string, check func(ctx context.Context) error) ServerOption {
	return func(srv *Server) {
		srv.readyChecks = append(srv.readyChecks, ReadyCheck{Name: name, Check: check})
	}
}

func NewServer(
	app config.AppConfig,
	eng *engine.Engine,
	orders stores.OrderStore,
	manufacturers stores.ManufacturerStore,
	validator *validation.Validator,
	log logger.Logger,
	opts ...ServerOption,
) *Server {
	srv := &Server{
		engine:        eng,
		orders:        orders,
		manufacturers: manufacturers,
		validator:     validator,
		logger:        log,
		serviceName:   app.Name,
		version:       app.Version,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Routes builds the HTTP handler for the service.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/matches/find", s.handleFindMatches)
	mux.HandleFunc("POST /v1/matches/analyze", s.handleAnalyzeMatch)
	mux.HandleFunc("POST /v1/matches/broadcast", s.handleBroadcast)
	mux.HandleFunc("POST /v1/cache/invalidate", s.handleInvalidateCache)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.withRequestID(mux)
}

type requestIDKey struct{}

// withRequestID tags every request with an id, propagates it on the
// response, and logs request completion with duration and status.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		duration := time.Since(start)

		if s.obs != nil {
			s.obs.RecordRequest(ctx, r.URL.Path, http.StatusText(rec.status))
			s.obs.RecordDuration(ctx, r.URL.Path, duration)
		}

		s.logger.Info("request completed", map[string]interface{}{
			"requestId":  requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": duration.Milliseconds(),
		})
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
