// Package server exposes the assistant over HTTP: one authenticated query
// endpoint plus health and metrics. All CRM authorization happens in the
// query engine; this layer only authenticates the caller and forwards their
// bearer token to the data services.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebward/aurum/common/trace"
	"github.com/calebward/aurum/common/version"
	"github.com/calebward/aurum/internal/aurum/authz"
	"github.com/calebward/aurum/internal/aurum/nlp"
	"github.com/calebward/aurum/internal/aurum/query"
)

const (
	maxQueryBodyBytes = 1 << 20
	shutdownTimeout   = 10 * time.Second
)

// QueryEngine is the slice of the query engine the server needs.
// *query.Engine satisfies it; tests substitute a stub.
type QueryEngine interface {
	ProcessQuery(ctx context.Context, queryText, authToken string, user authz.UserContext) (*query.QueryResponse, error)
}

// Config holds options for creating a Server.
type Config struct {
	// Addr is the TCP listen address, e.g. ":8080".
	Addr string
	// JWTSecret is the HMAC key used to verify bearer tokens.
	JWTSecret string
}

// Server handles the assistant HTTP routes.
type Server struct {
	cfg       Config
	engine    QueryEngine
	jwtSecret []byte
	router    *mux.Router
}

// New creates a Server and registers its routes.
func New(cfg Config, engine QueryEngine) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    engine,
		jwtSecret: []byte(cfg.JWTSecret),
	}

	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.loggingMiddleware)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/v1/assistant").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)

	s.router = r
	return s
}

// ServeHTTP makes the Server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("http server shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

// queryRequest is the JSON body accepted by POST /v1/assistant/query.
type queryRequest struct {
	Query string `json:"query"`
}

// handleQuery runs one assistant query for the authenticated caller.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		// The auth middleware guarantees a user; reaching here is a routing bug.
		writeJSON(w, http.StatusInternalServerError, errorResponse("Something went wrong on our side. Please try again."))
		return
	}

	var req queryRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(
			`I couldn't read that request. Send a JSON body like {"query": "show my clients"}.`))
		return
	}

	start := time.Now()
	resp, err := s.engine.ProcessQuery(r.Context(), req.Query, rawTokenFrom(r.Context()), user)
	if err != nil {
		// Oracle transport failure during classification. Everything else
		// already degraded to a well-formed response inside the engine.
		slog.Error("query processing failed",
			"request", trace.RequestID(r.Context()), "user", user.UserID, "err", err)
		observeQuery(query.QueryTypeError, "unavailable", time.Since(start))

		msg := "I'm having trouble reaching the language service right now. Please try again in a moment."
		if errors.Is(err, nlp.ErrRateLimit) {
			msg = nlp.RateLimitMessage
		}
		writeJSON(w, http.StatusBadGateway, errorResponse(msg))
		return
	}

	outcome := "ok"
	if resp.QueryType == query.QueryTypeError {
		outcome = "refused"
	}
	observeQuery(resp.QueryType, outcome, time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports liveness and the build version.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// errorResponse builds the in-band error body used for transport failures.
func errorResponse(msg string) *query.QueryResponse {
	return &query.QueryResponse{
		NaturalLanguageResponse: msg,
		QueryType:               query.QueryTypeError,
		Results:                 []query.Row{},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// --- middleware ---------------------------------------------------------------

// requestIDMiddleware assigns a correlation ID to every request and echoes it
// back in the X-Request-Id header. An inbound X-Request-Id is honored so a
// calling frontend can stitch its own traces together.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if id == "" {
			id = trace.NewRequestID()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(trace.WithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			"request", trace.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
