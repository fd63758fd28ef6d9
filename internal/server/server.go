package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Divas-Gupta30/rag-agent/internal/graph"
	"github.com/Divas-Gupta30/rag-agent/internal/metrics"
	"github.com/Divas-Gupta30/rag-agent/internal/storage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Runner executes one orchestrator run. *graph.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, history []graph.Turn) (*graph.State, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type DocumentCounter interface {
	Count(ctx context.Context) (int64, error)
}

type Server struct {
	runner  Runner
	history storage.History
	db      Pinger
	cache   Pinger
	docs    DocumentCounter
	locks   *keyedMutex
	router  *mux.Router
}

type Option func(*Server)

// WithDatabase reports the vector store in /health. A failing ping makes the
// service unhealthy.
func WithDatabase(p Pinger) Option { return func(s *Server) { s.db = p } }

// WithCache reports the retrieval cache in /health. A failing ping only
// degrades the service.
func WithCache(p Pinger) Option { return func(s *Server) { s.cache = p } }

func WithDocumentCounter(c DocumentCounter) Option { return func(s *Server) { s.docs = c } }

func New(runner Runner, history storage.History, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		history: history,
		locks:   newKeyedMutex(),
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(instrument)

	s.router.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	s.router.HandleFunc("/sessions/{id}/messages", s.handlePostMessage).Methods("POST")
	s.router.HandleFunc("/sessions/{id}/messages", s.handleGetMessages).Methods("GET")
	s.router.HandleFunc("/sessions/{id}", s.handleClearSession).Methods("DELETE")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("RAG agent server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed to start")
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	log.Info().Msg("Server exited")
	return nil
}

// TrackDocuments refreshes the indexed-documents gauge until ctx is done.
func (s *Server) TrackDocuments(ctx context.Context, every time.Duration) {
	if s.docs == nil {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if n, err := s.docs.Count(ctx); err == nil {
			metrics.DocumentsIndexed.Set(float64(n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type createSessionResponse struct {
	ID string `json:"id"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type messageView struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	if err := s.history.Create(r.Context(), id); err != nil {
		log.Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: id})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	history, err := s.history.Load(r.Context(), id)
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("load history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	history = append(history, graph.UserTurn(req.Content))
	state, err := s.runner.Run(r.Context(), history)
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("agent run failed")
		writeError(w, http.StatusInternalServerError, "agent run failed")
		return
	}

	if err := s.history.Replace(r.Context(), id, state.Transcript()); err != nil {
		log.Error().Err(err).Str("session", id).Msg("save history")
		writeError(w, http.StatusInternalServerError, "failed to save history")
		return
	}
	writeJSON(w, http.StatusOK, graph.FinalAnswer(state))
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	turns, err := s.history.Load(r.Context(), id)
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("load history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	out := make([]messageView, len(turns))
	for i, t := range turns {
		out[i] = messageView{Role: t.Role.String(), Content: t.Content}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.history.Clear(r.Context(), id)
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("clear history")
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	Documents *int64 `json:"documents,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:   "healthy",
		Database: probe(ctx, s.db),
		Redis:    probe(ctx, s.cache),
	}
	if resp.Redis == "unavailable" {
		resp.Status = "degraded"
	}
	if s.docs != nil {
		if n, err := s.docs.Count(ctx); err == nil {
			resp.Documents = &n
		}
	}

	code := http.StatusOK
	if resp.Database == "unavailable" {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request counts and latency by route template so session
// ids do not blow up label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
