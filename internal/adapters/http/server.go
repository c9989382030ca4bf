package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/aretw0/patchbay/pkg/command"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
	"github.com/aretw0/patchbay/pkg/session"
)

// Server exposes a session manager's desks over REST and SSE.
type Server struct {
	manager *session.Manager
	proc    *command.Processor
	streams *StreamManager
	logger  *slog.Logger

	apiVersion string
	specJSON   []byte

	mu     sync.Mutex
	relays map[string]*relay
}

// relay is the per-desk observer feeding the stream manager. It lives
// as long as at least one SSE client watches the desk.
type relay struct {
	sub  *patchbay.Subscription
	refs int
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server's logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProcessor swaps the command processor, e.g. one carrying extra
// commands or a latency observer.
func WithProcessor(proc *command.Processor) Option {
	return func(s *Server) {
		if proc != nil {
			s.proc = proc
		}
	}
}

// NewHandler builds the REST handler for a session manager.
func NewHandler(manager *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		manager: manager,
		proc:    command.NewProcessor(),
		logger:  logging.NewNop(),
		relays:  make(map[string]*relay),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)

	doc, err := loadSpec()
	if err != nil {
		return nil, err
	}
	if doc.Info != nil {
		s.apiVersion = doc.Info.Version
	}
	s.specJSON, err = doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode openapi spec: %w", err)
	}

	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(specYAML)
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(s.specJSON)
	})
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(docsHTML))
	})

	r.Route("/desks", func(r chi.Router) {
		r.Get("/", s.handleListDesks)
		r.Post("/", s.handleCreateDesk)
		r.Route("/{deskID}", func(r chi.Router) {
			r.Get("/", s.handleGetDesk)
			r.Delete("/", s.handleDeleteDesk)
			r.Put("/state", s.handlePutState)
			r.Post("/commands", s.handleCommand)
			r.Get("/routes", s.handleRoutes)
			r.Get("/graph", s.handleGraph)
			r.Get("/events", s.handleEvents)
			r.Post("/save", s.handleSaveDesk)
			r.Post("/load", s.handleLoadDesk)
		})
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const docsHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Patchbay API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func deskID(r *http.Request) string {
	return chi.URLParam(r, "deskID")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":        "patchbay-http",
		"version":    strings.TrimSpace(patchbay.Version),
		"apiVersion": s.apiVersion,
	})
}

func (s *Server) handleListDesks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"desks": s.manager.List()})
}

type createDeskRequest struct {
	ID      string `json:"id"`
	Inputs  int    `json:"inputs"`
	Outputs int    `json:"outputs"`
}

func (s *Server) handleCreateDesk(w http.ResponseWriter, r *http.Request) {
	var body createDeskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	id, err := s.manager.Create(r.Context(), body.ID, body.Inputs, body.Outputs)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("desk created", "desk_id", id, "inputs", body.Inputs, "outputs", body.Outputs)

	var snap *domain.Snapshot
	if err := s.manager.WithDesk(r.Context(), id, func(_ context.Context, desk *patchbay.Matrix) error {
		snap = desk.State()
		return nil
	}); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetDesk(w http.ResponseWriter, r *http.Request) {
	var snap *domain.Snapshot
	err := s.manager.WithDesk(r.Context(), deskID(r), func(_ context.Context, desk *patchbay.Matrix) error {
		snap = desk.State()
		return nil
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteDesk(w http.ResponseWriter, r *http.Request) {
	id := deskID(r)
	if err := s.manager.Delete(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.dropRelay(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var applied *domain.Snapshot
	err := s.manager.WithDesk(r.Context(), deskID(r), func(_ context.Context, desk *patchbay.Matrix) error {
		if err := schema.Validate(&snap, desk.NumInputs(), desk.NumOutputs()); err != nil {
			return err
		}
		desk.SetState(&snap)
		applied = desk.State()
		return nil
	})
	if err != nil {
		var valErr *schema.ValidationError
		var aggErr *schema.AggregateError
		if errors.As(err, &valErr) || errors.As(err, &aggErr) {
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, applied)
}

// handleCommand runs one command envelope against the desk. The command
// layer reports its own failures inside the envelope, so the HTTP status
// stays 200 unless the desk itself is missing.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("read request body: %w", err))
		return
	}

	var out []byte
	err = s.manager.WithDesk(r.Context(), deskID(r), func(ctx context.Context, desk *patchbay.Matrix) error {
		out = s.proc.Process(ctx, desk, raw)
		return nil
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	var routes []domain.Route
	err := s.manager.WithDesk(r.Context(), deskID(r), func(_ context.Context, desk *patchbay.Matrix) error {
		routes = desk.ActiveRoutes()
		return nil
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if routes == nil {
		routes = []domain.Route{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var diagram string
	err := s.manager.WithDesk(r.Context(), deskID(r), func(_ context.Context, desk *patchbay.Matrix) error {
		diagram = graph.GenerateMermaid(desk.State(), desk.ActiveRoutes())
		return nil
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, diagram)
}

func (s *Server) handleSaveDesk(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Save(r.Context(), deskID(r)); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadDesk(w http.ResponseWriter, r *http.Request) {
	id := deskID(r)
	if err := s.manager.Load(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var snap *domain.Snapshot
	if err := s.manager.WithDesk(r.Context(), id, func(_ context.Context, desk *patchbay.Matrix) error {
		snap = desk.State()
		return nil
	}); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// handleEvents streams desk change events as SSE. The optional ?kinds=
// query keeps only the named event kinds.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	id := deskID(r)
	if err := s.ensureRelay(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	defer s.releaseRelay(id)

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var kinds map[string]bool
	if raw := r.URL.Query().Get("kinds"); raw != "" {
		kinds = make(map[string]bool)
		for _, k := range strings.Split(raw, ",") {
			kinds[strings.TrimSpace(k)] = true
		}
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected", "desk_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if kinds != nil {
				var e domain.Event
				if err := json.Unmarshal([]byte(msg), &e); err == nil && !kinds[string(e.Kind)] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// ensureRelay attaches the desk observer that feeds the stream manager,
// or bumps its refcount when one is already running.
func (s *Server) ensureRelay(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rl, ok := s.relays[id]; ok {
		rl.refs++
		return nil
	}

	var sub *patchbay.Subscription
	err := s.manager.WithDesk(ctx, id, func(_ context.Context, desk *patchbay.Matrix) error {
		sub = desk.OnChange(func(e domain.Event) {
			payload, err := json.Marshal(e)
			if err != nil {
				s.logger.Warn("failed to encode event", "desk_id", id, "err", err)
				return
			}
			s.streams.Broadcast(id, string(payload))
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.relays[id] = &relay{sub: sub, refs: 1}
	return nil
}

func (s *Server) releaseRelay(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rl, ok := s.relays[id]
	if !ok {
		return
	}
	rl.refs--
	if rl.refs == 0 {
		rl.sub.Close()
		delete(s.relays, id)
	}
}

// dropRelay closes a desk's relay regardless of refcount, for when the
// desk itself goes away.
func (s *Server) dropRelay(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rl, ok := s.relays[id]; ok {
		rl.sub.Close()
		delete(s.relays, id)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDeskNotFound), errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDeskExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidDimensions):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
