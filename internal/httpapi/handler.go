// Package httpapi exposes the tell pipeline over HTTP.
//
// Routes:
//
//   - POST /api/tell   — process a tell, returns {"answer": ...}
//   - POST /api/users  — create a user profile
//   - GET  /api/hello  — generated greeting, returns {"body": ...}
//   - GET  /healthz    — liveness probe
//   - GET  /readyz     — readiness probe
//   - GET  /metrics    — Prometheus metrics
//
// Core failures are translated into a generic 500 response; the API never
// leaks error detail beyond "succeeded" / "failed".
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tealbot/teal/internal/health"
	"github.com/tealbot/teal/internal/observe"
	"github.com/tealbot/teal/internal/tell"
	"github.com/tealbot/teal/internal/tellctx"
	"github.com/tealbot/teal/internal/users"
	"github.com/tealbot/teal/pkg/provider/reply"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	tells    *tell.Service
	users    *users.Service
	provider reply.Provider
	health   *health.Handler
	metrics  *observe.Metrics
}

// New creates a Handler. health may be nil, in which case the probe routes
// always report healthy.
func New(tells *tell.Service, usrs *users.Service, provider reply.Provider, hc *health.Handler, m *observe.Metrics) *Handler {
	if hc == nil {
		hc = health.New()
	}
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Handler{
		tells:    tells,
		users:    usrs,
		provider: provider,
		health:   hc,
		metrics:  m,
	}
}

// Router builds the chi router with all routes and middleware mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observe.Middleware(h.metrics))

	h.health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/tell", h.handleTell)
		api.Post("/users", h.handleCreateUser)
		api.Get("/hello", h.handleHello)
	})

	return r
}

// tellRequest is the POST /api/tell body. Context is optional; when present
// it replaces history-based context assembly for this call.
type tellRequest struct {
	Username string       `json:"username"`
	Tell     string       `json:"tell"`
	Context  *tellContext `json:"context,omitempty"`
}

type tellContext struct {
	Mood           string   `json:"mood"`
	Summary        string   `json:"summary"`
	SummaryHistory []string `json:"summary_history,omitempty"`
	TellHistory    []string `json:"tell_history,omitempty"`
}

func (h *Handler) handleTell(w http.ResponseWriter, r *http.Request) {
	var req tellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Tell = strings.TrimSpace(req.Tell)
	if req.Username == "" || req.Tell == "" {
		respondError(w, http.StatusBadRequest, "username and tell are required")
		return
	}

	var explicit *tellctx.Context
	if req.Context != nil {
		explicit = &tellctx.Context{
			Mood:           req.Context.Mood,
			Summary:        req.Context.Summary,
			SummaryHistory: req.Context.SummaryHistory,
			TellHistory:    req.Context.TellHistory,
		}
	}

	answer, err := h.tells.Tell(r.Context(), req.Username, req.Tell, explicit)
	if err != nil {
		slog.ErrorContext(r.Context(), "tell failed", "username", req.Username, "err", err)
		respondError(w, http.StatusInternalServerError, "tell failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// userRequest is the POST /api/users body.
type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	u, err := h.users.Create(r.Context(), req.Name, strings.TrimSpace(req.Email))
	if err != nil {
		slog.ErrorContext(r.Context(), "user creation failed", "name", req.Name, "err", err)
		respondError(w, http.StatusInternalServerError, "user creation failed")
		return
	}

	respondJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleHello(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "stranger"
	}

	prompt := fmt.Sprintf("Please say a very warm welcome and hello to me, where my name is %s", name)
	body, err := h.provider.Generate(r.Context(), prompt)
	if err != nil {
		slog.ErrorContext(r.Context(), "greeting failed", "name", name, "err", err)
		respondError(w, http.StatusInternalServerError, "greeting failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"body": body})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response failed", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
