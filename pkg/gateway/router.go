package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/gatekit/pkg/entitlement"
	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/requestid"
	"github.com/dmitrymomot/gatekit/pkg/session"
	"github.com/dmitrymomot/gatekit/pkg/tier"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

// SessionResolver finds the session of a request.
type SessionResolver func(r *http.Request) (*session.Session, error)

// FixedSession serves every request from s. Used by gatectl serve, which
// runs for a single account.
func FixedSession(s *session.Session) SessionResolver {
	return func(*http.Request) (*session.Session, error) {
		if s == nil {
			return nil, session.ErrNoSession
		}
		return s, nil
	}
}

// ContextSession reads the session an upstream middleware stored with session.WithSession.
func ContextSession(r *http.Request) (*session.Session, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil, session.ErrNoSession
	}
	return s, nil
}

// Options configures Router.
type Options struct {
	// Sessions resolves the session of each request. Defaults to ContextSession.
	Sessions SessionResolver
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
	// Ready checks run by /readyz.
	Ready  []func(context.Context) error
	Logger *slog.Logger
}

// Router returns the entitlement HTTP API.
//
//	GET  /entitlements
//	GET  /entitlements/features/{feature}
//	GET  /entitlements/quotas/{field}?service_id=&resource=
//	GET  /subscription
//	POST /subscription/refresh
//	POST /subscription/activate
//	GET  /healthz, /readyz, /metrics
func Router(opts Options) chi.Router {
	h := &handlers{
		sessions: opts.Sessions,
		log:      logger.OrNop(opts.Logger),
	}
	if h.sessions == nil {
		h.sessions = ContextSession
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.Recoverer)

	r.Get("/healthz", h.liveness)
	r.Get("/readyz", h.readiness(opts.Ready))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.withSession)

		r.Route("/entitlements", func(r chi.Router) {
			r.Get("/", h.summary)
			r.Get("/features/{feature}", h.feature)
			r.Get("/quotas/{field}", h.quota)
		})
		r.Route("/subscription", func(r chi.Router) {
			r.Get("/", h.subscription)
			r.Post("/refresh", h.refresh)
			r.Post("/activate", h.activate)
		})
	})

	return r
}

type handlers struct {
	sessions SessionResolver
	log      *slog.Logger
}

func (h *handlers) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := h.sessions(r)
		if err != nil || s == nil {
			writeError(w, http.StatusUnauthorized, "no_session", "no active session")
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
	})
}

func current(r *http.Request) *session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Entitlement.Summary(r.Context()))
}

func (h *handlers) feature(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "feature")
	f, err := entitlement.ParseFeature(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_feature", err.Error()+": "+name)
		return
	}
	writeJSON(w, http.StatusOK, current(r).Entitlement.Check(r.Context(), f))
}

func (h *handlers) quota(w http.ResponseWriter, r *http.Request) {
	field, err := tier.ParseQuotaField(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_quota", err.Error())
		return
	}

	key := r.URL.Query().Get("resource")
	if key == "" {
		switch field {
		case tier.QuotaMaxServices:
			key = usage.ServicesKey()
		case tier.QuotaMaxTeamMembers:
			key = usage.TeamMembersKey()
		case tier.QuotaMaxPhotosPerService:
			serviceID := r.URL.Query().Get("service_id")
			if serviceID == "" {
				writeError(w, http.StatusBadRequest, "missing_service_id", "service_id is required for "+string(field))
				return
			}
			key = usage.PhotosKey(serviceID)
		}
	}

	writeJSON(w, http.StatusOK, current(r).Entitlement.CheckQuota(r.Context(), field, key, ""))
}

func (h *handlers) subscription(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Store.Get(r.Context()))
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Store.Refresh(r.Context()))
}

type activateRequest struct {
	SessionID string `json:"session_id"`
}

type activateResponse struct {
	Activated bool `json:"activated"`
}

func (h *handlers) activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
		return
	}

	ok := current(r).Activation.ActivateAfterPayment(r.Context(), req.SessionID)
	writeJSON(w, http.StatusOK, activateResponse{Activated: ok})
}

func (h *handlers) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *handlers) readiness(checks []func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				h.log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component("gateway"),
					logger.Error(err),
				)
				writeError(w, http.StatusServiceUnavailable, "not_ready", "a dependency is unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
