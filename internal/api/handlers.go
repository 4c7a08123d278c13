// Package api exposes HTTP handlers for the wake session service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/riserite/internal/domain"
	"example.com/riserite/internal/motivation"
	"example.com/riserite/internal/observability"
	"example.com/riserite/internal/persistence"
)

// TrackResolver turns a motivation track reference into a streamable link.
type TrackResolver interface {
	Resolve(ctx context.Context, ref string) (motivation.Link, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service       *domain.Service
	tracks        TrackResolver
	version       string
	exposeMetrics bool
}

// Option configures the Handler.
type Option func(*Handler)

// WithTrackResolver enables GET /motivation/url.
func WithTrackResolver(r TrackResolver) Option {
	return func(h *Handler) { h.tracks = r }
}

// WithVersion sets the version reported by GET /.
func WithVersion(v string) Option {
	return func(h *Handler) { h.version = v }
}

// WithMetricsEndpoint mounts the Prometheus handler at /metrics.
func WithMetricsEndpoint() Option {
	return func(h *Handler) { h.exposeMetrics = true }
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, opts ...Option) *Handler {
	h := &Handler{service: service, version: "1.0.0"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/health", health).Methods(http.MethodGet)
	r.HandleFunc("/session/wake", h.logSession).Methods(http.MethodPost)
	r.HandleFunc("/user/{userId}/streak", h.getStreak).Methods(http.MethodGet)
	r.HandleFunc("/user/{userId}/sessions", h.listSessions).Methods(http.MethodGet)
	r.HandleFunc("/user/{userId}/sessions/{date}", h.getSession).Methods(http.MethodGet)
	if h.tracks != nil {
		r.HandleFunc("/motivation/url", h.motivationURL).Methods(http.MethodGet)
	}
	if h.exposeMetrics {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	})
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "RiseRite API",
		"version": h.version,
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) logSession(w http.ResponseWriter, r *http.Request) {
	var req RecordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := h.service.RecordSession(r.Context(), req.toDomain()); err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", "failed to log session: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, RecordSessionResponse{
		Success: true,
		Message: "Session logged successfully",
	})
}

func (h *Handler) getStreak(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	result, err := h.service.GetStreak(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to calculate streak: "+err.Error())
		return
	}
	observability.ObserveStreak(result.Streak)

	writeJSON(w, http.StatusOK, StreakResponse{
		UserID:          result.UserID,
		Streak:          result.Streak,
		LastSessionDate: result.LastSessionDate,
	})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	record, err := h.service.GetSession(r.Context(), vars["userId"], vars["date"])
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "wake session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(*record))
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	limit := domain.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	records, next, err := h.service.ListSessions(r.Context(), userID, cursor, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCursor):
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		case errors.Is(err, domain.ErrInvalidSession):
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	items := make([]SessionView, 0, len(records))
	for _, record := range records {
		items = append(items, toSessionView(record))
	}
	writeJSON(w, http.StatusOK, ListSessionsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) motivationURL(w http.ResponseWriter, r *http.Request) {
	track := strings.TrimSpace(r.URL.Query().Get("track"))
	if track == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing track parameter")
		return
	}

	link, err := h.tracks.Resolve(r.Context(), track)
	if err != nil {
		if errors.Is(err, motivation.ErrInvalidTrack) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// RecordSessionRequest is the payload for POST /session/wake. Numeric and
// boolean fields are pointers so a missing field can be told apart from zero.
type RecordSessionRequest struct {
	UserID          string  `json:"userId"`
	Date            string  `json:"date"`
	PushupCount     *int    `json:"pushupCount"`
	BrushingSeconds *int    `json:"brushingSeconds"`
	WakeCompleted   *bool   `json:"wakeCompleted"`
	MotivationTrack *string `json:"motivationTrack"`
	Timestamp       *int64  `json:"timestamp"`
}

// Validate ensures request correctness.
func (r RecordSessionRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("userId is required")
	}
	if strings.TrimSpace(r.Date) == "" {
		return errors.New("date is required")
	}
	if r.PushupCount == nil {
		return errors.New("pushupCount is required")
	}
	if r.BrushingSeconds == nil {
		return errors.New("brushingSeconds is required")
	}
	if r.WakeCompleted == nil {
		return errors.New("wakeCompleted is required")
	}
	if r.Timestamp == nil {
		return errors.New("timestamp is required")
	}
	return nil
}

func (r RecordSessionRequest) toDomain() domain.WakeSession {
	session := domain.WakeSession{
		UserID:          r.UserID,
		Date:            r.Date,
		PushupCount:     *r.PushupCount,
		BrushingSeconds: *r.BrushingSeconds,
		WakeCompleted:   *r.WakeCompleted,
		Timestamp:       *r.Timestamp,
	}
	if r.MotivationTrack != nil {
		session.MotivationTrack = *r.MotivationTrack
	}
	return session
}

// RecordSessionResponse acknowledges a stored session.
type RecordSessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StreakResponse is returned by GET /user/{userId}/streak.
type StreakResponse struct {
	UserID          string  `json:"userId"`
	Streak          int     `json:"streak"`
	LastSessionDate *string `json:"lastSessionDate,omitempty"`
}

// SessionView is a stored session as returned to clients.
type SessionView struct {
	UserID          string `json:"userId"`
	Date            string `json:"date"`
	PushupCount     int    `json:"pushupCount"`
	BrushingSeconds int    `json:"brushingSeconds"`
	WakeCompleted   int    `json:"wakeCompleted"`
	MotivationTrack string `json:"motivationTrack,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}

// ListSessionsResponse packages a history page.
type ListSessionsResponse struct {
	Items      []SessionView `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

func toSessionView(r domain.SessionRecord) SessionView {
	return SessionView{
		UserID:          r.UserID,
		Date:            r.Date,
		PushupCount:     r.PushupCount,
		BrushingSeconds: r.BrushingSeconds,
		WakeCompleted:   int(r.WakeCompleted),
		MotivationTrack: r.MotivationTrack,
		Timestamp:       r.Timestamp,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
