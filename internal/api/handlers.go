// Package api exposes the workout tracker over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/auth"
	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/geo"
	"github.com/zahid-01/Running-Tracker/internal/tracker"
	"github.com/zahid-01/Running-Tracker/internal/view"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler coordinates HTTP requests with the tracker controller. Requests are
// applied to the controller one at a time.
type Handler struct {
	mu           sync.Mutex
	controller   *tracker.Controller
	board        *view.Board
	logger       *zap.Logger
	authRequired bool
}

// Option configures optional behaviour for the Handler.
type Option func(*Handler)

// WithLogger overrides the handler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithScopeChecks makes every /v1 route require bearer claims carrying the
// workouts:read or workouts:write scope.
func WithScopeChecks() Option {
	return func(h *Handler) {
		h.authRequired = true
	}
}

// NewHandler builds a Handler.
func NewHandler(controller *tracker.Controller, board *view.Board, opts ...Option) *Handler {
	h := &Handler{controller: controller, board: board, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/position", h.position)
	mux.HandleFunc("/v1/position/error", h.positionError)
	mux.HandleFunc("/v1/map/click", h.mapClick)
	mux.HandleFunc("/v1/form/type", h.formType)
	mux.HandleFunc("/v1/form/cancel", h.formCancel)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/view", h.viewSnapshot)
	mux.HandleFunc("/v1/view/stream", h.viewStream)
	mux.HandleFunc("/v1/route", h.route)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) position(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost, auth.ScopeWorkoutsWrite) {
		return
	}
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	coords, ok := req.coordinates()
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", "lat and lng are required and must be in range")
		return
	}

	h.mu.Lock()
	h.controller.PositionReady(r.Context(), coords)
	resp := h.stateLocked()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) positionError(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost, auth.ScopeWorkoutsWrite) {
		return
	}
	var req PositionErrorRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
	}
	reason := req.Message
	if reason == "" {
		reason = "position unavailable"
	}

	h.mu.Lock()
	h.controller.PositionFailed(r.Context(), errors.New(reason))
	resp := h.stateLocked()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) mapClick(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost, auth.ScopeWorkoutsWrite) {
		return
	}
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	coords, ok := req.coordinates()
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", "lat and lng are required and must be in range")
		return
	}

	h.mu.Lock()
	err := h.controller.MapClicked(coords)
	resp := h.stateLocked()
	h.mu.Unlock()

	if errors.Is(err, tracker.ErrMapUnavailable) {
		writeError(w, http.StatusConflict, "map_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) formType(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost, auth.ScopeWorkoutsWrite) {
		return
	}
	var req TypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	h.mu.Lock()
	err := h.controller.TypeChanged(req.Type)
	h.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.board.Snapshot(false).Form)
}

func (h *Handler) formCancel(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost, auth.ScopeWorkoutsWrite) {
		return
	}
	h.mu.Lock()
	h.controller.Cancel()
	resp := h.stateLocked()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if h.authorize(w, r, auth.ScopeWorkoutsWrite) {
			h.submitWorkout(w, r)
		}
	case http.MethodGet:
		if h.authorize(w, r, auth.ScopeWorkoutsRead) {
			h.listWorkouts(w, r)
		}
	case http.MethodDelete:
		if h.authorize(w, r, auth.ScopeWorkoutsWrite) {
			h.resetWorkouts(w, r)
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	id, action, found := strings.Cut(rest, "/")
	if id == "" || !found || action != "select" {
		writeError(w, http.StatusNotFound, "not_found", "unknown workout route")
		return
	}
	if !h.allow(w, r, http.MethodPost, auth.ScopeWorkoutsWrite) {
		return
	}

	h.mu.Lock()
	workout, err := h.controller.Select(r.Context(), id)
	h.mu.Unlock()

	if err != nil {
		if errors.Is(err, tracker.ErrWorkoutNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutView(workout))
}

func (h *Handler) submitWorkout(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFormInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	h.mu.Lock()
	workout, err := h.controller.Submit(r.Context(), in)
	h.mu.Unlock()

	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toWorkoutView(workout))
	case errors.Is(err, tracker.ErrNoPendingLocation):
		writeError(w, http.StatusConflict, "no_pending_location", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxPageSize {
				parsed = maxPageSize
			}
			limit = parsed
		}
	}

	cursor, err := decodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	h.mu.Lock()
	all := h.controller.Workouts()
	h.mu.Unlock()

	start := 0
	if cursor != nil {
		start = -1
		for i, workout := range all {
			if workout.ID == cursor.ID && workout.CreatedAt.Equal(cursor.CreatedAt) {
				start = i + 1
				break
			}
		}
		if start < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
			return
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	resp := ListWorkoutsResponse{Items: make([]WorkoutView, 0, end-start)}
	for _, workout := range all[start:end] {
		resp.Items = append(resp.Items, toWorkoutView(workout))
	}
	if end < len(all) {
		last := all[end-1]
		resp.NextCursor = encodeCursor(&listCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) resetWorkouts(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := h.controller.Reset(r.Context())
	h.mu.Unlock()

	if err != nil {
		h.logger.Error("reset failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) viewSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet, auth.ScopeWorkoutsRead) {
		return
	}
	drain := r.URL.Query().Get("drain_alerts") != "false"
	writeJSON(w, http.StatusOK, h.board.Snapshot(drain))
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet, auth.ScopeWorkoutsRead) {
		return
	}
	h.mu.Lock()
	all := h.controller.Workouts()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, geo.Route(all))
}

func (h *Handler) stateLocked() StateResponse {
	return StateResponse{
		State:    h.controller.State().String(),
		MapReady: h.controller.MapReady(),
	}
}

// allow checks the method and scope for single-method routes.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, method, scope string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return false
	}
	return h.authorize(w, r, scope)
}

// authorize checks the runner's token scopes when scope checks are enabled.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, scope string) bool {
	if !h.authRequired {
		return true
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if claims.Allows(scope) {
		return true
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
	return false
}

func decodeFormInput(r *http.Request) (domain.FormInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return domain.FormInput{}, err
		}
		return domain.FormInput{
			Type:          r.PostForm.Get("type"),
			Distance:      formValue(r.PostForm.Get("distance")),
			Duration:      formValue(r.PostForm.Get("duration")),
			Cadence:       formValue(r.PostForm.Get("cadence")),
			ElevationGain: formValue(r.PostForm.Get("elevationGain")),
		}, nil
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.FormInput{}, err
	}
	return req.formInput(), nil
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
