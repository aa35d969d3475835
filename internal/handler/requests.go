package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/campuspass/outpass-server/internal/errors"
	"github.com/campuspass/outpass-server/internal/middleware"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/service"
	"github.com/campuspass/outpass-server/internal/util"
)

type RequestHandler struct {
	lifecycleService *service.LifecycleService
	submitLimit      func(http.Handler) http.Handler
}

// NewRequestHandler wires the request lifecycle routes. submitLimit, when
// non-nil, rate-limits submissions without touching the read routes.
func NewRequestHandler(lifecycleService *service.LifecycleService, submitLimit func(http.Handler) http.Handler) *RequestHandler {
	return &RequestHandler{
		lifecycleService: lifecycleService,
		submitLimit:      submitLimit,
	}
}

func (h *RequestHandler) Routes() chi.Router {
	r := chi.NewRouter()

	if h.submitLimit != nil {
		r.With(h.submitLimit).Post("/", h.Submit)
	} else {
		r.Post("/", h.Submit)
	}
	r.Get("/active", h.Active)
	r.With(middleware.RequireRole(model.RoleApprover)).Post("/{requestID}/decision", h.Decide)
	r.Post("/{requestID}/location", h.RecordLocation)

	return r
}

// POST /v1/requests
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	member := middleware.GetMember(r.Context())
	if member == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req struct {
		Description string    `json:"description"`
		Destination string    `json:"destination"`
		WindowStart time.Time `json:"windowStart"`
		WindowEnd   time.Time `json:"windowEnd"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.lifecycleService.Submit(r.Context(), service.SubmitParams{
		PersonID:    member.ID,
		Description: req.Description,
		Destination: req.Destination,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
	})
	if err != nil {
		log.Warn().Err(err).Str("personId", member.ID).Msg("submit rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GET /v1/requests/active
func (h *RequestHandler) Active(w http.ResponseWriter, r *http.Request) {
	member := middleware.GetMember(r.Context())
	if member == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	view, err := h.lifecycleService.ActiveView(r.Context(), member.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// POST /v1/requests/{requestID}/decision
func (h *RequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	member := middleware.GetMember(r.Context())
	if member == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if !util.IsValidUUID(requestID) {
		writeError(w, apperrors.InvalidInput("requestId", "must be a UUID"))
		return
	}

	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.lifecycleService.Decide(r.Context(), requestID, model.DecisionOutcome(req.Outcome), member.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /v1/requests/{requestID}/location
func (h *RequestHandler) RecordLocation(w http.ResponseWriter, r *http.Request) {
	member := middleware.GetMember(r.Context())
	if member == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if !util.IsValidUUID(requestID) {
		writeError(w, apperrors.InvalidInput("requestId", "must be a UUID"))
		return
	}

	var req struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.lifecycleService.RecordReturnLocation(r.Context(), requestID, member.ID, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
