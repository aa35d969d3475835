package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/campuspass/outpass-server/internal/errors"
	"github.com/campuspass/outpass-server/internal/middleware"
	"github.com/campuspass/outpass-server/internal/model"
	"github.com/campuspass/outpass-server/internal/qr"
	"github.com/campuspass/outpass-server/internal/service"
)

type SessionHandler struct {
	registryService *service.RegistryService
}

func NewSessionHandler(registryService *service.RegistryService) *SessionHandler {
	return &SessionHandler{
		registryService: registryService,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.RequireRole(model.RoleApprover)).Post("/", h.Mint)
	r.With(middleware.RequireRole(model.RoleApprover)).Post("/{sessionID}/rotate", h.Rotate)
	r.Post("/join", h.Join)

	return r
}

func mintResponse(result *service.MintResult) map[string]any {
	return map[string]any{
		"sessionId":  result.Credential.SessionID,
		"facilityId": result.Credential.FacilityID,
		"issuedAt":   result.Credential.IssuedAt,
		"expiresAt":  result.Credential.ExpiresAt,
		"credential": string(result.Encoded),
	}
}

// POST /v1/sessions
func (h *SessionHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID  string `json:"sessionId"`
		FacilityID string `json:"facilityId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("sessionId"))
		return
	}
	if req.FacilityID == "" {
		writeError(w, apperrors.MissingRequired("facilityId"))
		return
	}

	result, err := h.registryService.Mint(r.Context(), req.FacilityID, req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mintResponse(result))
}

// POST /v1/sessions/{sessionID}/rotate
func (h *SessionHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.registryService.Rotate(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mintResponse(result))
}

// POST /v1/sessions/join
// Validates a scanned session-join credential against the registry.
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Credential == "" {
		writeError(w, apperrors.MissingRequired("credential"))
		return
	}

	payload, err := qr.Decode([]byte(req.Credential))
	if err != nil {
		writeError(w, err)
		return
	}

	join, ok := payload.(qr.SessionJoin)
	if !ok {
		writeError(w, apperrors.InvalidInput("credential", "not a session-join credential"))
		return
	}

	status, err := h.registryService.Validate(r.Context(), join)
	if err != nil {
		writeError(w, err)
		return
	}
	if status != service.CredentialValid {
		writeError(w, service.StatusError(status))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"sessionId":  join.SessionID,
		"facilityId": join.FacilityID,
	})
}
