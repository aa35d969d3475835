package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/campuspass/outpass-server/internal/errors"
	"github.com/campuspass/outpass-server/internal/middleware"
	"github.com/campuspass/outpass-server/internal/service"
)

type ScanHandler struct {
	scanService *service.ScanService
}

func NewScanHandler(scanService *service.ScanService) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
	}
}

func (h *ScanHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Scan)

	return r
}

// POST /v1/scan
// The guard's facility, not anything inside the credential, decides where
// the scan is evaluated.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	guard := middleware.GetMember(r.Context())
	if guard == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

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

	result, err := h.scanService.ProcessScan(r.Context(), []byte(req.Credential), guard.FacilityID)
	if err != nil {
		log.Warn().Err(err).Str("guardId", guard.ID).Msg("scan rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
