package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/pasuper/supercron/pkg/config"
	"github.com/pasuper/supercron/pkg/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	ops services.Operations
	cfg *config.Config
}

func NewHandler(ops services.Operations, cfg *config.Config) *Handler {
	return &Handler{
		ops: ops,
		cfg: cfg,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		h.handleRoot(w, r)
	case "/health":
		h.handleHealth(w, r)
	case "/manual/update_price_label":
		h.handleManualJob(w, r, "update_price_label", h.ops.UpdatePriceLabels)
	case "/manual/update_qty_label":
		h.handleManualJob(w, r, "update_qty_label", h.ops.UpdateQuantityLabels)
	case "/manual/offline_inv":
		h.handleManualJob(w, r, "offline_inv", h.ops.ExportOffline)
	case "/manual/unknown_inv":
		h.handleManualJob(w, r, "unknown_inv", h.ops.UpdateUnknownLocations)
	case "/manual/diff_inv":
		h.handleManualJob(w, r, "diff_inv", h.ops.CheckInventoryDiffs)
	default:
		h.writeErrorResponse(w, http.StatusNotFound, "Not found", "The requested endpoint does not exist")
	}
}

// ResponseError represents an error response
type ResponseError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ResponseSuccess represents a success response
type ResponseSuccess struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *Handler) writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func (h *Handler) writeErrorResponse(w http.ResponseWriter, status int, message, details string) {
	response := ResponseError{
		Error:   message,
		Message: details,
	}
	h.writeJSONResponse(w, status, response)
}

func (h *Handler) writeSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	response := ResponseSuccess{
		Message: message,
		Data:    data,
	}
	h.writeJSONResponse(w, http.StatusOK, response)
}

// handleRoot reports basic service identity
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET requests are allowed")
		return
	}

	h.writeSuccessResponse(w, "SuperCron inventory service", map[string]string{
		"environment": string(h.cfg.AppEnv),
		"api_version": h.cfg.APIVersion,
	})
}

// handleHealth reports service status and the active configuration
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET requests are allowed")
		return
	}

	health := map[string]interface{}{
		"status":      "healthy",
		"environment": string(h.cfg.AppEnv),
		"api_version": h.cfg.APIVersion,
		"database": map[string]interface{}{
			"host":      h.cfg.DB.Host,
			"port":      h.cfg.DB.Port,
			"primary":   h.cfg.DB.DatabasePrimary,
			"secondary": h.cfg.DB.DatabaseSecondary,
		},
	}
	h.writeJSONResponse(w, http.StatusOK, health)
}

// handleManualJob triggers a scheduled job on demand. The job runs in the
// background so the trigger returns immediately.
func (h *Handler) handleManualJob(w http.ResponseWriter, r *http.Request, job string, run func(context.Context) error) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "Only GET and POST requests are allowed")
		return
	}

	go func() {
		if err := run(context.Background()); err != nil {
			log.WithError(err).WithField("job", job).Error("Manual job failed")
		}
	}()

	h.writeSuccessResponse(w, "Job started", map[string]string{"job": job})
}
