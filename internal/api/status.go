package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/merossd/internal/models"
)

type StatusReader interface {
	GetDeviceStatus(id string) (models.DeviceStatus, error)
	GetAllDeviceStatuses() ([]models.DeviceStatus, error)
}

// StatusHandler serves the diagnostic status of every device, or of a
// single device when the id query parameter is given.
type StatusHandler struct {
	logger *log.Logger
	repo   StatusReader
}

func NewStatusHandler(logger *log.Logger, repo StatusReader) *StatusHandler {
	return &StatusHandler{logger: logger, repo: repo}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		statuses, err := h.repo.GetAllDeviceStatuses()
		if err != nil {
			h.logger.Error("list device statuses", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, statuses)
		return
	}

	status, err := h.repo.GetDeviceStatus(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "device not found"})
		return
	}
	if err != nil {
		h.logger.Error("get device status", "device", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
