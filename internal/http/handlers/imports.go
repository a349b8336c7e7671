package handlers

import (
	"net/http"

	"github.com/proflow/proflow-back/internal/service"
)

type importRequest struct {
	URL string `json:"url"`
}

// Import triggers one pipeline run and returns its final status. Pipeline
// failures come back as a failed status with a message, not an HTTP error;
// only a concurrent run or a missing URL rejects the request itself.
func (api *API) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var request importRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}

	status, err := api.importService.Run(r.Context(), request.URL)
	if err != nil {
		if err == service.ErrImportRunning {
			writeError(w, r, http.StatusConflict, "import_running", err.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ImportStatus reports the state of the current or last pipeline run.
func (api *API) ImportStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, api.importService.Status())
}

// ImportURL reads (GET) or unlinks (DELETE) the persisted sheet URL.
func (api *API) ImportURL(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		url, err := api.importService.SavedURL(r.Context())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "store_error", "failed to load saved url")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": url})
	case http.MethodDelete:
		if err := api.importService.ClearSavedURL(r.Context()); err != nil {
			writeError(w, r, http.StatusInternalServerError, "store_error", "failed to clear saved url")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
