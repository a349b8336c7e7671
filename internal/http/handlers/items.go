package handlers

import (
	"net/http"
	"strings"

	"github.com/proflow/proflow-back/internal/domain"
	"github.com/proflow/proflow-back/internal/repository"
)

type createItemRequest struct {
	Title     string `json:"title"`
	Client    string `json:"client"`
	TaskName  string `json:"task_name"`
	Stage     string `json:"stage"`
	StartDate string `json:"start_date"`
	Duration  int    `json:"duration"`
	Priority  string `json:"priority"`
	Progress  int    `json:"progress"`
}

type updateItemRequest struct {
	Title     *string `json:"title,omitempty"`
	Client    *string `json:"client,omitempty"`
	TaskName  *string `json:"task_name,omitempty"`
	Stage     *string `json:"stage,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	Duration  *int    `json:"duration,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	Progress  *int    `json:"progress,omitempty"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// Items serves GET /v1/items (filtered listing) and POST /v1/items (create).
func (api *API) Items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.listItems(w, r)
	case http.MethodPost:
		api.createItem(w, r)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (api *API) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := api.itemsService.List(r.Context(), filterFromQuery(r))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "store_error", "failed to load items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (api *API) createItem(w http.ResponseWriter, r *http.Request) {
	var request createItemRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}

	item, err := api.itemsService.Create(r.Context(), domain.WorkItem{
		Title:     strings.TrimSpace(request.Title),
		Client:    strings.TrimSpace(request.Client),
		TaskName:  strings.TrimSpace(request.TaskName),
		Stage:     domain.Stage(request.Stage),
		StartDate: strings.TrimSpace(request.StartDate),
		Duration:  request.Duration,
		Priority:  strings.TrimSpace(request.Priority),
		Progress:  request.Progress,
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ItemByID serves PATCH and DELETE on /v1/items/{id}.
func (api *API) ItemByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/items/"))
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "item id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		api.updateItem(w, r, id)
	case http.MethodDelete:
		api.deleteItem(w, r, id)
	case http.MethodGet:
		api.getItem(w, r, id)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (api *API) getItem(w http.ResponseWriter, r *http.Request, id string) {
	item, err := api.itemsService.Get(r.Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			writeError(w, r, http.StatusNotFound, "not_found", "item not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "store_error", "failed to load item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (api *API) updateItem(w http.ResponseWriter, r *http.Request, id string) {
	var request updateItemRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}

	update := repository.ItemUpdate{
		Title:     request.Title,
		Client:    request.Client,
		TaskName:  request.TaskName,
		StartDate: request.StartDate,
		Duration:  request.Duration,
		Priority:  request.Priority,
		Progress:  request.Progress,
	}
	if request.Stage != nil {
		stage := domain.Stage(*request.Stage)
		update.Stage = &stage
	}

	item, err := api.itemsService.Update(r.Context(), id, update)
	if err != nil {
		if err == repository.ErrNotFound {
			writeError(w, r, http.StatusNotFound, "not_found", "item not found")
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (api *API) deleteItem(w http.ResponseWriter, r *http.Request, id string) {
	if err := api.itemsService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrNotFound {
			writeError(w, r, http.StatusNotFound, "not_found", "item not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "store_error", "failed to delete item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// BulkDelete removes the selected items in one call.
func (api *API) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var request bulkDeleteRequest
	if err := decodeJSON(r, &request); err != nil || len(request.IDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "ids are required")
		return
	}

	deleted, err := api.itemsService.BulkDelete(r.Context(), request.IDs)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "store_error", "failed to delete items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// Stats serves the dashboard counters.
func (api *API) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	stats, err := api.itemsService.Stats(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "store_error", "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Orders serves the grouped-order rollup used by the Gantt view.
func (api *API) Orders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	orders, err := api.itemsService.Orders(r.Context(), filterFromQuery(r))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "store_error", "failed to group orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "total": len(orders)})
}

func filterFromQuery(r *http.Request) domain.ListFilter {
	query := r.URL.Query()
	smart := domain.SmartFilter(query.Get("smart"))
	switch smart {
	case domain.SmartFilterOverdue, domain.SmartFilterActive:
	default:
		smart = domain.SmartFilterAll
	}
	return domain.ListFilter{
		Stage:  query.Get("stage"),
		Search: query.Get("q"),
		Smart:  smart,
	}
}
