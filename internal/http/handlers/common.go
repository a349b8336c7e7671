package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/proflow/proflow-back/internal/auth"
	"github.com/proflow/proflow-back/internal/http/middleware"
	"github.com/proflow/proflow-back/internal/service"
)

var errInvalidPayload = errors.New("invalid payload")

type API struct {
	itemsService  *service.ItemsService
	importService *service.ImportService
	sessions      *auth.Sessions
	feed          *FeedHub
	logger        *log.Logger
}

func NewAPI(
	itemsService *service.ItemsService,
	importService *service.ImportService,
	sessions *auth.Sessions,
	feed *FeedHub,
	logger *log.Logger,
) *API {
	return &API{
		itemsService:  itemsService,
		importService: importService,
		sessions:      sessions,
		feed:          feed,
		logger:        logger,
	}
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	writeJSON(w, statusCode, payload)
}

func decodeJSON(r *http.Request, value any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return errInvalidPayload
	}
	return nil
}
