package httpserver

import (
	"log"
	"net/http"

	"github.com/proflow/proflow-back/internal/auth"
	"github.com/proflow/proflow-back/internal/http/handlers"
	"github.com/proflow/proflow-back/internal/http/middleware"
)

type RouterDependencies struct {
	API            *handlers.API
	Sessions       *auth.Sessions
	Logger         *log.Logger
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", deps.API.Health)
	mux.HandleFunc("/v1/auth/anonymous", deps.API.AnonymousSignIn)
	mux.HandleFunc("/v1/items", deps.API.Items)
	mux.HandleFunc("/v1/items/bulk-delete", deps.API.BulkDelete)
	mux.HandleFunc("/v1/items/", deps.API.ItemByID)
	mux.HandleFunc("/v1/stats", deps.API.Stats)
	mux.HandleFunc("/v1/orders", deps.API.Orders)
	mux.HandleFunc("/v1/import", deps.API.Import)
	mux.HandleFunc("/v1/import/status", deps.API.ImportStatus)
	mux.HandleFunc("/v1/import/url", deps.API.ImportURL)
	mux.HandleFunc("/v1/feed", deps.API.Feed)

	handler := http.Handler(mux)
	handler = middleware.Auth(deps.Sessions)(handler)
	handler = middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst)(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.CORSOrigins,
	})(handler)
	handler = middleware.Trace(deps.Logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
