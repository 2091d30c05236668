package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyops/tafboard/internal/config"
	"github.com/skyops/tafboard/internal/websocket"
	"github.com/skyops/tafboard/pkg/logger"
)

// Router assembles the HTTP surface: the JSON API, the websocket
// endpoint, and the Prometheus metrics handler.
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	config   *config.Config
	logger   *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(boardService BoardService, wsServer *websocket.Server, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:  NewHandler(boardService, log),
		wsServer: wsServer,
		config:   cfg,
		logger:   log.Named("api-router"),
	}
}

// Routes returns the configured route tree.
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(rt.corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/board", rt.handler.GetBoard)
		r.Get("/regions", rt.handler.GetRegions)
		r.Get("/airports/{code}/taf", rt.handler.GetAirportTAF)
		r.Get("/airports/{code}/notams", rt.handler.GetAirportNotams)
		r.Post("/refresh", rt.handler.TriggerRefresh)
		r.Get("/ws", rt.wsServer.HandleConnection)
	})

	r.Get("/health", rt.handler.GetHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// corsMiddleware applies the configured CORS allowed origins.
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && rt.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) originAllowed(origin string) bool {
	for _, allowed := range rt.config.Server.CORSAllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
