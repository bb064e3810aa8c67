package httpapi

import (
	"net/http"

	"github.com/badenpong/cloud-relay/internal/auditlog"
	"github.com/badenpong/cloud-relay/internal/config"
	"github.com/badenpong/cloud-relay/internal/hub"
	"github.com/badenpong/cloud-relay/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// SetupRoutes builds the full HTTP surface: controller pages, the relay
// socket endpoint and the audit log views.
func SetupRoutes(h *hub.Hub, cfg config.Config, logs *auditlog.Log, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"X-Log-Token"},
	}))

	r.Get("/", ControllerPage(cfg.StaticDir))
	r.Get("/controller", ControllerPage(cfg.StaticDir))
	r.Get("/r/{room}", ControllerPage(cfg.StaticDir))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, cfg.DefaultRoom, log))

	r.Group(func(r chi.Router) {
		r.Use(RequireToken(cfg.LogToken))
		r.Get("/logs", LogsPage(logs, log))
		r.Get("/logs.json", LogsJSON(logs))
	})

	r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	return r
}
