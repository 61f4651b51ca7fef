package httpx

import (
	"log/slog"
	"net/http"

	"github.com/safemesh/mesh-console/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Console      *service.Console
	CookieDomain string
	Metrics      http.Handler           // Prometheus exposition handler (optional)
	HealthChecks map[string]HealthCheck // Store checks for /healthz (optional)
	Logger       *slog.Logger           // Logger for HTTP errors (optional)
}

// NewRouter creates and configures the JSON API router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerAuthRoutes(mux, &AuthHandlers{Svc: services.Console, Logger: logger})
	registerConsoleRoutes(mux, &ConsoleHandlers{Svc: services.Console, Logger: logger})
	health := healthHandler(services.HealthChecks, logger)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}

	var handler http.Handler = mux
	handler = ClientContext(ClientContextConfig{CookieDomain: services.CookieDomain})(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/session", h.Session)
}

func registerConsoleRoutes(mux *http.ServeMux, h *ConsoleHandlers) {
	mux.HandleFunc("GET /api/stats", h.Stats)
	mux.HandleFunc("GET /api/mesh", h.MeshStatus)

	mux.HandleFunc("GET /api/alerts", h.ListAlerts)
	mux.HandleFunc("POST /api/alerts/{id}/acknowledge", h.AcknowledgeAlert)
	mux.HandleFunc("POST /api/alerts/{id}/resolve", h.ResolveAlert)

	mux.HandleFunc("GET /api/users", h.ListUsers)
	mux.HandleFunc("POST /api/users/{id}/toggle-status", h.ToggleUserStatus)

	mux.HandleFunc("GET /api/devices/{deviceID}/evidence", h.ListEvidence)
	mux.HandleFunc("GET /api/devices/{deviceID}/behavior", h.BehavioralScore)
	mux.HandleFunc("POST /api/evidence/{id}/preserve", h.PreserveEvidence)

	mux.HandleFunc("GET /api/audit", h.ListAuditLogs)
	mux.HandleFunc("GET /api/audit/export", h.ExportAuditLogs)

	mux.HandleFunc("POST /api/simulations", h.RunSimulation)
}
