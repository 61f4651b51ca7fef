package bootstrap

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/safemesh/mesh-console/config"
	httpx "github.com/safemesh/mesh-console/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the API server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	routerServices := httpx.RouterServices{
		Console:      cfg.Services.Console,
		CookieDomain: appCfg.HTTP.CookieDomain,
		HealthChecks: cfg.Services.HealthChecks,
		Logger:       logger,
	}
	if cfg.Services.Metrics != nil {
		routerServices.Metrics = cfg.Services.Metrics.Handler()
	}
	handler := httpx.NewRouter(routerServices)

	// Guard against empty addr to avoid listening on Go default
	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	readHeaderTimeout := appCfg.HTTP.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 5 * time.Second
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
