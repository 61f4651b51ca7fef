package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

// HealthCheck reports whether one backing store answers.
type HealthCheck func(ctx context.Context) error

const healthCheckTimeout = 2 * time.Second

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports readiness. Without checks the console only depends
// on process memory and is always ready; otherwise every store must answer
// within healthCheckTimeout or the response is 503.
func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		report := healthReport{Status: "ok"}
		code := http.StatusOK

		if len(names) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			report.Checks = make(map[string]string, len(names))
			for _, name := range names {
				if err := checks[name](ctx); err != nil {
					logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
					report.Checks[name] = "unavailable"
					report.Status = "degraded"
					code = http.StatusServiceUnavailable
					continue
				}
				report.Checks[name] = "ok"
			}
		}

		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			return
		}
		WriteJSON(w, code, report)
	}
}
