// Package hc serves the liveness probe.
package hc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Handler answers 200 with the build version and uptime, or 503 when any
// check fails.
func Handler(version string, checks ...Check) http.Handler {
	t := time.Now()
	fn := func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]any{
			"version": version,
			"uptime":  time.Since(t).String(),
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["error"] = err.Error()
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	return http.HandlerFunc(fn)
}
