package hc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("database is down") }

	tests := []struct {
		name   string
		checks []Check
		status int
	}{
		{name: "no checks", status: http.StatusOK},
		{name: "healthy", checks: []Check{ok}, status: http.StatusOK},
		{name: "unhealthy", checks: []Check{ok, down}, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Handler("v1.0.0", tt.checks...).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hc", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, "v1.0.0", body["version"])
			if tt.status != http.StatusOK {
				assert.Equal(t, "database is down", body["error"])
			}
		})
	}
}
