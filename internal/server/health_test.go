package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dynasty-bot/internal/config"

	"github.com/rs/zerolog"
)

func TestHealthHandler(t *testing.T) {
	h := NewHealthServer(&config.Config{HealthPort: "0"}, zerolog.Nop())
	h.SetReady(func() bool { return false })

	tests := map[string]struct {
		path   string
		ready  bool
		status int
		body   string
	}{
		"root":      {path: "/", status: http.StatusOK, body: healthBody},
		"healthz":   {path: "/healthz", status: http.StatusOK, body: healthBody},
		"not ready": {path: "/readyz", status: http.StatusServiceUnavailable},
		"ready":     {path: "/readyz", ready: true, status: http.StatusOK, body: healthBody},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ready := tt.ready
			h.SetReady(func() bool { return ready })

			rec := httptest.NewRecorder()
			h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			body, _ := io.ReadAll(rec.Body)
			if tt.body != "" && string(body) != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestHealthServerDisabled(t *testing.T) {
	h := NewHealthServer(&config.Config{}, zerolog.Nop())
	if h.Enabled() {
		t.Error("server without a port should be disabled")
	}
	h.Start()
	if err := h.Stop(t.Context()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
