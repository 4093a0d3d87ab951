package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	tests := map[string]struct {
		header string
		want   string
	}{
		"generated": {},
		"propagated": {
			header: "abc-123",
			want:   "abc-123",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var seen string
			h := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("request id missing from context")
			}
			if tt.want != "" && seen != tt.want {
				t.Errorf("request id = %q, want %q", seen, tt.want)
			}
			if got := rec.Header().Get("X-Request-ID"); got != seen {
				t.Errorf("header = %q, context = %q", got, seen)
			}
		})
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}
