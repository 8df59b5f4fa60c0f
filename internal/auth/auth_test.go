package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newProtected(cfg Config) http.Handler {
	return Middleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	h := newProtected(Config{Enabled: false})

	req := httptest.NewRequest(http.MethodPost, "/env/inject-test", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d with auth disabled, want 200", rec.Code)
	}
}

func TestAuthProtectedPaths(t *testing.T) {
	h := newProtected(Config{Enabled: true, Token: "secret"})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing token", "/env/inject-test", "", http.StatusUnauthorized},
		{"wrong token", "/env/inject-test", "Bearer nope", http.StatusUnauthorized},
		{"malformed header", "/download", "secret", http.StatusUnauthorized},
		{"valid token", "/env/inject-test", "Bearer secret", http.StatusOK},
		{"download valid", "/download", "Bearer secret", http.StatusOK},
		{"public path needs no token", "/latest", "", http.StatusOK},
		{"metrics stays public", "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
