package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mirotrak/mirotrak/internal/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdminAuth_Disabled(t *testing.T) {
	t.Parallel()

	called := false
	handler := AdminAuth(AdminAuthConfig{Logger: discardLogger()})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/clients", nil))
	if !called {
		t.Error("request should pass when no key hash is configured")
	}
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashKey("mtk_test_key")
	if err != nil {
		t.Fatalf("HashKey: %v", err)
	}

	mw := AdminAuth(AdminAuthConfig{Logger: discardLogger(), KeyHash: hash})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"bearer", "Authorization", "Bearer mtk_test_key", http.StatusNoContent},
		{"x-api-key", "X-API-Key", "mtk_test_key", http.StatusNoContent},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong key", "Authorization", "Bearer mtk_other", http.StatusUnauthorized},
		{"basic scheme", "Authorization", "Basic bXRrX3Rlc3Rfa2V5", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusUnauthorized {
				return
			}
			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != "UNAUTHORIZED" || body.Message != msgUnauthorized {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}
