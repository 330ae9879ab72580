package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}), called
}

func TestAdminAuth_ValidKey(t *testing.T) {
	next, called := okHandler()
	handler := NewAdminAuthMiddleware("secret-key").Authenticate(next)

	req := httptest.NewRequest("POST", "/api/v1/admin/load-data", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !*called {
		t.Error("expected next handler to run")
	}
}

func TestAdminAuth_InvalidKey(t *testing.T) {
	next, called := okHandler()
	handler := NewAdminAuthMiddleware("secret-key").Authenticate(next)

	req := httptest.NewRequest("POST", "/api/v1/admin/load-data", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("next handler must not run for an invalid key")
	}
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	next, called := okHandler()
	handler := NewAdminAuthMiddleware("secret-key").Authenticate(next)

	req := httptest.NewRequest("POST", "/api/v1/admin/load-data", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("next handler must not run without a token")
	}
}

func TestAdminAuth_EmptyConfiguredKeyAlwaysRejects(t *testing.T) {
	next, called := okHandler()
	handler := NewAdminAuthMiddleware("").Authenticate(next)

	// Even an empty bearer token must not match an empty key.
	req := httptest.NewRequest("POST", "/api/v1/admin/load-data", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if *called {
		t.Error("next handler must not run when no key is configured")
	}
}

func TestExtractBearerToken(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if got := extractBearerToken(req); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewRecoveryMiddleware().Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	next, _ := okHandler()
	handler := NewCORSMiddleware([]string{"https://jack.ai"}).Handler(next)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://jack.ai")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://jack.ai" {
		t.Errorf("expected allow-origin header, got %q", got)
	}
}

func TestCORSMiddleware_DisallowedOrigin(t *testing.T) {
	next, _ := okHandler()
	handler := NewCORSMiddleware([]string{"https://jack.ai"}).Handler(next)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got %q", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	next, called := okHandler()
	handler := NewCORSMiddleware([]string{"*"}).Handler(next)

	req := httptest.NewRequest("OPTIONS", "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://jack.ai")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if *called {
		t.Error("preflight must not reach the next handler")
	}
}
