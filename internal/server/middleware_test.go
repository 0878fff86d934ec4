package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tenantops/appset-keyspaces-plugin/internal/auth"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/api/v1/getparams.execute", nil)
	rec := httptest.NewRecorder()
	RequestIDMiddleware(handler).ServeHTTP(rec, req)

	if seen == "" {
		t.Error("request ID missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("X-Request-ID = %q, want %q", got, seen)
	}
}

func TestGetRequestID_NoMiddleware(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestBearerMiddleware(t *testing.T) {
	authenticator := auth.NewAuthenticator("s3cret")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := BearerMiddleware(authenticator)(handler)

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.Header.Set("Authorization", "Bearer s3cret")
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("bad token rejected with 403", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	var deadlineSet bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadlineSet = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/", nil)
	rec := httptest.NewRecorder()
	TimeoutMiddleware(5 * time.Second)(handler).ServeHTTP(rec, req)

	if !deadlineSet {
		t.Error("expected a context deadline inside the handler")
	}
}
